package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"clinic-booking-backend/internal/middleware"
	"clinic-booking-backend/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type apiClient struct {
	t      *testing.T
	engine *gin.Engine
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	db := testutil.NewDB(t)
	engine := New(Deps{
		Config: testutil.Config(),
		DB:     db,
		Now:    func() time.Time { return time.Date(2024, time.June, 3, 8, 0, 0, 0, time.UTC) },
	})
	return &apiClient{t: t, engine: engine}
}

func (a *apiClient) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// signUp registers an account and returns its id and access token
func (a *apiClient) signUp(email, role string) (uint, string) {
	a.t.Helper()
	body := map[string]interface{}{
		"email":      email,
		"password":   "password123",
		"role":       role,
		"first_name": strings.Split(email, "@")[0],
		"last_name":  "Test",
	}
	if role == "doctor" {
		body["specialization"] = "Dermatology"
	}
	w := a.do(http.MethodPost, "/register", "", body)
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	id := uint(decode(a.t, w)["id"].(float64))

	w = a.do(http.MethodPost, "/login", "", map[string]string{"email": email, "password": "password123"})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	return id, decode(a.t, w)["access"].(string)
}

func (a *apiClient) createSlot(token, date, start, end string) uint {
	a.t.Helper()
	w := a.do(http.MethodPost, "/availabilities", token, map[string]string{
		"date": date, "start_time": start, "end_time": end,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return uint(decode(a.t, w)["id"].(float64))
}

func TestHealth(t *testing.T) {
	api := newAPI(t)
	w := api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["status"])
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestRegisterValidationErrors(t *testing.T) {
	api := newAPI(t)

	w := api.do(http.MethodPost, "/register", "", map[string]string{"password": "short", "role": "admin"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Invalid input", body["detail"])
	fields := body["errors"].(map[string]interface{})
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
	assert.Contains(t, fields, "role")

	api.signUp("taken@clinic.test", "patient")
	w = api.do(http.MethodPost, "/register", "", map[string]string{
		"email": "TAKEN@clinic.test", "password": "password123", "role": "staff",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["errors"], "email")
}

func TestAuthFlow(t *testing.T) {
	api := newAPI(t)
	id, token := api.signUp("doc@clinic.test", "doctor")

	w := api.do(http.MethodGet, "/whoami", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode(t, w)
	assert.EqualValues(t, id, me["id"])
	assert.Equal(t, "doctor", me["role"])

	// trailing slash reaches the same handler
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/whoami/", token, nil).Code)

	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/whoami", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/whoami", "garbage", nil).Code)

	w = api.do(http.MethodPost, "/login", "", map[string]string{"email": "doc@clinic.test", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodPost, "/login", "", map[string]string{"email": "doc@clinic.test", "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code)
	refresh := decode(t, w)["refresh"].(string)

	w = api.do(http.MethodPost, "/token/refresh", "", map[string]string{"refresh": refresh})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode(t, w)["access"])

	w = api.do(http.MethodPost, "/doctor/logout", token, map[string]string{"refresh": refresh})
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodPost, "/token/refresh", "", map[string]string{"refresh": refresh})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodGet, "/public/doctors/"+itoa(id), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["is_available_on_call"])
}

func TestToggleAvailableRequiresDoctor(t *testing.T) {
	api := newAPI(t)
	_, doctor := api.signUp("doc@clinic.test", "doctor")
	_, patient := api.signUp("pat@clinic.test", "patient")

	w := api.do(http.MethodPost, "/doctor/toggle-available", patient, map[string]bool{"is_available_on_call": true})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodPost, "/doctor/toggle-available", doctor, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/doctor/toggle-available", doctor, map[string]bool{"is_available_on_call": false})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["is_available_on_call"])
}

func TestBookingOverHTTP(t *testing.T) {
	api := newAPI(t)
	doctorID, doctor := api.signUp("doc@clinic.test", "doctor")
	_, other := api.signUp("other@clinic.test", "doctor")
	_, alice := api.signUp("alice@clinic.test", "patient")
	_, bob := api.signUp("bob@clinic.test", "patient")
	_, staff := api.signUp("staff@clinic.test", "staff")

	w := api.do(http.MethodPost, "/availabilities", alice, map[string]string{
		"date": "2024-06-04", "start_time": "09:00", "end_time": "09:30",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodPost, "/availabilities", doctor, map[string]string{
		"date": "2024-06-04", "start_time": "10:00", "end_time": "09:30",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["errors"], "end_time")

	w = api.do(http.MethodPost, "/availabilities", doctor, map[string]string{
		"date": "2024-06-04", "start_time": "09:00", "end_time": "09:30",
		"repeat": "weekly", "repeat_until": "2024-06-25",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	series := decode(t, w)
	assert.Len(t, series["generated"], 3)
	slotID := uint(series["id"].(float64))

	w = api.do(http.MethodPost, "/appointments", alice, map[string]interface{}{"availability": slotID, "reason": "rash"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	booked := decode(t, w)
	assert.EqualValues(t, doctorID, booked["doctor"])
	assert.Equal(t, "pending", booked["status"])
	assert.Equal(t, "waiting", booked["triage_status"])
	apptPath := "/appointments/" + itoa(uint(booked["id"].(float64)))

	w = api.do(http.MethodPost, "/appointments", bob, map[string]interface{}{"availability": slotID})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.do(http.MethodPost, "/appointments", bob, map[string]interface{}{})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["errors"], "availability")

	// open slots no longer include the booked one
	w = api.do(http.MethodGet, "/availabilities?open=true&doctor="+itoa(doctorID), bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var open []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &open))
	assert.Len(t, open, 3)

	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, apptPath, bob, nil).Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, apptPath, alice, nil).Code)

	assert.Equal(t, http.StatusForbidden, api.do(http.MethodGet, apptPath+"/detail", other, nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/appointments/999/detail", doctor, nil).Code)
	w = api.do(http.MethodGet, apptPath+"/detail", doctor, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["reschedules"])

	w = api.do(http.MethodPatch, apptPath+"/triage", doctor, map[string]string{"triage_status": "in_consultation"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "pending appointments have no triage")

	w = api.do(http.MethodPatch, apptPath, doctor, map[string]string{"status": "approved"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "approved", decode(t, w)["status"])

	w = api.do(http.MethodPatch, apptPath, doctor, map[string]string{"status": "pending"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPatch, apptPath+"/triage", doctor, map[string]string{"triage_status": "in_consultation"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "in_consultation", decode(t, w)["triage_status"])

	assert.Equal(t, http.StatusForbidden, api.do(http.MethodDelete, apptPath, doctor, nil).Code)
	assert.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, apptPath, staff, nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, apptPath, alice, nil).Code)
}

func TestSlotOwnershipOverHTTP(t *testing.T) {
	api := newAPI(t)
	_, doctor := api.signUp("doc@clinic.test", "doctor")
	_, other := api.signUp("other@clinic.test", "doctor")

	slotID := api.createSlot(doctor, "2024-06-05", "13:00", "13:30")
	path := "/availabilities/" + itoa(slotID)

	w := api.do(http.MethodPatch, path, other, map[string]string{"end_time": "14:00"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodPatch, path, doctor, map[string]string{"end_time": "14:00"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "14:00:00", decode(t, w)["end_time"])

	w = api.do(http.MethodPatch, path, doctor, map[string]string{"end_time": "later"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["errors"], "end_time")

	assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, "/availabilities/999", doctor, nil).Code)
	assert.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, path, doctor, nil).Code)
}

func TestSlotRepeatRulesOnUpdate(t *testing.T) {
	api := newAPI(t)
	_, doctor := api.signUp("doc@clinic.test", "doctor")

	w := api.do(http.MethodPost, "/availabilities", doctor, map[string]string{
		"date": "2024-06-10", "start_time": "09:00", "end_time": "09:30",
		"repeat": "weekly", "repeat_until": "2024-06-24",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	path := "/availabilities/" + itoa(uint(decode(t, w)["id"].(float64)))

	w = api.do(http.MethodPatch, path, doctor, map[string]string{"repeat": "biweekly", "repeat_until": "2020-01-01"})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, decode(t, w)["errors"], "repeat_until")

	w = api.do(http.MethodPatch, path, doctor, map[string]string{"date": "2024-07-01"})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, decode(t, w)["errors"], "repeat_until")

	w = api.do(http.MethodPut, path, doctor, map[string]string{
		"date": "2024-06-10", "start_time": "10:00", "end_time": "10:30", "repeat": "weekly",
	})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, decode(t, w)["errors"], "repeat_until")

	w = api.do(http.MethodPut, path, doctor, map[string]string{
		"date": "2024-06-10", "start_time": "10:00", "end_time": "10:30",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	replaced := decode(t, w)
	assert.Equal(t, "none", replaced["repeat"])
	assert.Nil(t, replaced["repeat_until"])
	assert.Equal(t, "10:00:00", replaced["start_time"])
}

func TestStaffReplaceApprovesAppointment(t *testing.T) {
	api := newAPI(t)
	_, doctor := api.signUp("doc@clinic.test", "doctor")
	_, patient := api.signUp("pat@clinic.test", "patient")
	_, staff := api.signUp("staff@clinic.test", "staff")

	slotID := api.createSlot(doctor, "2024-06-04", "09:00", "09:30")
	w := api.do(http.MethodPost, "/appointments", patient, map[string]interface{}{"availability": slotID, "reason": "rash"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	path := "/appointments/" + itoa(uint(decode(t, w)["id"].(float64)))

	w = api.do(http.MethodPut, path, staff, map[string]interface{}{
		"availability": slotID, "status": "approved", "triage_status": "waiting", "reason": "rash",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "approved", body["status"])
	assert.Equal(t, "waiting", body["triage_status"])

	w = api.do(http.MethodPut, path, staff, map[string]interface{}{
		"availability": slotID, "status": "approved", "triage_status": "in_consultation",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDoctorEndpoints(t *testing.T) {
	api := newAPI(t)
	_, doctor := api.signUp("doc@clinic.test", "doctor")
	_, patient := api.signUp("pat@clinic.test", "patient")

	slotID := api.createSlot(doctor, "2024-06-03", "11:00", "11:30")
	w := api.do(http.MethodPost, "/appointments", patient, map[string]interface{}{"availability": slotID, "reason": "flu"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	apptPath := "/appointments/" + itoa(uint(decode(t, w)["id"].(float64)))

	w = api.do(http.MethodGet, "/doctor/dashboard/overview", doctor, nil)
	require.Equal(t, http.StatusOK, w.Code)
	overview := decode(t, w)
	assert.EqualValues(t, 1, overview["pending_requests"])
	assert.Len(t, overview["upcoming_slots"], 1)

	assert.Equal(t, http.StatusForbidden, api.do(http.MethodGet, "/doctor/dashboard/overview", patient, nil).Code)

	w = api.do(http.MethodGet, "/doctor/notifications?unread=true", doctor, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var notes []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &notes))
	require.Len(t, notes, 1)
	noteID := uint(notes[0]["id"].(float64))

	w = api.do(http.MethodPatch, "/doctor/notifications/"+itoa(noteID)+"/read", doctor, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["is_read"])

	require.Equal(t, http.StatusOK, api.do(http.MethodPatch, apptPath, doctor, map[string]string{"status": "cancelled"}).Code)

	w = api.do(http.MethodGet, "/doctor/export-appointments", doctor, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "appointment_history.csv")
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "pat@clinic.test")
	assert.Contains(t, lines[1], "11:00:00 - 11:30:00")

	w = api.do(http.MethodGet, "/appointments/history", patient, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	assert.Len(t, history, 1)

	w = api.do(http.MethodGet, "/public/doctors?q=derma", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var doctors []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doctors))
	assert.Len(t, doctors, 1)
}

func TestUsersAdminOnlyDelete(t *testing.T) {
	api := newAPI(t)
	patientID, patient := api.signUp("pat@clinic.test", "patient")

	assert.Equal(t, http.StatusForbidden, api.do(http.MethodDelete, "/users/"+itoa(patientID), patient, nil).Code)

	w := api.do(http.MethodGet, "/users?role=patient", patient, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var users []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	require.Len(t, users, 1)
	assert.NotContains(t, users[0], "password_hash")
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
