package service

import (
	"bytes"
	"encoding/csv"
	"testing"

	"clinic-booking-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardOverview(t *testing.T) {
	env := newTestEnv(t)
	doctor := env.register(t, models.RoleDoctor)
	patient := env.register(t, models.RolePatient)

	past := env.slot(t, doctor, 0, 9) // before testNow
	later := env.slot(t, doctor, 0, 11)
	tomorrow := env.slot(t, doctor, 1, 8)

	env.setStatus(t, doctor, env.book(t, patient, later), models.StatusApproved)
	env.setStatus(t, doctor, env.book(t, patient, past), models.StatusApproved)
	env.book(t, patient, tomorrow)

	overview, err := env.doctors.Dashboard(actorOf(doctor))
	require.NoError(t, err)
	assert.EqualValues(t, 2, overview.TodayAppointments)
	assert.EqualValues(t, 1, overview.PendingRequests)
	require.Len(t, overview.UpcomingSlots, 2)
	assert.Equal(t, later.ID, overview.UpcomingSlots[0].ID)
	assert.Equal(t, tomorrow.ID, overview.UpcomingSlots[1].ID)

	_, err = env.doctors.Dashboard(actorOf(patient))
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDashboardUpcomingIsCapped(t *testing.T) {
	env := newTestEnv(t)
	doctor := env.register(t, models.RoleDoctor)
	for day := 1; day <= 7; day++ {
		env.slot(t, doctor, day, 9)
	}

	overview, err := env.doctors.Dashboard(actorOf(doctor))
	require.NoError(t, err)
	assert.Len(t, overview.UpcomingSlots, upcomingSlotsLimit)
	assert.Zero(t, overview.TodayAppointments)
}

func TestPatientSummariesGroupByPatient(t *testing.T) {
	env := newTestEnv(t)
	doctor := env.register(t, models.RoleDoctor)
	alice := env.register(t, models.RolePatient)
	bob := env.register(t, models.RolePatient)

	env.book(t, bob, env.slot(t, doctor, 1, 9))
	env.book(t, alice, env.slot(t, doctor, 2, 9))
	env.book(t, bob, env.slot(t, doctor, 3, 9))

	summaries, err := env.doctors.PatientSummaries(actorOf(doctor))
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, bob.ID, summaries[0].ID)
	assert.Equal(t, bob.Email, summaries[0].Email)
	assert.Len(t, summaries[0].Appointments, 2)
	assert.Equal(t, alice.ID, summaries[1].ID)
	assert.Len(t, summaries[1].Appointments, 1)
}

func TestExportHistoryCSV(t *testing.T) {
	env := newTestEnv(t)
	doctor := env.register(t, models.RoleDoctor)
	patient := env.register(t, models.RolePatient)

	cancelled := env.book(t, patient, env.slot(t, doctor, 1, 11))
	env.setStatus(t, doctor, cancelled, models.StatusCancelled)
	env.book(t, patient, env.slot(t, doctor, 2, 11)) // still pending, not exported

	var buf bytes.Buffer
	require.NoError(t, env.doctors.ExportHistory(actorOf(doctor), &buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, ExportHeader, rows[0])
	assert.Equal(t, []string{
		patient.Email,
		models.DateOf(testNow).AddDays(1).String(),
		"11:00:00 - 11:30:00",
		"cancelled",
		"waiting",
		"checkup",
	}, rows[1])

	assert.ErrorIs(t, env.doctors.ExportHistory(actorOf(patient), &buf), ErrForbidden)
}
