package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to AppointmentStatus
		ok       bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusDeclined, true},
		{StatusPending, StatusCancelled, true},
		{StatusApproved, StatusCancelled, true},
		{StatusApproved, StatusPending, false},
		{StatusApproved, StatusDeclined, false},
		{StatusDeclined, StatusApproved, false},
		{StatusCancelled, StatusPending, false},
		{StatusDeclined, StatusDeclined, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTriageTransitions(t *testing.T) {
	assert.True(t, TriageWaiting.CanTransitionTo(TriageInConsultation))
	assert.True(t, TriageWaiting.CanTransitionTo(TriageNoShow))
	assert.True(t, TriageInConsultation.CanTransitionTo(TriageDone))
	assert.False(t, TriageWaiting.CanTransitionTo(TriageDone))
	assert.False(t, TriageDone.CanTransitionTo(TriageWaiting))
	assert.False(t, TriageNoShow.CanTransitionTo(TriageInConsultation))
	assert.False(t, TriageStatus("later").Valid())
}

func TestAppointmentFinished(t *testing.T) {
	done := TriageDone
	noShow := TriageNoShow
	inConsult := TriageInConsultation

	assert.False(t, (&Appointment{Status: StatusPending}).Finished())
	assert.True(t, (&Appointment{Status: StatusCancelled}).Finished())
	assert.True(t, (&Appointment{Status: StatusDeclined}).Finished())
	assert.True(t, (&Appointment{Status: StatusApproved, TriageStatus: &done}).Finished())
	assert.True(t, (&Appointment{Status: StatusApproved, TriageStatus: &noShow}).Finished())
	assert.False(t, (&Appointment{Status: StatusApproved, TriageStatus: &inConsult}).Finished())
}

func TestBeforeSaveTracksActiveSlot(t *testing.T) {
	appt := &Appointment{AvailabilityID: 9, Status: StatusPending}
	require.NoError(t, appt.BeforeSave(nil))
	require.NotNil(t, appt.ActiveSlotID)
	assert.Equal(t, uint(9), *appt.ActiveSlotID)

	appt.Status = StatusCancelled
	require.NoError(t, appt.BeforeSave(nil))
	assert.Nil(t, appt.ActiveSlotID)
}

func TestNewRoleProfile(t *testing.T) {
	specialty := "Cardiology"
	doctor := &User{ID: 4, Role: RoleDoctor, Specialization: &specialty}

	profile, ok := NewRoleProfile(doctor).(*DoctorProfile)
	require.True(t, ok)
	assert.Equal(t, uint(4), profile.UserID)
	assert.Equal(t, "Cardiology", profile.Specialization)

	_, ok = NewRoleProfile(&User{ID: 5, Role: RolePatient}).(*PatientProfile)
	assert.True(t, ok)
	_, ok = NewRoleProfile(&User{ID: 6, Role: RoleStaff}).(*StaffProfile)
	assert.True(t, ok)
	assert.Nil(t, NewRoleProfile(&User{ID: 1, Role: RoleAdmin}))
}

func TestDateRoundTrip(t *testing.T) {
	d, err := ParseDate("2024-02-28")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", d.AddDays(2).String())
	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.AddDays(1).After(d))

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-02-28"`, string(raw))

	var back Date
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, d, back)

	_, err = ParseDate("28/02/2024")
	assert.Error(t, err)
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan("2024-05-06 00:00:00+00:00"))
	assert.Equal(t, "2024-05-06", d.String())

	require.NoError(t, d.Scan(time.Date(2024, 5, 7, 13, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-05-07", d.String())
	assert.Equal(t, NewDate(2024, time.May, 7), d)

	value, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 7, 0, 0, 0, 0, time.UTC), value)

	require.NoError(t, d.Scan(nil))
	assert.True(t, time.Time(d.Date).IsZero())
}

func TestClockTime(t *testing.T) {
	c, err := ParseClockTime("09:30")
	require.NoError(t, err)
	assert.Equal(t, "09:30:00", c.String())
	assert.True(t, c.Before(NewClockTime(10, 0, 0)))

	c, err = ParseClockTime("14:05:07.123")
	require.NoError(t, err)
	assert.Equal(t, 14, c.Hour())
	assert.Equal(t, 5, c.Minute())
	assert.Equal(t, 7, c.Second())

	var scanned ClockTime
	require.NoError(t, scanned.Scan("0000-01-01 11:15:00+00:00"))
	assert.Equal(t, "11:15:00", scanned.String())
	require.NoError(t, scanned.Scan([]byte("08:45:30")))
	assert.Equal(t, NewClockTime(8, 45, 30), scanned)

	value, err := scanned.Value()
	require.NoError(t, err)
	assert.Equal(t, "08:45:30", value)

	raw, err := json.Marshal(scanned)
	require.NoError(t, err)
	assert.Equal(t, `"08:45:30"`, string(raw))
	assert.Error(t, json.Unmarshal([]byte(`"noon"`), &scanned))

	_, err = ParseClockTime("25:00")
	assert.Error(t, err)
}

func TestAvailabilityWindow(t *testing.T) {
	slot := &Availability{
		Date:      NewDate(2024, time.June, 3),
		StartTime: NewClockTime(9, 0, 0),
		EndTime:   NewClockTime(9, 30, 0),
	}
	assert.Equal(t, "2024-06-03 09:00:00-09:30:00", slot.Window())
	assert.Equal(t, 7, RepeatWeekly.IntervalDays())
	assert.Equal(t, 14, RepeatBiweekly.IntervalDays())
	assert.Equal(t, 0, RepeatNone.IntervalDays())
}
