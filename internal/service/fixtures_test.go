package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"clinic-booking-backend/internal/lock"
	"clinic-booking-backend/internal/models"
	"clinic-booking-backend/internal/repository"
	"clinic-booking-backend/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Monday 2024-06-03 10:00 UTC
var testNow = time.Date(2024, time.June, 3, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	db            *gorm.DB
	auth          *AuthService
	accounts      *AccountService
	availability  *AvailabilityService
	notifications *NotificationService
	appointments  *AppointmentService
	doctors       *DoctorService

	seq int
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)

	userRepo := repository.NewUserRepo(db)
	auditRepo := repository.NewAuditRepo(db)
	availRepo := repository.NewAvailabilityRepo(db)
	apptRepo := repository.NewAppointmentRepo(db)
	notifications := NewNotificationService(repository.NewNotificationRepo(db), apptRepo)
	now := func() time.Time { return testNow }

	return &testEnv{
		db:            db,
		auth:          NewAuthService(userRepo, auditRepo),
		accounts:      NewAccountService(userRepo, auditRepo),
		availability:  NewAvailabilityService(availRepo, auditRepo),
		notifications: notifications,
		appointments:  NewAppointmentService(apptRepo, availRepo, userRepo, auditRepo, notifications, lock.NewLocalSlotLocker(), now),
		doctors:       NewDoctorService(apptRepo, availRepo, now),
	}
}

func (e *testEnv) register(t *testing.T, role models.Role) *models.User {
	t.Helper()
	e.seq++
	input := RegisterInput{
		Email:     fmt.Sprintf("%s%d@clinic.test", role, e.seq),
		Password:  "password123",
		Role:      role,
		FirstName: string(role),
		LastName:  fmt.Sprintf("No%d", e.seq),
	}
	if role == models.RoleDoctor {
		specialty := "General Practice"
		input.Specialization = &specialty
	}
	user, err := e.auth.Register(input)
	require.NoError(t, err)
	return user
}

func (e *testEnv) admin(t *testing.T) *models.User {
	t.Helper()
	user, err := e.auth.CreateAdmin("admin@clinic.test", "password123")
	require.NoError(t, err)
	return user
}

func actorOf(u *models.User) Actor {
	return Actor{UserID: u.ID, Role: u.Role}
}

// slot creates a one-off 30 minute slot for doctor, offset days after testNow
func (e *testEnv) slot(t *testing.T, doctor *models.User, dayOffset, hour int) *models.Availability {
	t.Helper()
	series, err := e.availability.Create(actorOf(doctor), AvailabilityInput{
		Date:      models.DateOf(testNow).AddDays(dayOffset),
		StartTime: models.NewClockTime(hour, 0, 0),
		EndTime:   models.NewClockTime(hour, 30, 0),
	})
	require.NoError(t, err)
	return &series.Availability
}

func (e *testEnv) book(t *testing.T, patient *models.User, slot *models.Availability) *models.Appointment {
	t.Helper()
	reason := "checkup"
	appt, err := e.appointments.Book(context.Background(), actorOf(patient), BookingInput{
		AvailabilityID: slot.ID,
		Reason:         &reason,
	})
	require.NoError(t, err)
	return appt
}

func (e *testEnv) setStatus(t *testing.T, doctor *models.User, appt *models.Appointment, status models.AppointmentStatus) *models.Appointment {
	t.Helper()
	updated, err := e.appointments.Update(context.Background(), actorOf(doctor), appt.ID, AppointmentUpdate{Status: &status})
	require.NoError(t, err)
	return updated
}

func (e *testEnv) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := e.db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
