package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clinic-booking-backend/internal/lock"
	"clinic-booking-backend/internal/models"
	"clinic-booking-backend/internal/repository"
)

type AppointmentService struct {
	apptRepo      *repository.AppointmentRepository
	availRepo     *repository.AvailabilityRepository
	userRepo      *repository.UserRepository
	auditRepo     *repository.AuditRepository
	notifications *NotificationService
	locker        lock.Locker
	now           func() time.Time
}

func NewAppointmentService(
	apptRepo *repository.AppointmentRepository,
	availRepo *repository.AvailabilityRepository,
	userRepo *repository.UserRepository,
	auditRepo *repository.AuditRepository,
	notifications *NotificationService,
	locker lock.Locker,
	now func() time.Time,
) *AppointmentService {
	if now == nil {
		now = time.Now
	}
	return &AppointmentService{
		apptRepo:      apptRepo,
		availRepo:     availRepo,
		userRepo:      userRepo,
		auditRepo:     auditRepo,
		notifications: notifications,
		locker:        locker,
		now:           now,
	}
}

// BookingInput is a request to book a slot. PatientID and DoctorID are only
// read for staff and doctor callers.
type BookingInput struct {
	AvailabilityID uint
	PatientID      *uint
	DoctorID       *uint
	Reason         *string
}

// AppointmentUpdate changes an appointment. Nil fields are left untouched;
// a different AvailabilityID reschedules it.
type AppointmentUpdate struct {
	AvailabilityID *uint
	Status         *models.AppointmentStatus
	TriageStatus   *models.TriageStatus
	Reason         *string
}

// AppointmentDetail is an appointment with its reschedule history, oldest first
type AppointmentDetail struct {
	models.AppointmentView
	Reschedules []models.RescheduleRecord `json:"reschedules"`
}

// visibleTo returns the listing filter for the caller, or false when the
// caller's role sees no appointments at all.
func visibleTo(actor Actor) (repository.AppointmentFilter, bool) {
	self := actor.UserID
	switch actor.Role {
	case models.RolePatient:
		return repository.AppointmentFilter{PatientID: &self}, true
	case models.RoleDoctor:
		return repository.AppointmentFilter{DoctorID: &self}, true
	case models.RoleStaff:
		return repository.AppointmentFilter{}, true
	}
	return repository.AppointmentFilter{}, false
}

func canView(actor Actor, appt *models.Appointment) bool {
	switch actor.Role {
	case models.RolePatient:
		return appt.PatientID == actor.UserID
	case models.RoleDoctor:
		return appt.DoctorID == actor.UserID
	case models.RoleStaff:
		return true
	}
	return false
}

// canManage reports whether the caller may change status, slot or reason.
func canManage(actor Actor, appt *models.Appointment) bool {
	return actor.Is(models.RoleStaff) || (actor.Is(models.RoleDoctor) && appt.DoctorID == actor.UserID)
}

// Book creates a pending appointment on a free slot. Patients always book for
// themselves with the slot's doctor; staff and doctors name the patient.
func (s *AppointmentService) Book(ctx context.Context, actor Actor, input BookingInput) (*models.Appointment, error) {
	if !actor.Is(models.RolePatient) && !actor.Is(models.RoleStaff) && !actor.Is(models.RoleDoctor) {
		return nil, ErrForbidden
	}

	slot, err := s.availRepo.FindByID(input.AvailabilityID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fieldError("availability", "Slot does not exist.")
		}
		return nil, err
	}

	waiting := models.TriageWaiting
	appt := &models.Appointment{
		DoctorID:       slot.DoctorID,
		AvailabilityID: slot.ID,
		Status:         models.StatusPending,
		TriageStatus:   &waiting,
		Reason:         input.Reason,
	}

	if actor.Is(models.RolePatient) {
		appt.PatientID = actor.UserID
	} else {
		if input.PatientID == nil {
			return nil, fieldError("patient", "This field is required.")
		}
		patient, err := s.userRepo.FindUserByID(*input.PatientID)
		if err != nil || patient.Role != models.RolePatient {
			return nil, fieldError("patient", "Must reference a patient account.")
		}
		if input.DoctorID != nil && *input.DoctorID != slot.DoctorID {
			return nil, fieldError("doctor", "Must be the doctor who owns the slot.")
		}
		appt.PatientID = patient.ID
	}

	err = s.locker.WithSlotLock(ctx, slot.ID, func(ctx context.Context) error {
		return s.apptRepo.Book(ctx, appt)
	})
	if err != nil {
		return nil, bookingError(err)
	}

	if actor.UserID != slot.DoctorID {
		requester := fmt.Sprintf("user %d", actor.UserID)
		if caller, err := s.userRepo.FindUserByID(actor.UserID); err == nil {
			requester = caller.Email
		}
		s.notifications.NotifyBookingRequest(slot.DoctorID, requester, slot)
	}

	_ = s.auditRepo.CreateAuditLog(&actor.UserID, "appointment_booked",
		fmt.Sprintf("Appointment %d booked on slot %d for patient %d", appt.ID, slot.ID, appt.PatientID))

	return s.apptRepo.FindByID(appt.ID)
}

func bookingError(err error) error {
	switch {
	case errors.Is(err, lock.ErrLockNotAcquired):
		return ErrSlotBeingBooked
	case errors.Is(err, repository.ErrSlotTaken):
		return ErrSlotAlreadyBooked
	case errors.Is(err, repository.ErrAvailabilityNotFound):
		return fieldError("availability", "Slot does not exist.")
	}
	return fmt.Errorf("failed to save appointment: %w", err)
}

// AppointmentQuery holds the optional list filters
type AppointmentQuery struct {
	Date *models.Date
}

// List returns the appointments the caller may see, ordered by slot time
func (s *AppointmentService) List(actor Actor, query AppointmentQuery) ([]models.Appointment, error) {
	filter, ok := visibleTo(actor)
	if !ok {
		return []models.Appointment{}, nil
	}
	filter.Date = query.Date
	return s.apptRepo.List(filter)
}

// Today returns the caller's visible appointments whose slot is today
func (s *AppointmentService) Today(actor Actor) ([]models.Appointment, error) {
	today := models.DateOf(s.now())
	return s.List(actor, AppointmentQuery{Date: &today})
}

// History returns the caller's visible finished appointments, newest slot first
func (s *AppointmentService) History(actor Actor) ([]models.Appointment, error) {
	filter, ok := visibleTo(actor)
	if !ok {
		return []models.Appointment{}, nil
	}
	filter.FinishedOnly = true
	filter.NewestFirst = true
	return s.apptRepo.List(filter)
}

// Get returns an appointment visible to the caller; others are reported as missing
func (s *AppointmentService) Get(actor Actor, id uint) (*models.Appointment, error) {
	appt, err := s.apptRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !canView(actor, appt) {
		return nil, repository.ErrAppointmentNotFound
	}
	return appt, nil
}

// Update applies status, triage, reason and slot changes. Every check runs
// before anything is written; a slot change records the previous slot.
func (s *AppointmentService) Update(ctx context.Context, actor Actor, id uint, input AppointmentUpdate) (*models.Appointment, error) {
	appt, err := s.Get(actor, id)
	if err != nil {
		return nil, err
	}
	if !canManage(actor, appt) {
		return nil, ErrForbidden
	}

	status := appt.Status
	if input.Status != nil {
		next := *input.Status
		if !next.Valid() {
			return nil, fieldError("status", "Must be one of: pending, approved, declined, cancelled.")
		}
		if !status.CanTransitionTo(next) {
			return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, status, next)
		}
		status = next
	}

	if input.TriageStatus != nil {
		next := *input.TriageStatus
		// Full replacements from staff echo the current triage back unchanged.
		if next.Valid() && next != appt.CurrentTriage() && !actor.Is(models.RoleDoctor) {
			return nil, ErrForbidden
		}
		if err := checkTriage(status, appt.CurrentTriage(), next); err != nil {
			return nil, err
		}
	}

	var record *models.RescheduleRecord
	if input.AvailabilityID != nil && *input.AvailabilityID != appt.AvailabilityID {
		newSlot, err := s.availRepo.FindByID(*input.AvailabilityID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fieldError("availability", "Slot does not exist.")
			}
			return nil, err
		}
		if newSlot.DoctorID != appt.DoctorID {
			return nil, fieldError("availability", "Slot belongs to another doctor.")
		}
		previous := appt.Slot
		if previous == nil {
			if previous, err = s.availRepo.FindByID(appt.AvailabilityID); err != nil {
				return nil, err
			}
		}
		record = models.NewRescheduleRecord(appt.ID, previous, s.now())
		appt.AvailabilityID = newSlot.ID
		appt.Slot = newSlot
	}

	previousStatus := appt.Status
	appt.Status = status
	if input.TriageStatus != nil {
		triage := *input.TriageStatus
		appt.TriageStatus = &triage
	}
	if input.Reason != nil {
		appt.Reason = input.Reason
	}

	save := func(ctx context.Context) error { return s.apptRepo.Update(ctx, appt, record) }
	if record != nil {
		err = s.locker.WithSlotLock(ctx, appt.AvailabilityID, save)
	} else {
		err = save(ctx)
	}
	if err != nil {
		return nil, bookingError(err)
	}

	if previousStatus != appt.Status {
		_ = s.auditRepo.CreateAuditLog(&actor.UserID, "appointment_status_changed",
			fmt.Sprintf("Appointment %d: %s -> %s", appt.ID, previousStatus, appt.Status))
	}
	if record != nil {
		_ = s.auditRepo.CreateAuditLog(&actor.UserID, "appointment_rescheduled",
			fmt.Sprintf("Appointment %d moved from %s %s to slot %d",
				appt.ID, record.PreviousDate, record.PreviousStartTime, appt.AvailabilityID))
	}

	return s.apptRepo.FindByID(appt.ID)
}

// UpdateTriage moves the triage state of an approved appointment. Only the
// appointment's doctor may do so.
func (s *AppointmentService) UpdateTriage(ctx context.Context, actor Actor, id uint, next models.TriageStatus) (*models.Appointment, error) {
	appt, err := s.apptRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !actor.Is(models.RoleDoctor) || appt.DoctorID != actor.UserID {
		return nil, ErrForbidden
	}
	if err := checkTriage(appt.Status, appt.CurrentTriage(), next); err != nil {
		return nil, err
	}
	if appt.CurrentTriage() == next {
		return appt, nil
	}

	appt.TriageStatus = &next
	if err := s.apptRepo.Update(ctx, appt, nil); err != nil {
		return nil, fmt.Errorf("failed to update triage: %w", err)
	}
	return s.apptRepo.FindByID(appt.ID)
}

func checkTriage(status models.AppointmentStatus, current, next models.TriageStatus) error {
	if !next.Valid() {
		return fieldError("triage_status", "Must be one of: waiting, in_consultation, done, no_show.")
	}
	if current == next {
		return nil
	}
	if status != models.StatusApproved {
		return fieldError("triage_status", "Triage can only change on approved appointments.")
	}
	if !current.CanTransitionTo(next) {
		return fmt.Errorf("%w: triage %s to %s", ErrInvalidTransition, current, next)
	}
	return nil
}

// Delete removes an appointment and its history. Staff only.
func (s *AppointmentService) Delete(actor Actor, id uint) error {
	if !actor.Is(models.RoleStaff) {
		return ErrForbidden
	}
	if err := s.apptRepo.Delete(id); err != nil {
		return err
	}
	_ = s.auditRepo.CreateAuditLog(&actor.UserID, "appointment_deleted", fmt.Sprintf("Appointment %d deleted", id))
	return nil
}

// Detail returns an appointment with its reschedule history to its own doctor
func (s *AppointmentService) Detail(actor Actor, id uint) (*AppointmentDetail, error) {
	appt, err := s.apptRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !actor.Is(models.RoleDoctor) || appt.DoctorID != actor.UserID {
		return nil, ErrForbidden
	}

	records, err := s.apptRepo.ListReschedules(appt.ID)
	if err != nil {
		return nil, err
	}
	return &AppointmentDetail{AppointmentView: appt.View(), Reschedules: records}, nil
}

// Views converts appointments to their JSON shape
func Views(appts []models.Appointment) []models.AppointmentView {
	views := make([]models.AppointmentView, 0, len(appts))
	for i := range appts {
		views = append(views, appts[i].View())
	}
	return views
}
