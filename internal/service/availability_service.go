package service

import (
	"fmt"

	"clinic-booking-backend/internal/models"
	"clinic-booking-backend/internal/repository"
)

type AvailabilityService struct {
	availRepo *repository.AvailabilityRepository
	auditRepo *repository.AuditRepository
}

func NewAvailabilityService(availRepo *repository.AvailabilityRepository, auditRepo *repository.AuditRepository) *AvailabilityService {
	return &AvailabilityService{
		availRepo: availRepo,
		auditRepo: auditRepo,
	}
}

// AvailabilityInput describes a slot, optionally repeating until RepeatUntil
type AvailabilityInput struct {
	Date        models.Date
	StartTime   models.ClockTime
	EndTime     models.ClockTime
	Repeat      models.Repeat
	RepeatUntil *models.Date
}

// AvailabilityPatch changes some fields of a slot. Nil fields are left untouched.
type AvailabilityPatch struct {
	Date        *models.Date
	StartTime   *models.ClockTime
	EndTime     *models.ClockTime
	Repeat      *models.Repeat
	RepeatUntil *models.Date

	// ClearRepeatUntil drops the stored repeat_until when RepeatUntil is nil.
	ClearRepeatUntil bool
}

// CreatedSeries is the primary slot plus the clones generated from its repeat rule
type CreatedSeries struct {
	models.Availability
	Generated []models.Availability `json:"generated"`
}

// AvailabilityQuery holds the optional list filters
type AvailabilityQuery struct {
	DoctorID *uint
	Date     *models.Date
	From     *models.Date
	OpenOnly bool
}

func validateWindow(start, end models.ClockTime) error {
	if !start.Before(end) {
		return fieldError("end_time", "End time must be after start time.")
	}
	return nil
}

func validateRepeat(repeat models.Repeat, date models.Date, until *models.Date) error {
	if !repeat.Valid() {
		return fieldError("repeat", "Must be one of: none, weekly, biweekly.")
	}
	if repeat == models.RepeatNone {
		return nil
	}
	if until == nil {
		return fieldError("repeat_until", "This field is required when repeat is set.")
	}
	if until.Before(date) {
		return fieldError("repeat_until", "Must not be before date.")
	}
	return nil
}

// ExpandSeries returns the primary slot followed by one repeat=none clone per
// interval step whose date does not pass RepeatUntil.
func ExpandSeries(doctorID uint, input AvailabilityInput) []models.Availability {
	primary := models.Availability{
		DoctorID:    doctorID,
		Date:        input.Date,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		Repeat:      input.Repeat,
		RepeatUntil: input.RepeatUntil,
	}
	slots := []models.Availability{primary}

	step := input.Repeat.IntervalDays()
	if step == 0 || input.RepeatUntil == nil {
		return slots
	}
	for day := input.Date.AddDays(step); !day.After(*input.RepeatUntil); day = day.AddDays(step) {
		slots = append(slots, models.Availability{
			DoctorID:  doctorID,
			Date:      day,
			StartTime: input.StartTime,
			EndTime:   input.EndTime,
			Repeat:    models.RepeatNone,
		})
	}
	return slots
}

// Create stores a slot for the calling doctor along with its recurring clones.
func (s *AvailabilityService) Create(actor Actor, input AvailabilityInput) (*CreatedSeries, error) {
	if !actor.Is(models.RoleDoctor) {
		return nil, ErrForbidden
	}

	if input.Repeat == "" {
		input.Repeat = models.RepeatNone
	}
	if err := validateRepeat(input.Repeat, input.Date, input.RepeatUntil); err != nil {
		return nil, err
	}
	if err := validateWindow(input.StartTime, input.EndTime); err != nil {
		return nil, err
	}

	slots := ExpandSeries(actor.UserID, input)
	if err := s.availRepo.CreateSlots(slots); err != nil {
		return nil, fmt.Errorf("failed to create availability: %w", err)
	}

	_ = s.auditRepo.CreateAuditLog(&actor.UserID, "availability_created",
		fmt.Sprintf("Slot %d on %s (%s, %d generated)", slots[0].ID, slots[0].Window(), input.Repeat, len(slots)-1))

	return &CreatedSeries{Availability: slots[0], Generated: slots[1:]}, nil
}

// List returns slots visible to the caller. Doctors only ever see their own.
func (s *AvailabilityService) List(actor Actor, query AvailabilityQuery) ([]models.Availability, error) {
	filter := repository.AvailabilityFilter{
		DoctorID: query.DoctorID,
		Date:     query.Date,
		From:     query.From,
		OpenOnly: query.OpenOnly,
	}
	if actor.Is(models.RoleDoctor) {
		self := actor.UserID
		filter.DoctorID = &self
	}
	return s.availRepo.List(filter)
}

func (s *AvailabilityService) Get(id uint) (*models.Availability, error) {
	return s.availRepo.FindByID(id)
}

// Update edits a slot of the calling doctor. Repeat fields are stored as
// given; no clones are generated or removed.
func (s *AvailabilityService) Update(actor Actor, id uint, patch AvailabilityPatch) (*models.Availability, error) {
	slot, err := s.ownedSlot(actor, id)
	if err != nil {
		return nil, err
	}

	if patch.Date != nil {
		slot.Date = *patch.Date
	}
	if patch.StartTime != nil {
		slot.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		slot.EndTime = *patch.EndTime
	}
	if patch.Repeat != nil {
		slot.Repeat = *patch.Repeat
	}
	if patch.RepeatUntil != nil || patch.ClearRepeatUntil {
		slot.RepeatUntil = patch.RepeatUntil
	}
	if err := validateRepeat(slot.Repeat, slot.Date, slot.RepeatUntil); err != nil {
		return nil, err
	}
	if err := validateWindow(slot.StartTime, slot.EndTime); err != nil {
		return nil, err
	}

	if err := s.availRepo.Update(slot); err != nil {
		return nil, fmt.Errorf("failed to update availability: %w", err)
	}
	return slot, nil
}

// Delete removes a slot of the calling doctor with its appointments
func (s *AvailabilityService) Delete(actor Actor, id uint) error {
	if _, err := s.ownedSlot(actor, id); err != nil {
		return err
	}
	if err := s.availRepo.Delete(id); err != nil {
		return err
	}
	_ = s.auditRepo.CreateAuditLog(&actor.UserID, "availability_deleted", fmt.Sprintf("Slot %d deleted", id))
	return nil
}

func (s *AvailabilityService) ownedSlot(actor Actor, id uint) (*models.Availability, error) {
	slot, err := s.availRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !actor.Is(models.RoleDoctor) || slot.DoctorID != actor.UserID {
		return nil, ErrForbidden
	}
	return slot, nil
}
