package repository

import (
	"context"
	"errors"

	"clinic-booking-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepo(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// AppointmentFilter narrows appointment listings. PatientID and DoctorID
// express the caller's visibility; the rest are optional refinements.
type AppointmentFilter struct {
	PatientID    *uint
	DoctorID     *uint
	Date         *models.Date
	FinishedOnly bool
	NewestFirst  bool
}

func (r *AppointmentRepository) withParties(db *gorm.DB) *gorm.DB {
	return db.Preload("Slot").Preload("Patient").Preload("Doctor")
}

// Book inserts a new appointment after making sure its slot is free. The slot
// row is locked for the duration of the transaction where the dialect allows it.
func (r *AppointmentRepository) Book(ctx context.Context, appt *models.Appointment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slotQuery := tx
		if tx.Dialector.Name() != "sqlite" {
			slotQuery = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var slot models.Availability
		if err := slotQuery.First(&slot, appt.AvailabilityID).Error; err != nil {
			return notFound(err, ErrAvailabilityNotFound)
		}

		if err := ensureSlotFree(tx, slot.ID, 0); err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Create(appt).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrSlotTaken
			}
			return err
		}
		return nil
	})
}

// FindByID finds an appointment with its slot, patient and doctor loaded
func (r *AppointmentRepository) FindByID(id uint) (*models.Appointment, error) {
	var appt models.Appointment
	if err := r.withParties(r.db).First(&appt, id).Error; err != nil {
		return nil, notFound(err, ErrAppointmentNotFound)
	}
	return &appt, nil
}

// List returns appointments ordered by slot date and start time
func (r *AppointmentRepository) List(filter AppointmentFilter) ([]models.Appointment, error) {
	var appts []models.Appointment
	query := r.withParties(r.db.Model(&models.Appointment{})).
		Select("appointments.*").
		Joins("JOIN availabilities ON availabilities.id = appointments.availability_id")

	if filter.PatientID != nil {
		query = query.Where("appointments.patient_id = ?", *filter.PatientID)
	}
	if filter.DoctorID != nil {
		query = query.Where("appointments.doctor_id = ?", *filter.DoctorID)
	}
	if filter.Date != nil {
		query = query.Where("availabilities.date = ?", *filter.Date)
	}
	if filter.FinishedOnly {
		query = query.Where(
			"(appointments.status IN ? OR appointments.triage_status IN ?)",
			[]models.AppointmentStatus{models.StatusCancelled, models.StatusDeclined},
			[]models.TriageStatus{models.TriageDone, models.TriageNoShow},
		)
	}
	if filter.NewestFirst {
		query = query.Order("availabilities.date DESC, availabilities.start_time DESC, appointments.id DESC")
	} else {
		query = query.Order("availabilities.date ASC, availabilities.start_time ASC, appointments.id ASC")
	}

	if err := query.Find(&appts).Error; err != nil {
		return nil, err
	}
	return appts, nil
}

// Update persists the appointment. A non-nil reschedule record is written in
// the same transaction, after checking that the new slot is not held by
// another active appointment.
func (r *AppointmentRepository) Update(ctx context.Context, appt *models.Appointment, reschedule *models.RescheduleRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if reschedule != nil {
			if appt.Status.Active() {
				if err := ensureSlotFree(tx, appt.AvailabilityID, appt.ID); err != nil {
					return err
				}
			}
			if err := tx.Omit(clause.Associations).Create(reschedule).Error; err != nil {
				return err
			}
		}
		if err := tx.Omit(clause.Associations, "CreatedAt").Save(appt).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrSlotTaken
			}
			return err
		}
		return nil
	})
}

// Delete removes the appointment and its reschedule records
func (r *AppointmentRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var appt models.Appointment
		if err := tx.First(&appt, id).Error; err != nil {
			return notFound(err, ErrAppointmentNotFound)
		}
		return deleteAppointments(tx, "id = ?", id)
	})
}

// ListReschedules returns the reschedule history of an appointment, oldest first
func (r *AppointmentRepository) ListReschedules(appointmentID uint) ([]models.RescheduleRecord, error) {
	var records []models.RescheduleRecord
	err := r.db.Where("appointment_id = ?", appointmentID).
		Order("changed_at ASC, id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// CountByStatus counts a doctor's appointments in status, optionally on one slot date
func (r *AppointmentRepository) CountByStatus(doctorID uint, status models.AppointmentStatus, day *models.Date) (int64, error) {
	var count int64
	query := r.db.Model(&models.Appointment{}).
		Where("appointments.doctor_id = ? AND appointments.status = ?", doctorID, status)
	if day != nil {
		query = query.Joins("JOIN availabilities ON availabilities.id = appointments.availability_id").
			Where("availabilities.date = ?", *day)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DoctorAgenda is the number of approved appointments a doctor has on a day.
type DoctorAgenda struct {
	DoctorID uint
	Total    int64
}

// ApprovedPerDoctor groups the approved appointments of day by doctor
func (r *AppointmentRepository) ApprovedPerDoctor(day models.Date) ([]DoctorAgenda, error) {
	var rows []DoctorAgenda
	err := r.db.Model(&models.Appointment{}).
		Select("appointments.doctor_id AS doctor_id, COUNT(*) AS total").
		Joins("JOIN availabilities ON availabilities.id = appointments.availability_id").
		Where("appointments.status = ? AND availabilities.date = ?", models.StatusApproved, day).
		Group("appointments.doctor_id").
		Order("appointments.doctor_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ensureSlotFree fails with ErrSlotTaken when an active appointment other
// than exceptID holds slotID.
func ensureSlotFree(tx *gorm.DB, slotID, exceptID uint) error {
	var held int64
	query := tx.Model(&models.Appointment{}).Where("active_slot_id = ?", slotID)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	if err := query.Count(&held).Error; err != nil {
		return err
	}
	if held > 0 {
		return ErrSlotTaken
	}
	return nil
}
