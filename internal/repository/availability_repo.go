package repository

import (
	"clinic-booking-backend/internal/models"

	"gorm.io/gorm"
)

type AvailabilityRepository struct {
	db *gorm.DB
}

func NewAvailabilityRepo(db *gorm.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// AvailabilityFilter narrows slot listings. Zero fields do not filter.
type AvailabilityFilter struct {
	DoctorID *uint
	Date     *models.Date
	From     *models.Date
	OpenOnly bool // exclude slots held by a pending or approved appointment
}

// CreateSlots inserts a slot series atomically; IDs are written back into slots.
func (r *AvailabilityRepository) CreateSlots(slots []models.Availability) error {
	if len(slots) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Doctor").Create(&slots).Error
	})
}

// FindByID finds a slot by primary key
func (r *AvailabilityRepository) FindByID(id uint) (*models.Availability, error) {
	var slot models.Availability
	if err := r.db.First(&slot, id).Error; err != nil {
		return nil, notFound(err, ErrAvailabilityNotFound)
	}
	return &slot, nil
}

// List returns slots ordered by date and start time
func (r *AvailabilityRepository) List(filter AvailabilityFilter) ([]models.Availability, error) {
	var slots []models.Availability
	query := r.db.Model(&models.Availability{}).Order("date ASC, start_time ASC, id ASC")
	if filter.DoctorID != nil {
		query = query.Where("doctor_id = ?", *filter.DoctorID)
	}
	if filter.Date != nil {
		query = query.Where("date = ?", *filter.Date)
	}
	if filter.From != nil {
		query = query.Where("date >= ?", *filter.From)
	}
	if filter.OpenOnly {
		query = query.Where("NOT EXISTS (?)",
			r.db.Model(&models.Appointment{}).Select("1").Where("appointments.active_slot_id = availabilities.id"))
	}
	if err := query.Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

// Upcoming returns up to limit slots of doctorID starting at or after the given day and time
func (r *AvailabilityRepository) Upcoming(doctorID uint, day models.Date, at models.ClockTime, limit int) ([]models.Availability, error) {
	var slots []models.Availability
	err := r.db.Where("doctor_id = ?", doctorID).
		Where("(date > ? OR (date = ? AND start_time >= ?))", day, day, at).
		Order("date ASC, start_time ASC, id ASC").
		Limit(limit).
		Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

// Update persists every column of the slot
func (r *AvailabilityRepository) Update(slot *models.Availability) error {
	return r.db.Omit("Doctor", "CreatedAt").Save(slot).Error
}

// Delete removes the slot, the appointments bound to it and their reschedule records
func (r *AvailabilityRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := deleteAppointments(tx, "availability_id = ?", id); err != nil {
			return err
		}
		result := tx.Delete(&models.Availability{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrAvailabilityNotFound
		}
		return nil
	})
}
