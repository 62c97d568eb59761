package repository

import (
	"clinic-booking-backend/internal/models"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepo(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateNotification appends a notification for a doctor
func (r *NotificationRepository) CreateNotification(doctorID uint, message string) error {
	return r.db.Create(&models.Notification{
		DoctorID: doctorID,
		Message:  message,
	}).Error
}

// ListByDoctor returns a doctor's notifications, newest first
func (r *NotificationRepository) ListByDoctor(doctorID uint, unreadOnly bool) ([]models.Notification, error) {
	var notifications []models.Notification
	query := r.db.Where("doctor_id = ?", doctorID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}
	if err := query.Order("created_at DESC, id DESC").Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

// FindByID finds a notification by primary key
func (r *NotificationRepository) FindByID(id uint) (*models.Notification, error) {
	var notification models.Notification
	if err := r.db.First(&notification, id).Error; err != nil {
		return nil, notFound(err, ErrNotificationNotFound)
	}
	return &notification, nil
}

// MarkRead flags a notification as read
func (r *NotificationRepository) MarkRead(id uint) error {
	return r.db.Model(&models.Notification{}).
		Where("id = ?", id).
		Update("is_read", true).Error
}
