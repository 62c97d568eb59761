package service

import (
	"fmt"
	"log"

	"clinic-booking-backend/internal/models"
	"clinic-booking-backend/internal/repository"
)

type NotificationService struct {
	notifRepo *repository.NotificationRepository
	apptRepo  *repository.AppointmentRepository
}

func NewNotificationService(notifRepo *repository.NotificationRepository, apptRepo *repository.AppointmentRepository) *NotificationService {
	return &NotificationService{
		notifRepo: notifRepo,
		apptRepo:  apptRepo,
	}
}

// List returns the calling doctor's notifications, newest first
func (s *NotificationService) List(actor Actor, unreadOnly bool) ([]models.Notification, error) {
	if !actor.Is(models.RoleDoctor) {
		return nil, ErrForbidden
	}
	return s.notifRepo.ListByDoctor(actor.UserID, unreadOnly)
}

// MarkRead flags one of the calling doctor's notifications as read
func (s *NotificationService) MarkRead(actor Actor, id uint) (*models.Notification, error) {
	notification, err := s.notifRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !actor.Is(models.RoleDoctor) || notification.DoctorID != actor.UserID {
		return nil, ErrForbidden
	}
	if !notification.IsRead {
		if err := s.notifRepo.MarkRead(id); err != nil {
			return nil, fmt.Errorf("failed to mark notification read: %w", err)
		}
		notification.IsRead = true
	}
	return notification, nil
}

// NotifyBookingRequest tells a doctor about a new appointment on one of their
// slots. Failures are logged and never surface to the booking caller.
func (s *NotificationService) NotifyBookingRequest(doctorID uint, requesterEmail string, slot *models.Availability) {
	message := fmt.Sprintf("New appointment request from %s for %s", requesterEmail, slot.Window())
	if err := s.notifRepo.CreateNotification(doctorID, message); err != nil {
		log.Printf("Warning: failed to notify doctor %d about booking: %v", doctorID, err)
	}
}

// SendDailyAgenda appends an agenda notification to every doctor with
// approved appointments on day and returns how many doctors were notified.
func (s *NotificationService) SendDailyAgenda(day models.Date) (int, error) {
	agendas, err := s.apptRepo.ApprovedPerDoctor(day)
	if err != nil {
		return 0, fmt.Errorf("failed to load agenda: %w", err)
	}

	sent := 0
	for _, agenda := range agendas {
		message := fmt.Sprintf("Today's agenda: %d approved appointment(s)", agenda.Total)
		if err := s.notifRepo.CreateNotification(agenda.DoctorID, message); err != nil {
			log.Printf("Error sending agenda to doctor %d: %v", agenda.DoctorID, err)
			continue
		}
		sent++
	}
	return sent, nil
}
