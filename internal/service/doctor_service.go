package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"clinic-booking-backend/internal/models"
	"clinic-booking-backend/internal/repository"
)

const upcomingSlotsLimit = 5

// ExportHeader is the first row of the appointment history CSV
var ExportHeader = []string{"Patient Email", "Date", "Time", "Status", "Triage", "Reason"}

// DoctorService serves the doctor dashboard, patient summaries and exports.
type DoctorService struct {
	apptRepo  *repository.AppointmentRepository
	availRepo *repository.AvailabilityRepository
	now       func() time.Time
}

func NewDoctorService(apptRepo *repository.AppointmentRepository, availRepo *repository.AvailabilityRepository, now func() time.Time) *DoctorService {
	if now == nil {
		now = time.Now
	}
	return &DoctorService{
		apptRepo:  apptRepo,
		availRepo: availRepo,
		now:       now,
	}
}

type DashboardOverview struct {
	TodayAppointments int64                 `json:"today_appointments"`
	UpcomingSlots     []models.Availability `json:"upcoming_slots"`
	PendingRequests   int64                 `json:"pending_requests"`
}

type PatientAppointment struct {
	ID           uint                     `json:"id"`
	Date         models.Date              `json:"date"`
	StartTime    models.ClockTime         `json:"start_time"`
	EndTime      models.ClockTime         `json:"end_time"`
	Reason       *string                  `json:"reason"`
	Status       models.AppointmentStatus `json:"status"`
	TriageStatus *models.TriageStatus     `json:"triage_status"`
}

type PatientSummary struct {
	ID           uint                 `json:"id"`
	Email        string               `json:"email"`
	Name         string               `json:"name"`
	Appointments []PatientAppointment `json:"appointments"`
}

// Dashboard returns today's approved count, the next free-or-booked slots and
// the number of pending requests of the calling doctor.
func (s *DoctorService) Dashboard(actor Actor) (*DashboardOverview, error) {
	if !actor.Is(models.RoleDoctor) {
		return nil, ErrForbidden
	}

	now := s.now()
	today := models.DateOf(now)

	approvedToday, err := s.apptRepo.CountByStatus(actor.UserID, models.StatusApproved, &today)
	if err != nil {
		return nil, fmt.Errorf("failed to count today's appointments: %w", err)
	}
	pending, err := s.apptRepo.CountByStatus(actor.UserID, models.StatusPending, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending appointments: %w", err)
	}
	upcoming, err := s.availRepo.Upcoming(actor.UserID, today, models.ClockOf(now), upcomingSlotsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load upcoming slots: %w", err)
	}

	return &DashboardOverview{
		TodayAppointments: approvedToday,
		UpcomingSlots:     upcoming,
		PendingRequests:   pending,
	}, nil
}

// PatientSummaries groups the calling doctor's appointments by patient, in
// order of each patient's earliest slot.
func (s *DoctorService) PatientSummaries(actor Actor) ([]PatientSummary, error) {
	if !actor.Is(models.RoleDoctor) {
		return nil, ErrForbidden
	}

	self := actor.UserID
	appts, err := s.apptRepo.List(repository.AppointmentFilter{DoctorID: &self})
	if err != nil {
		return nil, err
	}

	summaries := []PatientSummary{}
	index := map[uint]int{}
	for _, appt := range appts {
		i, seen := index[appt.PatientID]
		if !seen {
			summary := PatientSummary{ID: appt.PatientID, Appointments: []PatientAppointment{}}
			if appt.Patient != nil {
				summary.Email = appt.Patient.Email
				summary.Name = appt.Patient.FullName()
			}
			summaries = append(summaries, summary)
			i = len(summaries) - 1
			index[appt.PatientID] = i
		}

		entry := PatientAppointment{
			ID:           appt.ID,
			Reason:       appt.Reason,
			Status:       appt.Status,
			TriageStatus: appt.TriageStatus,
		}
		if appt.Slot != nil {
			entry.Date = appt.Slot.Date
			entry.StartTime = appt.Slot.StartTime
			entry.EndTime = appt.Slot.EndTime
		}
		summaries[i].Appointments = append(summaries[i].Appointments, entry)
	}
	return summaries, nil
}

// ExportHistory writes the calling doctor's finished appointments as CSV
func (s *DoctorService) ExportHistory(actor Actor, w io.Writer) error {
	if !actor.Is(models.RoleDoctor) {
		return ErrForbidden
	}

	self := actor.UserID
	appts, err := s.apptRepo.List(repository.AppointmentFilter{DoctorID: &self, FinishedOnly: true})
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(ExportHeader); err != nil {
		return err
	}
	for _, appt := range appts {
		row := []string{"", "", "", string(appt.Status), "", ""}
		if appt.Patient != nil {
			row[0] = appt.Patient.Email
		}
		if appt.Slot != nil {
			row[1] = appt.Slot.Date.String()
			row[2] = appt.Slot.StartTime.String() + " - " + appt.Slot.EndTime.String()
		}
		if appt.TriageStatus != nil {
			row[4] = string(*appt.TriageStatus)
		}
		if appt.Reason != nil {
			row[5] = *appt.Reason
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
