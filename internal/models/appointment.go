package models

import (
	"time"

	"gorm.io/gorm"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusApproved  AppointmentStatus = "approved"
	StatusDeclined  AppointmentStatus = "declined"
	StatusCancelled AppointmentStatus = "cancelled"
)

type TriageStatus string

const (
	TriageWaiting        TriageStatus = "waiting"
	TriageInConsultation TriageStatus = "in_consultation"
	TriageDone           TriageStatus = "done"
	TriageNoShow         TriageStatus = "no_show"
)

// Legal moves of the two lifecycles. States missing as keys are terminal.
var (
	statusTransitions = map[AppointmentStatus][]AppointmentStatus{
		StatusPending:  {StatusApproved, StatusDeclined, StatusCancelled},
		StatusApproved: {StatusCancelled},
	}
	triageTransitions = map[TriageStatus][]TriageStatus{
		TriageWaiting:        {TriageInConsultation, TriageNoShow},
		TriageInConsultation: {TriageDone, TriageNoShow},
	}
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDeclined, StatusCancelled:
		return true
	}
	return false
}

// Active reports whether an appointment in this status holds its slot.
func (s AppointmentStatus) Active() bool {
	return s == StatusPending || s == StatusApproved
}

// CanTransitionTo reports whether s may move to next. Staying put is always allowed.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (t TriageStatus) Valid() bool {
	switch t {
	case TriageWaiting, TriageInConsultation, TriageDone, TriageNoShow:
		return true
	}
	return false
}

func (t TriageStatus) CanTransitionTo(next TriageStatus) bool {
	if t == next {
		return true
	}
	for _, allowed := range triageTransitions[t] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Appointment represents the appointments table.
//
// ActiveSlotID mirrors AvailabilityID while the appointment is pending or
// approved and is NULL otherwise; its unique index allows at most one active
// appointment per slot.
type Appointment struct {
	ID             uint              `gorm:"primaryKey" json:"id"`
	PatientID      uint              `gorm:"not null;index" json:"patient"`
	DoctorID       uint              `gorm:"not null;index" json:"doctor"`
	AvailabilityID uint              `gorm:"not null;index" json:"availability"`
	ActiveSlotID   *uint             `gorm:"uniqueIndex" json:"-"`
	Status         AppointmentStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	TriageStatus   *TriageStatus     `gorm:"size:20;default:'waiting'" json:"triage_status"`
	Reason         *string           `gorm:"type:text" json:"reason"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`

	Patient *User         `gorm:"foreignKey:PatientID;constraint:OnDelete:CASCADE" json:"-"`
	Doctor  *User         `gorm:"foreignKey:DoctorID;constraint:OnDelete:CASCADE" json:"-"`
	Slot    *Availability `gorm:"foreignKey:AvailabilityID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for Appointment model
func (Appointment) TableName() string {
	return "appointments"
}

// BeforeSave keeps ActiveSlotID in step with Status and AvailabilityID.
func (a *Appointment) BeforeSave(tx *gorm.DB) error {
	if a.Status.Active() {
		slotID := a.AvailabilityID
		a.ActiveSlotID = &slotID
	} else {
		a.ActiveSlotID = nil
	}
	return nil
}

// CurrentTriage treats a missing triage value as waiting.
func (a *Appointment) CurrentTriage() TriageStatus {
	if a.TriageStatus == nil {
		return TriageWaiting
	}
	return *a.TriageStatus
}

// Finished reports whether the appointment is over: closed by status or by triage.
func (a *Appointment) Finished() bool {
	if a.Status == StatusCancelled || a.Status == StatusDeclined {
		return true
	}
	t := a.CurrentTriage()
	return t == TriageDone || t == TriageNoShow
}

// AppointmentView is the JSON shape of an appointment with its slot and parties resolved.
type AppointmentView struct {
	ID           uint              `json:"id"`
	Patient      uint              `json:"patient"`
	PatientEmail string            `json:"patient_email,omitempty"`
	PatientName  string            `json:"patient_name,omitempty"`
	Doctor       uint              `json:"doctor"`
	DoctorName   string            `json:"doctor_name,omitempty"`
	Availability uint              `json:"availability"`
	Slot         *Availability     `json:"slot,omitempty"`
	Status       AppointmentStatus `json:"status"`
	TriageStatus *TriageStatus     `json:"triage_status"`
	Reason       *string           `json:"reason"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func (a *Appointment) View() AppointmentView {
	view := AppointmentView{
		ID:           a.ID,
		Patient:      a.PatientID,
		Doctor:       a.DoctorID,
		Availability: a.AvailabilityID,
		Slot:         a.Slot,
		Status:       a.Status,
		TriageStatus: a.TriageStatus,
		Reason:       a.Reason,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
	if a.Patient != nil {
		view.PatientEmail = a.Patient.Email
		view.PatientName = a.Patient.FullName()
	}
	if a.Doctor != nil {
		view.DoctorName = a.Doctor.FullName()
	}
	return view
}
