package models

import "time"

// RescheduleRecord represents the reschedule_records table: the slot an
// appointment was bound to before it moved. Rows are never updated.
type RescheduleRecord struct {
	ID                uint         `gorm:"primaryKey" json:"id"`
	AppointmentID     uint         `gorm:"not null;index" json:"appointment"`
	PreviousDate      Date         `gorm:"not null" json:"previous_date"`
	PreviousStartTime ClockTime    `gorm:"not null" json:"previous_start_time"`
	PreviousEndTime   ClockTime    `gorm:"not null" json:"previous_end_time"`
	ChangedAt         time.Time    `gorm:"autoCreateTime" json:"changed_at"`
	Appointment       *Appointment `gorm:"foreignKey:AppointmentID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for RescheduleRecord model
func (RescheduleRecord) TableName() string {
	return "reschedule_records"
}

func NewRescheduleRecord(appointmentID uint, previous *Availability, changedAt time.Time) *RescheduleRecord {
	return &RescheduleRecord{
		AppointmentID:     appointmentID,
		PreviousDate:      previous.Date,
		PreviousStartTime: previous.StartTime,
		PreviousEndTime:   previous.EndTime,
		ChangedAt:         changedAt,
	}
}
