package models

import "time"

type Repeat string

const (
	RepeatNone     Repeat = "none"
	RepeatWeekly   Repeat = "weekly"
	RepeatBiweekly Repeat = "biweekly"
)

func (r Repeat) Valid() bool {
	return r == RepeatNone || r == RepeatWeekly || r == RepeatBiweekly
}

// IntervalDays is the spacing between generated slots, 0 for one-time slots.
func (r Repeat) IntervalDays() int {
	switch r {
	case RepeatWeekly:
		return 7
	case RepeatBiweekly:
		return 14
	}
	return 0
}

// Availability represents the availabilities table: one bookable slot of a doctor.
type Availability struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	DoctorID    uint      `gorm:"not null;index:idx_availability_doctor_date" json:"doctor"`
	Date        Date      `gorm:"not null;index:idx_availability_doctor_date" json:"date"`
	StartTime   ClockTime `gorm:"not null" json:"start_time"`
	EndTime     ClockTime `gorm:"not null" json:"end_time"`
	Repeat      Repeat    `gorm:"size:10;not null;default:'none'" json:"repeat"`
	RepeatUntil *Date     `json:"repeat_until"`
	CreatedAt   time.Time `json:"created_at"`
	Doctor      *User     `gorm:"foreignKey:DoctorID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for Availability model
func (Availability) TableName() string {
	return "availabilities"
}

// Window renders the slot as "<date> <start>-<end>".
func (a *Availability) Window() string {
	return a.Date.String() + " " + a.StartTime.String() + "-" + a.EndTime.String()
}
