package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04:05"
)

// Date is a calendar day stored as a SQL DATE and rendered as YYYY-MM-DD.
type Date struct {
	datatypes.Date
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{datatypes.Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))}
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return DateOf(t), nil
}

func (d Date) t() time.Time { return time.Time(d.Date) }

func (d Date) AddDays(n int) Date { return DateOf(d.t().AddDate(0, 0, n)) }

func (d Date) Weekday() time.Weekday { return d.t().Weekday() }

func (d Date) Before(other Date) bool { return d.t().Before(other.t()) }
func (d Date) After(other Date) bool  { return d.t().After(other.t()) }

func (d Date) String() string {
	return d.t().Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan accepts driver times and textual dates, keeping only the calendar day.
func (d *Date) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		value = string(v)
	}
	if s, ok := value.(string); ok {
		if len(s) > len(DateLayout) {
			s = s[:len(DateLayout)]
		}
		parsed, err := ParseDate(s)
		if err != nil {
			return err
		}
		value = parsed.t()
	}
	if err := d.Date.Scan(value); err != nil {
		return err
	}
	if value != nil {
		*d = DateOf(d.t())
	}
	return nil
}

// ClockTime is a wall-clock time of day with second precision, stored as a SQL TIME.
type ClockTime struct {
	datatypes.Time
}

func NewClockTime(hour, minute, second int) ClockTime {
	return ClockTime{datatypes.NewTime(hour, minute, second, 0)}
}

// ClockOf returns the time of day of t.
func ClockOf(t time.Time) ClockTime {
	return NewClockTime(t.Hour(), t.Minute(), t.Second())
}

// ParseClockTime accepts HH:MM or HH:MM:SS; fractional seconds are dropped.
func ParseClockTime(s string) (ClockTime, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	for _, layout := range []string{ClockLayout, "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return ClockOf(t), nil
		}
	}
	return ClockTime{}, fmt.Errorf("invalid time %q, expected HH:MM[:SS]", s)
}

func (c ClockTime) elapsed() time.Duration { return time.Duration(c.Time) }

func (c ClockTime) Hour() int   { return int(c.elapsed() / time.Hour) }
func (c ClockTime) Minute() int { return int(c.elapsed() % time.Hour / time.Minute) }
func (c ClockTime) Second() int { return int(c.elapsed() % time.Minute / time.Second) }

func (c ClockTime) Before(other ClockTime) bool { return c.Time < other.Time }

func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Scan also accepts TIME columns some drivers return as full timestamps.
func (c *ClockTime) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		value = string(v)
	}
	if s, ok := value.(string); ok && strings.Count(s, "-") >= 2 {
		if i := strings.IndexAny(s, "T "); i >= 0 {
			s = s[i+1:]
		}
		if i := strings.IndexAny(s, "+-Z"); i >= 0 {
			s = s[:i]
		}
		value = s
	}
	return c.Time.Scan(value)
}
