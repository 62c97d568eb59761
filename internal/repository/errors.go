package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not found")

var (
	ErrUserNotFound         = fmt.Errorf("user %w", ErrNotFound)
	ErrProfileNotFound      = fmt.Errorf("profile %w", ErrNotFound)
	ErrAvailabilityNotFound = fmt.Errorf("availability %w", ErrNotFound)
	ErrAppointmentNotFound  = fmt.Errorf("appointment %w", ErrNotFound)
	ErrNotificationNotFound = fmt.Errorf("notification %w", ErrNotFound)
	ErrRefreshTokenNotFound = fmt.Errorf("refresh token %w or revoked", ErrNotFound)

	ErrEmailExists = errors.New("email already registered")
	ErrSlotTaken   = errors.New("slot already has an active appointment")
)

// notFound maps gorm's missing-row error onto the given sentinel.
func notFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
