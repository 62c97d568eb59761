package service

import (
	"errors"
	"sort"
	"strings"

	"clinic-booking-backend/internal/models"
)

var (
	ErrForbidden          = errors.New("you do not have permission to perform this action")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveAccount    = errors.New("account is disabled")
	ErrInvalidToken       = errors.New("invalid or revoked refresh token")
	ErrTokenExpired       = errors.New("refresh token expired")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrSlotAlreadyBooked  = errors.New("slot already has an active appointment")
	ErrSlotBeingBooked    = errors.New("slot is currently being booked, please retry")
)

// ValidationError reports one message per offending input field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func fieldError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID uint
	Role   models.Role
}

func (a Actor) Is(role models.Role) bool {
	return a.Role == role
}
