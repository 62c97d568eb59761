package models

import "time"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RoleStaff   Role = "staff"
	RolePatient Role = "patient"
)

// Valid reports whether r is one of the four account roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleStaff, RolePatient:
		return true
	}
	return false
}

// User represents the users table. Role is fixed at creation.
type User struct {
	ID                     uint      `gorm:"primaryKey" json:"id"`
	Email                  string    `gorm:"uniqueIndex;not null;size:254" json:"email"`
	PasswordHash           string    `gorm:"not null;size:255" json:"-"`
	Role                   Role      `gorm:"size:10;not null;index" json:"role"`
	FirstName              string    `gorm:"size:30" json:"first_name"`
	LastName               string    `gorm:"size:30" json:"last_name"`
	ContactNumber          *string   `gorm:"size:20" json:"contact_number"`
	Specialization         *string   `gorm:"size:100" json:"specialization"`
	SpecializationVerified bool      `gorm:"default:false" json:"specialization_verified"`
	ProfilePhoto           *string   `gorm:"size:500" json:"profile_photo"`
	IsActive               bool      `gorm:"default:true" json:"is_active"`
	IsStaff                bool      `gorm:"default:false" json:"is_staff"`
	IsAvailableOnCall      bool      `gorm:"default:false" json:"is_available_on_call"`
	DateJoined             time.Time `gorm:"autoCreateTime" json:"date_joined"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// PublicDoctor is the subset of a doctor account exposed without authentication.
type PublicDoctor struct {
	ID                     uint    `json:"id"`
	FirstName              string  `json:"first_name"`
	LastName               string  `json:"last_name"`
	Specialization         *string `json:"specialization"`
	SpecializationVerified bool    `json:"specialization_verified"`
	ProfilePhoto           *string `json:"profile_photo"`
	IsAvailableOnCall      bool    `json:"is_available_on_call"`
}

func (u *User) Public() PublicDoctor {
	return PublicDoctor{
		ID:                     u.ID,
		FirstName:              u.FirstName,
		LastName:               u.LastName,
		Specialization:         u.Specialization,
		SpecializationVerified: u.SpecializationVerified,
		ProfilePhoto:           u.ProfilePhoto,
		IsAvailableOnCall:      u.IsAvailableOnCall,
	}
}

// RefreshToken represents the refresh_tokens table
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	TokenHash string    `gorm:"not null;size:255;index" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	Revoked   bool      `gorm:"default:false" json:"revoked"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

// TableName specifies the table name for RefreshToken model
func (RefreshToken) TableName() string {
	return "refresh_tokens"
}
