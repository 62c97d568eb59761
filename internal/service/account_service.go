package service

import (
	"fmt"
	"strings"

	"clinic-booking-backend/internal/models"
	"clinic-booking-backend/internal/repository"
)

type AccountService struct {
	userRepo  *repository.UserRepository
	auditRepo *repository.AuditRepository
}

func NewAccountService(userRepo *repository.UserRepository, auditRepo *repository.AuditRepository) *AccountService {
	return &AccountService{
		userRepo:  userRepo,
		auditRepo: auditRepo,
	}
}

// ProfileUpdate holds the account fields a user may change on their own
// profile. Nil fields are left untouched.
type ProfileUpdate struct {
	FirstName      *string
	LastName       *string
	ContactNumber  *string
	Specialization *string
	ProfilePhoto   *string
}

// DoctorProfileUpdate holds the editable doctor profile fields. Nil fields are left untouched.
type DoctorProfileUpdate struct {
	ContactNumber  *string
	Specialization *string
	ProfilePhoto   *string
}

// DoctorProfileView is the doctor profile record with its account identity
type DoctorProfileView struct {
	ID                     uint    `json:"id"`
	Email                  string  `json:"email"`
	FirstName              string  `json:"first_name"`
	LastName               string  `json:"last_name"`
	ContactNumber          string  `json:"contact_number"`
	Specialization         string  `json:"specialization"`
	SpecializationVerified bool    `json:"specialization_verified"`
	ProfilePhoto           *string `json:"profile_photo"`
	IsAvailableOnCall      bool    `json:"is_available_on_call"`
}

func (s *AccountService) Identity(actor Actor) (*UserResponse, error) {
	user, err := s.userRepo.FindUserByID(actor.UserID)
	if err != nil {
		return nil, err
	}
	return &UserResponse{ID: user.ID, Email: user.Email, Role: user.Role}, nil
}

// ListUsers returns every account, or only those holding role when it is set
func (s *AccountService) ListUsers(role string) ([]models.User, error) {
	r := models.Role(strings.ToLower(strings.TrimSpace(role)))
	if r != "" && !r.Valid() {
		return nil, fieldError("role", "Must be one of: admin, doctor, staff, patient.")
	}
	return s.userRepo.ListUsers(r)
}

func (s *AccountService) GetUser(id uint) (*models.User, error) {
	return s.userRepo.FindUserByID(id)
}

// DeleteUser removes an account and everything it owns. Admin only; admins
// cannot delete themselves.
func (s *AccountService) DeleteUser(actor Actor, id uint) error {
	if !actor.Is(models.RoleAdmin) {
		return ErrForbidden
	}
	if actor.UserID == id {
		return fieldError("id", "You cannot delete your own account.")
	}
	if err := s.userRepo.DeleteUser(id); err != nil {
		return err
	}
	_ = s.auditRepo.CreateAuditLog(&actor.UserID, "user_deleted", fmt.Sprintf("User %d deleted", id))
	return nil
}

func (s *AccountService) GetProfile(actor Actor) (*models.User, error) {
	return s.userRepo.FindUserByID(actor.UserID)
}

// UpdateProfile applies a partial update to the caller's own account.
// Email, role and the verification flag are not writable here.
func (s *AccountService) UpdateProfile(actor Actor, update ProfileUpdate) (*models.User, error) {
	user, err := s.userRepo.FindUserByID(actor.UserID)
	if err != nil {
		return nil, err
	}

	if update.FirstName != nil {
		user.FirstName = strings.TrimSpace(*update.FirstName)
	}
	if update.LastName != nil {
		user.LastName = strings.TrimSpace(*update.LastName)
	}
	if update.ContactNumber != nil {
		user.ContactNumber = update.ContactNumber
	}
	if update.Specialization != nil {
		user.Specialization = update.Specialization
	}
	if update.ProfilePhoto != nil {
		user.ProfilePhoto = update.ProfilePhoto
	}

	if err := s.userRepo.UpdateUser(user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

func (s *AccountService) GetDoctorProfile(actor Actor) (*DoctorProfileView, error) {
	if !actor.Is(models.RoleDoctor) {
		return nil, ErrForbidden
	}
	profile, err := s.userRepo.FindDoctorProfile(actor.UserID)
	if err != nil {
		return nil, err
	}
	return doctorProfileView(profile), nil
}

func (s *AccountService) UpdateDoctorProfile(actor Actor, update DoctorProfileUpdate) (*DoctorProfileView, error) {
	if !actor.Is(models.RoleDoctor) {
		return nil, ErrForbidden
	}
	profile, err := s.userRepo.FindDoctorProfile(actor.UserID)
	if err != nil {
		return nil, err
	}

	if update.ContactNumber != nil {
		profile.ContactNumber = strings.TrimSpace(*update.ContactNumber)
	}
	if update.Specialization != nil {
		profile.Specialization = strings.TrimSpace(*update.Specialization)
	}
	if update.ProfilePhoto != nil {
		profile.ProfilePhoto = update.ProfilePhoto
	}

	if err := s.userRepo.UpdateDoctorProfile(profile); err != nil {
		return nil, fmt.Errorf("failed to update doctor profile: %w", err)
	}
	return doctorProfileView(profile), nil
}

func doctorProfileView(profile *models.DoctorProfile) *DoctorProfileView {
	view := &DoctorProfileView{
		ID:                     profile.ID,
		ContactNumber:          profile.ContactNumber,
		Specialization:         profile.Specialization,
		SpecializationVerified: profile.SpecializationVerified,
		ProfilePhoto:           profile.ProfilePhoto,
	}
	if profile.User != nil {
		view.Email = profile.User.Email
		view.FirstName = profile.User.FirstName
		view.LastName = profile.User.LastName
		view.IsAvailableOnCall = profile.User.IsAvailableOnCall
	}
	return view
}

// PublicDoctor returns the public card of a doctor
func (s *AccountService) PublicDoctor(id uint) (*models.PublicDoctor, error) {
	doctor, err := s.userRepo.FindDoctorByID(id)
	if err != nil {
		return nil, err
	}
	card := doctor.Public()
	return &card, nil
}

// SearchDoctors returns public cards of doctors matching q; an empty q lists all doctors
func (s *AccountService) SearchDoctors(q string) ([]models.PublicDoctor, error) {
	doctors, err := s.userRepo.SearchDoctors(q)
	if err != nil {
		return nil, err
	}
	cards := make([]models.PublicDoctor, 0, len(doctors))
	for i := range doctors {
		cards = append(cards, doctors[i].Public())
	}
	return cards, nil
}

// SetAvailableOnCall changes the caller's on-call flag. Doctors only.
func (s *AccountService) SetAvailableOnCall(actor Actor, available bool) (bool, error) {
	if !actor.Is(models.RoleDoctor) {
		return false, ErrForbidden
	}
	if err := s.userRepo.SetAvailableOnCall(actor.UserID, available); err != nil {
		return false, fmt.Errorf("failed to update on-call status: %w", err)
	}
	return available, nil
}
