package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"clinic-booking-backend/internal/models"
	"clinic-booking-backend/internal/repository"
	"clinic-booking-backend/pkg/utils"
)

type AuthService struct {
	userRepo  *repository.UserRepository
	auditRepo *repository.AuditRepository
}

func NewAuthService(userRepo *repository.UserRepository, auditRepo *repository.AuditRepository) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		auditRepo: auditRepo,
	}
}

// LoginResponse represents the response structure for login
type LoginResponse struct {
	AccessToken  string       `json:"access"`
	RefreshToken string       `json:"refresh"`
	User         UserResponse `json:"user"`
}

// UserResponse is the caller identity returned by login and whoami
type UserResponse struct {
	ID    uint        `json:"id"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

// RegisterInput carries the fields accepted at sign-up
type RegisterInput struct {
	Email          string
	Password       string
	Role           models.Role
	FirstName      string
	LastName       string
	ContactNumber  *string
	Specialization *string
	ProfilePhoto   *string
}

// NormalizeEmail trims and lower-cases an address so lookups are case-insensitive
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a doctor, staff or patient account along with its role profile
func (s *AuthService) Register(input RegisterInput) (*models.User, error) {
	if input.Role != models.RoleDoctor && input.Role != models.RoleStaff && input.Role != models.RolePatient {
		return nil, fieldError("role", "Must be one of: doctor, staff, patient.")
	}
	return s.createAccount(input)
}

// CreateAdmin creates an administrator account. Admins have no profile.
func (s *AuthService) CreateAdmin(email, password string) (*models.User, error) {
	return s.createAccount(RegisterInput{
		Email:     email,
		Password:  password,
		Role:      models.RoleAdmin,
		FirstName: "Admin",
	})
}

func (s *AuthService) createAccount(input RegisterInput) (*models.User, error) {
	email := NormalizeEmail(input.Email)
	if email == "" {
		return nil, fieldError("email", "This field is required.")
	}
	if len(input.Password) < utils.MinPasswordLength {
		return nil, fieldError("password", fmt.Sprintf("Ensure this field has at least %d characters.", utils.MinPasswordLength))
	}

	// Check if email already exists
	if existing, err := s.userRepo.FindUserByEmail(email); err == nil && existing != nil {
		return nil, fieldError("email", "An account with this email already exists.")
	}

	// Hash the password
	passwordHash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:          email,
		PasswordHash:   passwordHash,
		Role:           input.Role,
		FirstName:      strings.TrimSpace(input.FirstName),
		LastName:       strings.TrimSpace(input.LastName),
		ContactNumber:  input.ContactNumber,
		Specialization: input.Specialization,
		ProfilePhoto:   input.ProfilePhoto,
		IsActive:       true,
		IsStaff:        input.Role == models.RoleStaff || input.Role == models.RoleAdmin,
	}

	if err := s.userRepo.CreateUser(user, models.NewRoleProfile); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, fieldError("email", "An account with this email already exists.")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Log registration action
	_ = s.auditRepo.CreateAuditLog(&user.ID, "user_registration", fmt.Sprintf("User %s registered as %s", email, user.Role))

	return user, nil
}

// Login authenticates a user and returns tokens. Doctors become available on call.
func (s *AuthService) Login(email, password string) (*LoginResponse, error) {
	// Find user by email
	user, err := s.userRepo.FindUserByEmail(NormalizeEmail(email))
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	// Compare password
	if !utils.ComparePassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInactiveAccount
	}

	if user.Role == models.RoleDoctor {
		if err := s.userRepo.SetAvailableOnCall(user.ID, true); err != nil {
			return nil, fmt.Errorf("failed to update on-call status: %w", err)
		}
		user.IsAvailableOnCall = true
	}

	// Generate access token
	accessToken, err := utils.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	// Generate refresh token
	refreshToken, err := utils.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	// Hash and store refresh token
	refreshTokenModel := &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: utils.HashRefreshToken(refreshToken),
		ExpiresAt: time.Now().Add(utils.GetRefreshTokenExpiry()),
	}

	if err := s.userRepo.CreateRefreshToken(refreshTokenModel); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	// Log login action
	_ = s.auditRepo.CreateAuditLog(&user.ID, "user_login", fmt.Sprintf("User %s logged in", user.Email))

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: UserResponse{
			ID:    user.ID,
			Email: user.Email,
			Role:  user.Role,
		},
	}, nil
}

// RefreshAccessToken generates a new access token from a refresh token
func (s *AuthService) RefreshAccessToken(refreshToken string) (string, error) {
	// Find refresh token in database
	token, err := s.userRepo.FindRefreshTokenByHash(utils.HashRefreshToken(refreshToken))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidToken
		}
		return "", err
	}

	// Check if token is expired
	if time.Now().After(token.ExpiresAt) {
		return "", ErrTokenExpired
	}
	if token.User == nil || !token.User.IsActive {
		return "", ErrInvalidToken
	}

	// Generate new access token
	accessToken, err := utils.GenerateAccessToken(token.User.ID, token.User.Email, string(token.User.Role))
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}

	return accessToken, nil
}

// Logout takes a doctor off call and revokes the given refresh token, if any.
// For other roles the on-call flag is left alone.
func (s *AuthService) Logout(actor Actor, refreshToken string) error {
	if actor.Is(models.RoleDoctor) {
		if err := s.userRepo.SetAvailableOnCall(actor.UserID, false); err != nil {
			return fmt.Errorf("failed to update on-call status: %w", err)
		}
	}

	if refreshToken != "" {
		if err := s.userRepo.RevokeRefreshTokenByHash(actor.UserID, utils.HashRefreshToken(refreshToken)); err != nil {
			return fmt.Errorf("failed to revoke refresh token: %w", err)
		}
	}

	_ = s.auditRepo.CreateAuditLog(&actor.UserID, "user_logout", fmt.Sprintf("User %d logged out", actor.UserID))

	return nil
}
