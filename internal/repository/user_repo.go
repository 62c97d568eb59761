package repository

import (
	"errors"
	"strings"

	"clinic-booking-backend/internal/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindUserByEmail finds a user by email
func (r *UserRepository) FindUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

// FindUserByID finds a user by primary key
func (r *UserRepository) FindUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

// FindDoctorByID finds a user by primary key that holds the doctor role
func (r *UserRepository) FindDoctorByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.Where("id = ? AND role = ?", id, models.RoleDoctor).First(&user).Error
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

// ListUsers returns all accounts, optionally restricted to one role
func (r *UserRepository) ListUsers(role models.Role) ([]models.User, error) {
	var users []models.User
	query := r.db.Order("id ASC")
	if role != "" {
		query = query.Where("role = ?", role)
	}
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// SearchDoctors matches q case-insensitively against names and specialization
func (r *UserRepository) SearchDoctors(q string) ([]models.User, error) {
	var doctors []models.User
	query := r.db.Where("role = ?", models.RoleDoctor).Order("last_name ASC, first_name ASC, id ASC")
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where(
			"(LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(COALESCE(specialization, '')) LIKE ?)",
			like, like, like,
		)
	}
	if err := query.Find(&doctors).Error; err != nil {
		return nil, err
	}
	return doctors, nil
}

// CreateUser inserts the account and the profile built for it by newProfile
// in one transaction. A nil profile means the role has none.
func (r *UserRepository) CreateUser(user *models.User, newProfile func(*models.User) interface{}) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailExists
			}
			return err
		}
		if profile := newProfile(user); profile != nil {
			if err := tx.Create(profile).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateUser persists the mutable account columns
func (r *UserRepository) UpdateUser(user *models.User) error {
	return r.db.Model(user).Select(
		"FirstName", "LastName", "ContactNumber", "Specialization", "ProfilePhoto", "IsAvailableOnCall",
	).Updates(user).Error
}

// SetAvailableOnCall sets the on-call flag of one account
func (r *UserRepository) SetAvailableOnCall(userID uint, available bool) error {
	return r.db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("is_available_on_call", available).Error
}

// FindDoctorProfile finds the doctor profile attached to userID
func (r *UserRepository) FindDoctorProfile(userID uint) (*models.DoctorProfile, error) {
	var profile models.DoctorProfile
	err := r.db.Where("user_id = ?", userID).Preload("User").First(&profile).Error
	if err != nil {
		return nil, notFound(err, ErrProfileNotFound)
	}
	return &profile, nil
}

// UpdateDoctorProfile persists the editable doctor profile columns
func (r *UserRepository) UpdateDoctorProfile(profile *models.DoctorProfile) error {
	return r.db.Model(profile).Select("ContactNumber", "Specialization", "ProfilePhoto").Updates(profile).Error
}

// DeleteUser removes an account together with everything it owns: profiles,
// slots, appointments on either side, their reschedule history,
// notifications and tokens. Audit entries are kept and detached.
func (r *UserRepository) DeleteUser(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			return notFound(err, ErrUserNotFound)
		}

		slotIDs := tx.Model(&models.Availability{}).Select("id").Where("doctor_id = ?", id)
		if err := deleteAppointments(tx,
			"(patient_id = ? OR doctor_id = ? OR availability_id IN (?))", id, id, slotIDs,
		); err != nil {
			return err
		}

		for _, model := range []interface{}{
			&models.Availability{}, &models.Notification{},
		} {
			if err := tx.Where("doctor_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		for _, model := range []interface{}{
			&models.PatientProfile{}, &models.DoctorProfile{}, &models.StaffProfile{}, &models.RefreshToken{},
		} {
			if err := tx.Where("user_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&models.AuditLog{}).Where("user_id = ?", id).Update("user_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
}

// CreateRefreshToken creates a new refresh token
func (r *UserRepository) CreateRefreshToken(token *models.RefreshToken) error {
	return r.db.Create(token).Error
}

// FindRefreshTokenByHash finds a refresh token by its hash
func (r *UserRepository) FindRefreshTokenByHash(hash string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	err := r.db.Where("token_hash = ? AND revoked = ?", hash, false).
		Preload("User").
		First(&token).Error
	if err != nil {
		return nil, notFound(err, ErrRefreshTokenNotFound)
	}
	return &token, nil
}

// RevokeRefreshTokenByHash marks a refresh token of userID as revoked by its hash
func (r *UserRepository) RevokeRefreshTokenByHash(userID uint, hash string) error {
	return r.db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND token_hash = ?", userID, hash).
		Update("revoked", true).Error
}

// deleteAppointments removes the matching appointments and their reschedule records.
func deleteAppointments(tx *gorm.DB, query interface{}, args ...interface{}) error {
	var ids []uint
	if err := tx.Model(&models.Appointment{}).Where(query, args...).Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("appointment_id IN ?", ids).Delete(&models.RescheduleRecord{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&models.Appointment{}).Error
}
