package models

// PatientProfile represents the patient_profiles table
type PatientProfile struct {
	ID     uint  `gorm:"primaryKey" json:"id"`
	UserID uint  `gorm:"uniqueIndex;not null" json:"user_id"`
	User   *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (PatientProfile) TableName() string {
	return "patient_profiles"
}

// DoctorProfile represents the doctor_profiles table. Its fields start as a
// copy of the account's and are edited independently afterwards.
type DoctorProfile struct {
	ID                     uint    `gorm:"primaryKey" json:"id"`
	UserID                 uint    `gorm:"uniqueIndex;not null" json:"user_id"`
	ContactNumber          string  `gorm:"size:20" json:"contact_number"`
	Specialization         string  `gorm:"size:100" json:"specialization"`
	SpecializationVerified bool    `gorm:"default:false" json:"specialization_verified"`
	ProfilePhoto           *string `gorm:"size:500" json:"profile_photo"`
	User                   *User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (DoctorProfile) TableName() string {
	return "doctor_profiles"
}

// StaffProfile represents the staff_profiles table
type StaffProfile struct {
	ID     uint  `gorm:"primaryKey" json:"id"`
	UserID uint  `gorm:"uniqueIndex;not null" json:"user_id"`
	User   *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (StaffProfile) TableName() string {
	return "staff_profiles"
}

// NewRoleProfile builds the profile record that belongs to a freshly inserted
// account. Admin accounts have no profile and get nil.
func NewRoleProfile(user *User) interface{} {
	switch user.Role {
	case RolePatient:
		return &PatientProfile{UserID: user.ID}
	case RoleStaff:
		return &StaffProfile{UserID: user.ID}
	case RoleDoctor:
		profile := &DoctorProfile{
			UserID:                 user.ID,
			SpecializationVerified: user.SpecializationVerified,
			ProfilePhoto:           user.ProfilePhoto,
		}
		if user.ContactNumber != nil {
			profile.ContactNumber = *user.ContactNumber
		}
		if user.Specialization != nil {
			profile.Specialization = *user.Specialization
		}
		return profile
	}
	return nil
}
