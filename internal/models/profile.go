package models

import (
	"time"
)

const DefaultLanguage = "en"

// UserProfile holds onboarding data for an account. There is at most one
// profile per user_id.
type UserProfile struct {
	ID                 uint      `json:"id" gorm:"primaryKey"`
	UserID             string    `json:"user_id" gorm:"uniqueIndex;not null;size:255"`
	Role               UserRole  `json:"role" gorm:"not null;size:20"`
	FullName           string    `json:"full_name" gorm:"not null;size:255"`
	GradeLevel         *string   `json:"grade_level" gorm:"size:20"`
	SchoolName         *string   `json:"school_name" gorm:"size:255"`
	LanguagePreference string    `json:"language_preference" gorm:"not null;size:10;default:en"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	Account *Account `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}

// ProfileWithAccount is a profile row joined with its account's email and name.
type ProfileWithAccount struct {
	UserProfile
	Email    string  `json:"email"`
	AuthName *string `json:"auth_name"`
}
