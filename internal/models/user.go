package models

import (
	"time"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleParent  UserRole = "parent"
)

// ValidRoles lists the roles a profile may carry.
var ValidRoles = []UserRole{RoleStudent, RoleTeacher, RoleParent}

func (r UserRole) IsValid() bool {
	for _, role := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Account is the identity-provider record for a signed-in user. Rows are
// upserted by the auth middleware whenever a session is authenticated.
type Account struct {
	ID         string    `json:"id" gorm:"primaryKey;size:255"`
	Email      string    `json:"email" gorm:"size:255"`
	Name       *string   `json:"name" gorm:"size:255"`
	LastSeenAt time.Time `json:"last_seen_at"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Account) TableName() string {
	return "auth_users"
}
