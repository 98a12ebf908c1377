package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleCitizen Role = "CITIZEN"
	RoleStaff   Role = "STAFF"
	RoleAdmin   Role = "ADMIN"
)

// IsStaff reports whether the role may perform staff operations (respond,
// change status). Admin is a superset of staff.
func (r Role) IsStaff() bool {
	return r == RoleStaff || r == RoleAdmin
}

type User struct {
	ID        string         `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name     string `json:"name"`
	Email    string `gorm:"uniqueIndex" json:"email"`
	Phone    string `json:"phone,omitempty"`
	Username string `gorm:"uniqueIndex" json:"username"`

	Role Role `gorm:"type:text;default:'CITIZEN'" json:"role"`

	// Staff scoping. A staff member only acts on tickets within their
	// assigned category; empty means unscoped (admin, or staff pending
	// assignment, who then cannot pass the category check).
	Agency           string `json:"agency,omitempty"`
	AssignedCategory string `json:"assignedCategory,omitempty"`

	Password string `json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}
