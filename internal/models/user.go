package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AnonymousUser is shown in place of a creator or author whose account was removed.
const AnonymousUser = "Anonymous User"

type User struct {
	ID           uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Email        string         `gorm:"size:254;uniqueIndex;not null" json:"email"`
	FirstName    string         `gorm:"size:50;not null" json:"first_name"`
	LastName     string         `gorm:"size:50;not null" json:"last_name"`
	PasswordHash string         `gorm:"not null" json:"-"`
	IsAdmin      bool           `gorm:"not null;default:false" json:"is_admin"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Email = NormalizeEmail(u.Email)
	return nil
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Active reports whether the account has not been soft deleted.
func (u *User) Active() bool {
	return !u.DeletedAt.Valid
}

// DisplayName returns the public name of u, falling back to AnonymousUser
// for missing or deactivated accounts.
func DisplayName(u *User) string {
	if u == nil || !u.Active() {
		return AnonymousUser
	}
	if name := u.FullName(); name != "" {
		return name
	}
	return AnonymousUser
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
