package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/oakmart/storefront-backend/pkg/enums"
)

// User is the identity and credential record for a storefront account.
type User struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email         string         `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash  string         `gorm:"column:password_hash;not null"`
	FirstName     string         `gorm:"column:first_name;not null"`
	LastName      string         `gorm:"column:last_name;not null"`
	Phone         *string        `gorm:"column:phone"`
	Role          enums.UserRole `gorm:"column:role;not null;default:'customer'"`
	IsActive      bool           `gorm:"column:is_active;not null;default:true"`
	LoginAttempts int            `gorm:"column:login_attempts;not null;default:0"`
	LockUntil     *time.Time     `gorm:"column:lock_until"`
	LastLoginAt   *time.Time     `gorm:"column:last_login_at"`
	Addresses     []UserAddress  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// IsLocked reports whether the lockout window is still open.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockUntil != nil && now.Before(*u.LockUntil)
}

// RegisterFailedLogin bumps the failure counter and opens the lockout window
// once maxAttempts is reached. Persistence is the caller's responsibility.
func (u *User) RegisterFailedLogin(now time.Time, maxAttempts int, lockout time.Duration) {
	if u.LockUntil != nil && !now.Before(*u.LockUntil) {
		// expired lock, start a fresh count
		u.LoginAttempts = 0
		u.LockUntil = nil
	}
	u.LoginAttempts++
	if maxAttempts > 0 && u.LoginAttempts >= maxAttempts {
		until := now.Add(lockout)
		u.LockUntil = &until
	}
}

// ResetLoginAttempts clears the failure counter after a successful login.
func (u *User) ResetLoginAttempts(now time.Time) {
	u.LoginAttempts = 0
	u.LockUntil = nil
	loginAt := now
	u.LastLoginAt = &loginAt
}

// FullName joins the name parts for display.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
