package model

import (
	"time"

	"gorm.io/gorm"
)

// Role is the enumerated authorization role of a user. Role checks go
// through these constants and the helpers below, never raw strings.
type Role string

const (
	RoleSuperAdmin    Role = "SUPER_ADMIN"
	RoleBusinessAdmin Role = "BUSINESS_ADMIN"
	RoleCashier       Role = "CASHIER"
	RoleStaff         Role = "STAFF"
)

// User represents an account. SUPER_ADMIN users have no business
// association; everyone else optionally belongs to exactly one business.
type User struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Username string `json:"username" gorm:"type:varchar(150);uniqueIndex;not null"`
	Email    string `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Password string `json:"-" gorm:"type:varchar(255);not null"`

	FirstName string `json:"first_name" gorm:"type:varchar(50)"`
	LastName  string `json:"last_name" gorm:"type:varchar(50)"`
	Phone     string `json:"phone" gorm:"type:varchar(20)"`

	Role Role `json:"role" gorm:"type:varchar(20);default:'CASHIER';index"`

	// Business association; SET NULL when the business is deleted so the
	// account is orphaned, not removed.
	BusinessID *uint     `json:"business_id,omitempty" gorm:"index"`
	Business   *Business `json:"business,omitempty" gorm:"constraint:OnDelete:SET NULL"`

	// License access level mirrored from the business license, used for
	// feature gating in the UI layer.
	LicenseTier LicenseTier `json:"license_tier" gorm:"type:varchar(20);default:'DEMO'"`

	IsActive    bool       `json:"is_active" gorm:"default:true"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	LastLoginIP string     `json:"last_login_ip,omitempty" gorm:"type:varchar(45)"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeSave forces super admins onto the ENTERPRISE tier on every write.
func (u *User) BeforeSave(tx *gorm.DB) error {
	if u.Role == RoleSuperAdmin {
		u.LicenseTier = TierEnterprise
	}
	return nil
}

func (u *User) IsSuperAdmin() bool    { return u.Role == RoleSuperAdmin }
func (u *User) IsBusinessAdmin() bool { return u.Role == RoleBusinessAdmin }
func (u *User) IsCashier() bool       { return u.Role == RoleCashier }
func (u *User) IsStaff() bool         { return u.Role == RoleStaff }

// FullName returns the display name, falling back to the username.
func (u *User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
