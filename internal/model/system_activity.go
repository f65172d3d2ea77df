package model

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityType is the closed set of audited event kinds.
type ActivityType string

const (
	ActivityBusinessCreated   ActivityType = "BUSINESS_CREATED"
	ActivityBusinessUpdated   ActivityType = "BUSINESS_UPDATED"
	ActivityBusinessSuspended ActivityType = "BUSINESS_SUSPENDED"
	ActivityBusinessActivated ActivityType = "BUSINESS_ACTIVATED"
	ActivityBusinessDeleted   ActivityType = "BUSINESS_DELETED"
	ActivityLicenseCreated    ActivityType = "LICENSE_CREATED"
	ActivityLicenseRenewed    ActivityType = "LICENSE_RENEWED"
	ActivityLicenseExpired    ActivityType = "LICENSE_EXPIRED"
	ActivityUserCreated       ActivityType = "USER_CREATED"
	ActivityUserUpdated       ActivityType = "USER_UPDATED"
	ActivityUserDeleted       ActivityType = "USER_DELETED"
	ActivityLogin             ActivityType = "LOGIN"
	ActivityLogout            ActivityType = "LOGOUT"
	ActivityOther             ActivityType = "OTHER"
)

// SystemActivity is an append-only audit record. Rows are written in the same
// transaction as the mutation they describe and are never updated or deleted.
//
// Expected Data keys per activity type:
//
//	LICENSE_RENEWED    license_id, tier, duration_days, new_end_date
//	BUSINESS_SUSPENDED reason
//	BUSINESS_DELETED   business_name, business_email
//	BUSINESS_CREATED   admin_username, license_tier, license_end_date
//	USER_CREATED       role, business_id
//	USER_DELETED       username
type SystemActivity struct {
	ID           uint         `json:"id" gorm:"primaryKey"`
	ActivityType ActivityType `json:"activity_type" gorm:"type:varchar(50);not null;index"`
	Description  string       `json:"description" gorm:"type:text"`

	// References are nullable so the audit trail survives deletion of the
	// objects it describes.
	BusinessID    *uint `json:"business_id,omitempty" gorm:"index"`
	UserID        *uint `json:"user_id,omitempty"`
	PerformedByID *uint `json:"performed_by_id,omitempty"`

	Data datatypes.JSONMap `json:"data" gorm:"type:jsonb"`

	IPAddress string `json:"ip_address,omitempty" gorm:"type:varchar(45)"`
	UserAgent string `json:"user_agent,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}
