package model

import (
	"time"

	"gorm.io/datatypes"
)

// NotificationType classifies a notification for display purposes.
type NotificationType string

const (
	NotifyInfo     NotificationType = "INFO"
	NotifyWarning  NotificationType = "WARNING"
	NotifyError    NotificationType = "ERROR"
	NotifySuccess  NotificationType = "SUCCESS"
	NotifyLicense  NotificationType = "LICENSE"
	NotifyPayment  NotificationType = "PAYMENT"
	NotifySecurity NotificationType = "SECURITY"
	NotifyBusiness NotificationType = "BUSINESS"
	NotifyUser     NotificationType = "USER"
)

// Audience selects which principals see a notification.
type Audience string

const (
	AudienceAll              Audience = "ALL"
	AudienceSuperAdmins      Audience = "SUPER_ADMINS"
	AudienceBusinessAdmins   Audience = "BUSINESS_ADMINS"
	AudienceCashiers         Audience = "CASHIERS"
	AudienceSpecificBusiness Audience = "SPECIFIC_BUSINESS"
)

// Notification is an informational record emitted alongside lifecycle
// actions. After creation only IsRead and IsActive change; removal is a
// soft delete via IsActive.
type Notification struct {
	ID      uint             `json:"id" gorm:"primaryKey"`
	Title   string           `json:"title" gorm:"type:varchar(255);not null"`
	Message string           `json:"message" gorm:"type:text"`
	Type    NotificationType `json:"notification_type" gorm:"column:notification_type;type:varchar(20);default:'INFO'"`

	Audience Audience `json:"audience" gorm:"type:varchar(50);default:'ALL';index"`

	// Set only for AudienceSpecificBusiness; deleted with the business.
	BusinessID *uint     `json:"business_id,omitempty" gorm:"index"`
	Business   *Business `json:"-" gorm:"constraint:OnDelete:CASCADE"`

	Data datatypes.JSONMap `json:"data" gorm:"type:jsonb"`

	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	IsActive  bool       `json:"is_active" gorm:"default:true;index"`
	IsRead    bool       `json:"is_read" gorm:"default:false"`

	ActionURL  string `json:"action_url,omitempty" gorm:"type:varchar(500)"`
	ActionText string `json:"action_text,omitempty" gorm:"type:varchar(100)"`

	CreatedByID *uint     `json:"created_by_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Expired reports whether the notification has passed its expiry timestamp.
func (n *Notification) Expired() bool {
	return n.ExpiresAt != nil && n.ExpiresAt.Before(time.Now())
}
