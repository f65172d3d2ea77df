package model

import (
	"time"
)

// BusinessStatus is the activation state of a tenant.
type BusinessStatus string

const (
	BusinessPending   BusinessStatus = "PENDING"
	BusinessActive    BusinessStatus = "ACTIVE"
	BusinessSuspended BusinessStatus = "SUSPENDED"
	BusinessInactive  BusinessStatus = "INACTIVE"
)

// BusinessType classifies what kind of operation the tenant runs.
type BusinessType string

const (
	BusinessRetail     BusinessType = "RETAIL"
	BusinessRestaurant BusinessType = "RESTAURANT"
	BusinessService    BusinessType = "SERVICE"
	BusinessWholesale  BusinessType = "WHOLESALE"
	BusinessOther      BusinessType = "OTHER"
)

// Business represents a tenant: an isolated customer organization that owns
// its own users, products, categories and sales.
type Business struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	Name        string       `json:"name" gorm:"type:varchar(255);not null"`
	Description string       `json:"description" gorm:"type:text"`
	Type        BusinessType `json:"business_type" gorm:"type:varchar(50);default:'RETAIL'"`

	// Contact information
	Email   string `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Phone   string `json:"phone" gorm:"type:varchar(20)"`
	Address string `json:"address" gorm:"type:text"`
	City    string `json:"city" gorm:"type:varchar(100)"`
	Country string `json:"country" gorm:"type:varchar(100)"`

	// Settings
	Currency string `json:"currency" gorm:"type:varchar(10);default:'USD'"`
	Timezone string `json:"timezone" gorm:"type:varchar(50);default:'UTC'"`

	Status BusinessStatus `json:"status" gorm:"type:varchar(20);default:'PENDING';index"`

	// Demo/trial settings
	IsDemoAccount  bool       `json:"is_demo_account" gorm:"default:false"`
	DemoExpiryDate *time.Time `json:"demo_expiry_date,omitempty" gorm:"type:date"`

	CreatedByID *uint     `json:"created_by_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	License *License `json:"license,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// IsActive reports whether the business may operate.
func (b *Business) IsActive() bool {
	return b.Status == BusinessActive
}

// IsDemoActive reports whether a demo account is still within its trial window.
func (b *Business) IsDemoActive() bool {
	if !b.IsDemoAccount {
		return false
	}
	if b.DemoExpiryDate != nil && b.DemoExpiryDate.Before(Today()) {
		return false
	}
	return true
}

// Today returns the current date truncated to midnight UTC. License and demo
// expiry arithmetic is calendar-date based, never clock based.
func Today() time.Time {
	y, m, d := time.Now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
