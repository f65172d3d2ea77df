package model

import (
	"time"

	"gorm.io/datatypes"
)

// Feature describes a gated capability that may or may not be available
// to a tenant depending on its license tier.
type Feature struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"type:varchar(100);not null"`
	Code        string `json:"code" gorm:"type:varchar(100);uniqueIndex;not null"`
	Description string `json:"description" gorm:"type:text"`

	// Availability by tier
	AvailableInDemo       bool `json:"available_in_demo" gorm:"default:false"`
	AvailableInBasic      bool `json:"available_in_basic" gorm:"default:false"`
	AvailableInPro        bool `json:"available_in_pro" gorm:"default:false"`
	AvailableInEnterprise bool `json:"available_in_enterprise" gorm:"default:true"`

	IsPremium    bool   `json:"is_premium" gorm:"default:false"`
	Category     string `json:"category" gorm:"type:varchar(50);default:'POS'"`
	DisplayOrder int    `json:"display_order" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AvailableInTier reports whether the feature is included in the given tier.
func (f *Feature) AvailableInTier(tier LicenseTier) bool {
	switch tier {
	case TierDemo:
		return f.AvailableInDemo
	case TierBasic:
		return f.AvailableInBasic
	case TierPro:
		return f.AvailableInPro
	case TierEnterprise:
		return f.AvailableInEnterprise
	}
	return false
}

// BusinessFeature is the per-tenant enablement record for a feature,
// carrying feature-specific settings.
type BusinessFeature struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	BusinessID uint `json:"business_id" gorm:"uniqueIndex:idx_business_feature;not null"`
	FeatureID  uint `json:"feature_id" gorm:"uniqueIndex:idx_business_feature;not null"`

	IsEnabled bool              `json:"is_enabled" gorm:"default:true"`
	Settings  datatypes.JSONMap `json:"settings" gorm:"type:jsonb"`

	EnabledAt   *time.Time `json:"enabled_at,omitempty"`
	EnabledByID *uint      `json:"enabled_by_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Feature Feature `json:"feature,omitempty" gorm:"foreignKey:FeatureID;constraint:OnDelete:CASCADE"`
}
