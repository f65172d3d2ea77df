package model

import (
	"time"
)

// Category groups products within a single business. Names are unique per
// business, not globally.
type Category struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	BusinessID uint `json:"business_id" gorm:"uniqueIndex:idx_business_category;not null"`

	Name        string `json:"name" gorm:"type:varchar(100);uniqueIndex:idx_business_category;not null"`
	Description string `json:"description" gorm:"type:text"`

	// Optional parent for subcategories; orphaned when the parent goes away.
	ParentID *uint `json:"parent_id,omitempty"`

	DisplayOrder int  `json:"display_order" gorm:"default:0"`
	IsActive     bool `json:"is_active" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
