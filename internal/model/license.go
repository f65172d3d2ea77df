package model

import (
	"crypto/rand"
	"math/big"
	"time"

	"gorm.io/gorm"
)

// LicenseTier gates feature and usage limits for a tenant.
type LicenseTier string

const (
	TierDemo       LicenseTier = "DEMO"
	TierBasic      LicenseTier = "BASIC"
	TierPro        LicenseTier = "PRO"
	TierEnterprise LicenseTier = "ENTERPRISE"
)

const licenseKeyLength = 25

// License represents the subscription attached to a business. Exactly one
// license exists per business; it is created with the business and deleted
// with it, never on its own.
type License struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	LicenseKey string      `json:"license_key" gorm:"type:varchar(100);uniqueIndex"`
	Tier       LicenseTier `json:"tier" gorm:"type:varchar(20);default:'DEMO'"`

	BusinessID uint `json:"business_id" gorm:"uniqueIndex;not null"`

	// Subscription period (calendar dates)
	StartDate time.Time `json:"start_date" gorm:"type:date"`
	EndDate   time.Time `json:"end_date" gorm:"type:date"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`

	// Pricing
	MonthlyPrice float64 `json:"monthly_price" gorm:"type:decimal(10,2)"`
	Currency     string  `json:"currency" gorm:"type:varchar(10);default:'USD'"`

	// Usage limits
	MaxUsers     int `json:"max_users" gorm:"default:5"`
	MaxProducts  int `json:"max_products" gorm:"default:1000"`
	MaxBranches  int `json:"max_branches" gorm:"default:1"`
	MaxStorageMB int `json:"max_storage_mb" gorm:"default:100"`

	// Payment info
	PaymentMethod    string     `json:"payment_method,omitempty" gorm:"type:varchar(50)"`
	PaymentReference string     `json:"payment_reference,omitempty" gorm:"type:varchar(100)"`
	LastPaymentDate  *time.Time `json:"last_payment_date,omitempty" gorm:"type:date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsExpired reports whether the license end date has passed.
func (l *License) IsExpired() bool {
	return l.EndDate.Before(Today())
}

// DaysRemaining returns the number of whole days until expiry, never negative.
func (l *License) DaysRemaining() int {
	if l.IsExpired() {
		return 0
	}
	return int(l.EndDate.Sub(Today()).Hours() / 24)
}

// BeforeCreate assigns a license key when none was supplied.
func (l *License) BeforeCreate(tx *gorm.DB) error {
	if l.LicenseKey == "" {
		key, err := GenerateLicenseKey()
		if err != nil {
			return err
		}
		l.LicenseKey = key
	}
	return nil
}

// GenerateLicenseKey returns a 25-character random key drawn from uppercase
// letters and digits.
func GenerateLicenseKey() (string, error) {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	key := make([]byte, licenseKeyLength)
	for i := range key {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			return "", err
		}
		key[i] = alphabet[n.Int64()]
	}
	return string(key), nil
}
