// Package lifecycle implements the audited state transitions for businesses,
// licenses and users. Every action runs as a single transaction: the entity
// mutation, its SystemActivity record and any Notification commit together or
// not at all. Actions report results as a (bool, string) pair; callers must
// not depend on error types, only on the flag and message.
//
// Concurrency: each action re-reads the rows it mutates inside its own
// transaction and recomputes derived values from that fresh read, so two
// concurrent renewals serialize at the store instead of both extending a
// stale end date.
package lifecycle

import (
	"crypto/rand"
	"errors"
	"math/big"

	"salepoint/internal/model"

	"gorm.io/gorm"
)

const generatedPasswordLength = 12

var (
	errBusinessNotFound = errors.New("Business not found")
	errLicenseNotFound  = errors.New("License not found")
	errUserNotFound     = errors.New("User not found")
)

// GeneratePassword returns a random password drawn from letters and digits.
func GeneratePassword(length int) (string, error) {
	const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	pw := make([]byte, length)
	for i := range pw {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			return "", err
		}
		pw[i] = alphabet[n.Int64()]
	}
	return string(pw), nil
}

// logActivity appends one audit record inside the caller's transaction.
func logActivity(tx *gorm.DB, activity *model.SystemActivity) error {
	return tx.Create(activity).Error
}

// notify appends one notification inside the caller's transaction.
// Notification failures abort the whole transaction; the audit record and
// the mutation never commit without the notification.
func notify(tx *gorm.DB, notification *model.Notification) error {
	return tx.Create(notification).Error
}

func fetchBusiness(tx *gorm.DB, businessID uint) (*model.Business, error) {
	var business model.Business
	if err := tx.First(&business, businessID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errBusinessNotFound
		}
		return nil, err
	}
	return &business, nil
}

func fetchUser(tx *gorm.DB, userID uint) (*model.User, error) {
	var user model.User
	if err := tx.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
