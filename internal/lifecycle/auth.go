package lifecycle

import (
	"time"

	"salepoint/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	msgInvalidCredentials = "Invalid username or password"
	msgBusinessSuspended  = "Your business account has been suspended. Please contact support."
	msgAccountDisabled    = "Your account is disabled. Please contact your administrator."
	msgDemoExpired        = "Your demo period has expired. Please contact support to upgrade."
)

// AuthenticateUser is the access gate. Unknown usernames and wrong passwords
// are indistinguishable to the caller. A suspended business blocks every one
// of its users before the per-account flag is consulted, so suspension wins
// even for otherwise active accounts. Lapsed demo trials are rejected last.
// A successful login records the attempt and stamps last-login metadata in
// the same transaction.
func AuthenticateUser(db *gorm.DB, username, password, ip, userAgent string) (bool, string, *model.User) {
	var user model.User
	if err := db.Preload("Business").Where("username = ?", username).First(&user).Error; err != nil {
		return false, msgInvalidCredentials, nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return false, msgInvalidCredentials, nil
	}

	if user.Business != nil && user.Business.Status == model.BusinessSuspended {
		return false, msgBusinessSuspended, nil
	}

	if !user.IsActive {
		return false, msgAccountDisabled, nil
	}

	if user.Business != nil && user.Business.IsDemoAccount && !user.Business.IsDemoActive() {
		return false, msgDemoExpired, nil
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		user.LastLoginAt = &now
		user.LastLoginIP = ip
		if err := tx.Model(&model.User{}).Where("id = ?", user.ID).
			Updates(map[string]interface{}{"last_login_at": now, "last_login_ip": ip}).Error; err != nil {
			return err
		}

		return logActivity(tx, &model.SystemActivity{
			ActivityType: model.ActivityLogin,
			Description:  "User " + user.Username + " logged in",
			UserID:       &user.ID,
			BusinessID:   user.BusinessID,
			IPAddress:    ip,
			UserAgent:    userAgent,
		})
	})
	if err != nil {
		return false, err.Error(), nil
	}

	return true, "Login successful", &user
}
