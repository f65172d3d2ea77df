package lifecycle

import (
	"errors"
	"fmt"

	"salepoint/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CreateUserInput carries the fields for a new account. Password may be
// empty, in which case one is generated and returned to the caller once.
type CreateUserInput struct {
	Username    string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	Phone       string
	Role        model.Role
	LicenseTier model.LicenseTier
	BusinessID  *uint
	IsActive    *bool
}

// UpdateUserInput is a partial update: only non-nil fields are applied.
// BusinessSet marks that the business association changes; a nil BusinessID
// with BusinessSet true clears it.
type UpdateUserInput struct {
	Username    *string
	Email       *string
	FirstName   *string
	LastName    *string
	Phone       *string
	Role        *model.Role
	LicenseTier *model.LicenseTier
	IsActive    *bool
	BusinessSet bool
	BusinessID  *uint
}

// CreateUser creates an account. A nonexistent business id is skipped
// silently: the user is created without an association. The generated
// password is returned only when the caller did not supply one.
func CreateUser(db *gorm.DB, input CreateUserInput, performedBy *uint) (bool, string, *model.User, string) {
	if input.Username == "" || input.Email == "" || input.Role == "" {
		return false, "Username, email, and role are required", nil, ""
	}

	password := input.Password
	generated := ""
	if password == "" {
		var err error
		password, err = GeneratePassword(generatedPasswordLength)
		if err != nil {
			return false, err.Error(), nil, ""
		}
		generated = password
	}

	var user *model.User
	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.User{}).Where("username = ?", input.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errors.New("Username already exists")
		}
		if err := tx.Model(&model.User{}).Where("email = ?", input.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errors.New("Email already exists")
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		tier := input.LicenseTier
		if tier == "" {
			tier = model.TierDemo
		}
		active := true
		if input.IsActive != nil {
			active = *input.IsActive
		}

		user = &model.User{
			Username:    input.Username,
			Email:       input.Email,
			Password:    string(hashed),
			FirstName:   input.FirstName,
			LastName:    input.LastName,
			Phone:       input.Phone,
			Role:        input.Role,
			LicenseTier: tier,
			IsActive:    active,
		}

		// A missing business does not fail the create; the account is
		// simply left unassigned.
		if input.BusinessID != nil {
			var business model.Business
			if err := tx.First(&business, *input.BusinessID).Error; err == nil {
				user.BusinessID = &business.ID
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		if err := tx.Create(user).Error; err != nil {
			return err
		}

		if err := logActivity(tx, &model.SystemActivity{
			ActivityType:  model.ActivityUserCreated,
			Description:   fmt.Sprintf("User %s created", user.Username),
			UserID:        &user.ID,
			BusinessID:    user.BusinessID,
			PerformedByID: performedBy,
			Data: datatypes.JSONMap{
				"role":        string(user.Role),
				"business_id": input.BusinessID,
			},
		}); err != nil {
			return err
		}

		return notify(tx, &model.Notification{
			Title:    "New User Created",
			Message:  fmt.Sprintf("User %s has been created", user.Username),
			Type:     model.NotifyInfo,
			Audience: model.AudienceSuperAdmins,
		})
	})
	if err != nil {
		return false, err.Error(), nil, ""
	}
	return true, "User created successfully", user, generated
}

// UpdateUser applies a partial update. Unlike CreateUser, assigning a
// nonexistent business fails the whole update with nothing applied.
func UpdateUser(db *gorm.DB, userID uint, input UpdateUserInput, performedBy *uint) (bool, string) {
	err := db.Transaction(func(tx *gorm.DB) error {
		user, err := fetchUser(tx, userID)
		if err != nil {
			return err
		}

		if input.Username != nil && *input.Username != user.Username {
			var count int64
			if err := tx.Model(&model.User{}).Where("username = ? AND id <> ?", *input.Username, user.ID).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return errors.New("Username already exists")
			}
			user.Username = *input.Username
		}

		if input.Email != nil && *input.Email != user.Email {
			var count int64
			if err := tx.Model(&model.User{}).Where("email = ? AND id <> ?", *input.Email, user.ID).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return errors.New("Email already exists")
			}
			user.Email = *input.Email
		}

		if input.FirstName != nil {
			user.FirstName = *input.FirstName
		}
		if input.LastName != nil {
			user.LastName = *input.LastName
		}
		if input.Phone != nil {
			user.Phone = *input.Phone
		}
		if input.Role != nil {
			user.Role = *input.Role
		}
		if input.LicenseTier != nil {
			user.LicenseTier = *input.LicenseTier
		}
		if input.IsActive != nil {
			user.IsActive = *input.IsActive
		}

		if input.BusinessSet {
			if input.BusinessID != nil {
				var business model.Business
				if err := tx.First(&business, *input.BusinessID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return errBusinessNotFound
					}
					return err
				}
				user.BusinessID = &business.ID
			} else {
				user.BusinessID = nil
			}
		}

		if err := tx.Save(user).Error; err != nil {
			return err
		}

		return logActivity(tx, &model.SystemActivity{
			ActivityType:  model.ActivityUserUpdated,
			Description:   fmt.Sprintf("User %s updated", user.Username),
			UserID:        &user.ID,
			PerformedByID: performedBy,
		})
	})
	if err != nil {
		return false, err.Error()
	}
	return true, "User updated successfully"
}

// DeactivateUser disables an account. Users cannot deactivate themselves.
func DeactivateUser(db *gorm.DB, userID, callerID uint) (bool, string) {
	if userID == callerID {
		return false, "Cannot deactivate your own account"
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		user, err := fetchUser(tx, userID)
		if err != nil {
			return err
		}

		user.IsActive = false
		if err := tx.Save(user).Error; err != nil {
			return err
		}

		return logActivity(tx, &model.SystemActivity{
			ActivityType:  model.ActivityUserUpdated,
			Description:   fmt.Sprintf("User %s deactivated", user.Username),
			UserID:        &user.ID,
			PerformedByID: &callerID,
		})
	})
	if err != nil {
		return false, err.Error()
	}
	return true, "User deactivated successfully"
}

// ActivateUser re-enables an account.
func ActivateUser(db *gorm.DB, userID, callerID uint) (bool, string) {
	err := db.Transaction(func(tx *gorm.DB) error {
		user, err := fetchUser(tx, userID)
		if err != nil {
			return err
		}

		user.IsActive = true
		if err := tx.Save(user).Error; err != nil {
			return err
		}

		return logActivity(tx, &model.SystemActivity{
			ActivityType:  model.ActivityUserUpdated,
			Description:   fmt.Sprintf("User %s activated", user.Username),
			UserID:        &user.ID,
			PerformedByID: &callerID,
		})
	})
	if err != nil {
		return false, err.Error()
	}
	return true, "User activated successfully"
}

// DeleteUser hard-deletes an account. Self-deletion is forbidden, and the
// last remaining super admin can never be removed. The username is preserved
// in the audit payload since the row is gone.
func DeleteUser(db *gorm.DB, userID, callerID uint) (bool, string) {
	if userID == callerID {
		return false, "Cannot delete your own account"
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		user, err := fetchUser(tx, userID)
		if err != nil {
			return err
		}

		if user.Role == model.RoleSuperAdmin {
			var count int64
			if err := tx.Model(&model.User{}).Where("role = ?", model.RoleSuperAdmin).Count(&count).Error; err != nil {
				return err
			}
			if count <= 1 {
				return errors.New("Cannot delete the only super admin")
			}
		}

		username := user.Username
		if err := tx.Delete(user).Error; err != nil {
			return err
		}

		return logActivity(tx, &model.SystemActivity{
			ActivityType:  model.ActivityUserDeleted,
			Description:   fmt.Sprintf("User %s deleted", username),
			PerformedByID: &callerID,
			Data:          datatypes.JSONMap{"username": username},
		})
	})
	if err != nil {
		return false, err.Error()
	}
	return true, "User deleted successfully"
}

// ResetPassword stores a fresh random password for the user and returns it.
// The plaintext goes to the caller once and is never logged or persisted.
func ResetPassword(db *gorm.DB, userID uint, callerID uint) (bool, string, string) {
	newPassword, err := GeneratePassword(generatedPasswordLength)
	if err != nil {
		return false, err.Error(), ""
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		user, err := fetchUser(tx, userID)
		if err != nil {
			return err
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		user.Password = string(hashed)
		if err := tx.Save(user).Error; err != nil {
			return err
		}

		return logActivity(tx, &model.SystemActivity{
			ActivityType:  model.ActivityUserUpdated,
			Description:   fmt.Sprintf("Password reset for user %s", user.Username),
			UserID:        &user.ID,
			PerformedByID: &callerID,
		})
	})
	if err != nil {
		return false, err.Error(), ""
	}
	return true, "Password reset successfully", newPassword
}
