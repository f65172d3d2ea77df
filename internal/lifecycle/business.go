package lifecycle

import (
	"errors"
	"fmt"

	"salepoint/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RegisterBusinessInput carries everything needed to onboard a tenant: the
// business itself, its license and its first admin account.
type RegisterBusinessInput struct {
	BusinessName string
	BusinessType model.BusinessType
	Email        string
	Phone        string
	Address      string
	City         string
	Country      string

	AdminUsername  string
	AdminEmail     string
	AdminFirstName string
	AdminLastName  string
	AdminPhone     string

	LicenseTier  model.LicenseTier
	DurationDays int
}

// RegisterBusiness creates a business, its license and its admin user as one
// atomic unit. The generated admin password is returned exactly once and is
// never persisted in plaintext.
func RegisterBusiness(db *gorm.DB, input RegisterBusinessInput, performedBy *uint) (bool, string, *model.Business, string) {
	if input.BusinessName == "" || input.Email == "" || input.AdminUsername == "" || input.AdminEmail == "" {
		return false, "Business name, email and admin account details are required", nil, ""
	}
	if input.DurationDays <= 0 {
		return false, "License duration must be a positive number of days", nil, ""
	}

	password, err := GeneratePassword(generatedPasswordLength)
	if err != nil {
		return false, err.Error(), nil, ""
	}

	var business *model.Business
	err = db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.User{}).Where("username = ?", input.AdminUsername).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errors.New("Username already exists")
		}
		if err := tx.Model(&model.User{}).Where("email = ?", input.AdminEmail).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errors.New("Email already exists")
		}

		isDemo := input.LicenseTier == model.TierDemo
		startDate := model.Today()
		endDate := startDate.AddDate(0, 0, input.DurationDays)

		business = &model.Business{
			Name:          input.BusinessName,
			Type:          input.BusinessType,
			Email:         input.Email,
			Phone:         input.Phone,
			Address:       input.Address,
			City:          input.City,
			Country:       input.Country,
			Status:        model.BusinessActive,
			IsDemoAccount: isDemo,
			CreatedByID:   performedBy,
		}
		if isDemo {
			// Demo trials lapse with their license
			business.DemoExpiryDate = &endDate
		}
		if err := tx.Create(business).Error; err != nil {
			return err
		}

		monthlyPrice := 2999.00
		maxUsers, maxProducts := 10, 1000
		if isDemo {
			monthlyPrice = 0
			maxUsers, maxProducts = 3, 100
		}

		license := &model.License{
			BusinessID:   business.ID,
			Tier:         input.LicenseTier,
			StartDate:    startDate,
			EndDate:      endDate,
			IsActive:     true,
			MonthlyPrice: monthlyPrice,
			MaxUsers:     maxUsers,
			MaxProducts:  maxProducts,
			MaxBranches:  1,
		}
		if err := tx.Create(license).Error; err != nil {
			return err
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		admin := &model.User{
			Username:    input.AdminUsername,
			Email:       input.AdminEmail,
			Password:    string(hashed),
			FirstName:   input.AdminFirstName,
			LastName:    input.AdminLastName,
			Phone:       input.AdminPhone,
			Role:        model.RoleBusinessAdmin,
			BusinessID:  &business.ID,
			LicenseTier: input.LicenseTier,
			IsActive:    true,
		}
		if err := tx.Create(admin).Error; err != nil {
			return err
		}

		if err := logActivity(tx, &model.SystemActivity{
			ActivityType:  model.ActivityBusinessCreated,
			Description:   fmt.Sprintf("Business %s created", business.Name),
			BusinessID:    &business.ID,
			PerformedByID: performedBy,
			Data: datatypes.JSONMap{
				"admin_username":   admin.Username,
				"license_tier":     string(license.Tier),
				"license_end_date": endDate.Format("2006-01-02"),
			},
		}); err != nil {
			return err
		}

		return notify(tx, &model.Notification{
			Title:      "New Business Registered",
			Message:    fmt.Sprintf("Business %s has been registered successfully", business.Name),
			Type:       model.NotifySuccess,
			Audience:   model.AudienceSuperAdmins,
			BusinessID: &business.ID,
		})
	})
	if err != nil {
		return false, err.Error(), nil, ""
	}
	return true, fmt.Sprintf("Business %q registered successfully", business.Name), business, password
}

// RenewLicense extends the license of a business. An active license extends
// from its current end date; a lapsed one restarts from today. The license
// is reactivated unconditionally.
func RenewLicense(db *gorm.DB, businessID uint, durationDays int, tier model.LicenseTier, performedBy *uint) (bool, string) {
	if durationDays <= 0 {
		return false, "Duration must be a positive number of days"
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		business, err := fetchBusiness(tx, businessID)
		if err != nil {
			return err
		}

		var license model.License
		if err := tx.Where("business_id = ?", business.ID).First(&license).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errLicenseNotFound
			}
			return err
		}

		if tier != "" {
			license.Tier = tier
		}

		today := model.Today()
		if !license.EndDate.Before(today) {
			// Extend from current end date
			license.EndDate = license.EndDate.AddDate(0, 0, durationDays)
		} else {
			// Lapsed license restarts from today
			license.EndDate = today.AddDate(0, 0, durationDays)
		}
		license.IsActive = true

		if err := tx.Save(&license).Error; err != nil {
			return err
		}

		if err := logActivity(tx, &model.SystemActivity{
			ActivityType:  model.ActivityLicenseRenewed,
			Description:   fmt.Sprintf("License renewed for %s", business.Name),
			BusinessID:    &business.ID,
			PerformedByID: performedBy,
			Data: datatypes.JSONMap{
				"license_id":    license.ID,
				"tier":          string(license.Tier),
				"duration_days": durationDays,
				"new_end_date":  license.EndDate.Format("2006-01-02"),
			},
		}); err != nil {
			return err
		}

		return notify(tx, &model.Notification{
			Title:      "License Renewed",
			Message:    fmt.Sprintf("Your license has been renewed until %s", license.EndDate.Format("January 2, 2006")),
			Type:       model.NotifySuccess,
			Audience:   model.AudienceSpecificBusiness,
			BusinessID: &business.ID,
			Data:       datatypes.JSONMap{"license_id": license.ID},
		})
	})
	if err != nil {
		return false, err.Error()
	}
	return true, "License renewed successfully"
}

// SuspendBusiness marks a business SUSPENDED. The access gate rejects
// logins from its users until it is activated again.
func SuspendBusiness(db *gorm.DB, businessID uint, reason string, performedBy *uint) (bool, string) {
	if reason == "" {
		reason = "No reason provided"
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		business, err := fetchBusiness(tx, businessID)
		if err != nil {
			return err
		}

		business.Status = model.BusinessSuspended
		if err := tx.Save(business).Error; err != nil {
			return err
		}

		if err := logActivity(tx, &model.SystemActivity{
			ActivityType:  model.ActivityBusinessSuspended,
			Description:   fmt.Sprintf("Business %s suspended", business.Name),
			BusinessID:    &business.ID,
			PerformedByID: performedBy,
			Data:          datatypes.JSONMap{"reason": reason},
		}); err != nil {
			return err
		}

		return notify(tx, &model.Notification{
			Title:      "Account Suspended",
			Message:    fmt.Sprintf("Your account has been suspended. Reason: %s", reason),
			Type:       model.NotifyWarning,
			Audience:   model.AudienceSpecificBusiness,
			BusinessID: &business.ID,
			Data:       datatypes.JSONMap{"reason": reason},
		})
	})
	if err != nil {
		return false, err.Error()
	}
	return true, "Business suspended successfully"
}

// ActivateBusiness marks a business ACTIVE again.
func ActivateBusiness(db *gorm.DB, businessID uint, performedBy *uint) (bool, string) {
	err := db.Transaction(func(tx *gorm.DB) error {
		business, err := fetchBusiness(tx, businessID)
		if err != nil {
			return err
		}

		business.Status = model.BusinessActive
		if err := tx.Save(business).Error; err != nil {
			return err
		}

		if err := logActivity(tx, &model.SystemActivity{
			ActivityType:  model.ActivityBusinessActivated,
			Description:   fmt.Sprintf("Business %s activated", business.Name),
			BusinessID:    &business.ID,
			PerformedByID: performedBy,
		}); err != nil {
			return err
		}

		return notify(tx, &model.Notification{
			Title:      "Account Activated",
			Message:    "Your account has been activated and is now active.",
			Type:       model.NotifySuccess,
			Audience:   model.AudienceSpecificBusiness,
			BusinessID: &business.ID,
		})
	})
	if err != nil {
		return false, err.Error()
	}
	return true, "Business activated successfully"
}

// DeleteBusiness hard-deletes a business. The audit record is written first
// with no business reference so it survives the deletion. The license and
// business-scoped notifications, categories and feature grants go with the
// business; users, products and sales are orphaned, not deleted.
func DeleteBusiness(db *gorm.DB, businessID uint, performedBy *uint) (bool, string) {
	err := db.Transaction(func(tx *gorm.DB) error {
		business, err := fetchBusiness(tx, businessID)
		if err != nil {
			return err
		}

		// Written before the delete; must not reference the business row.
		if err := logActivity(tx, &model.SystemActivity{
			ActivityType:  model.ActivityBusinessDeleted,
			Description:   fmt.Sprintf("Business %s deleted", business.Name),
			PerformedByID: performedBy,
			Data: datatypes.JSONMap{
				"business_name":  business.Name,
				"business_email": business.Email,
			},
		}); err != nil {
			return err
		}

		// CASCADE: license, notifications, categories, feature grants.
		if err := tx.Where("business_id = ?", business.ID).Delete(&model.License{}).Error; err != nil {
			return err
		}
		if err := tx.Where("business_id = ?", business.ID).Delete(&model.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("business_id = ?", business.ID).Delete(&model.Category{}).Error; err != nil {
			return err
		}
		if err := tx.Where("business_id = ?", business.ID).Delete(&model.BusinessFeature{}).Error; err != nil {
			return err
		}

		// SET NULL: users, products, sales and audit references are orphaned.
		if err := tx.Model(&model.User{}).Where("business_id = ?", business.ID).Update("business_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Product{}).Where("business_id = ?", business.ID).Update("business_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Sale{}).Where("business_id = ?", business.ID).Update("business_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.SystemActivity{}).Where("business_id = ?", business.ID).Update("business_id", nil).Error; err != nil {
			return err
		}

		return tx.Delete(business).Error
	})
	if err != nil {
		return false, err.Error()
	}
	return true, "Business deleted successfully"
}

// RequestLicenseRenewal records a renewal request from a business admin as a
// notification for the super admins to review.
func RequestLicenseRenewal(db *gorm.DB, businessID uint, requestedTier model.LicenseTier, requestedDuration int) (bool, string) {
	var business model.Business
	if err := db.First(&business, businessID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, errBusinessNotFound.Error()
		}
		return false, err.Error()
	}

	err := notify(db, &model.Notification{
		Title: "License Renewal Request",
		Message: fmt.Sprintf("%s has requested license renewal to %s tier for %d days",
			business.Name, requestedTier, requestedDuration),
		Type:       model.NotifyLicense,
		Audience:   model.AudienceSuperAdmins,
		BusinessID: &business.ID,
		Data: datatypes.JSONMap{
			"requested_tier":     string(requestedTier),
			"requested_duration": requestedDuration,
			"business_id":        business.ID,
		},
		ActionURL:  fmt.Sprintf("/api/businesses/%d", business.ID),
		ActionText: "Review Request",
	})
	if err != nil {
		return false, err.Error()
	}
	return true, "Renewal request submitted"
}
