package handler

import (
	"net/http"
	"strconv"
	"time"

	"salepoint/internal/lifecycle"
	"salepoint/internal/middleware"
	"salepoint/internal/model"
	"salepoint/pkg/database"
	"salepoint/pkg/logger"
	"salepoint/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func performedBy(c echo.Context) *uint {
	if id, ok := middleware.GetUserIDFromContext(c); ok {
		return &id
	}
	return nil
}

func pathID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	return uint(id), err
}

// RegisterBusiness onboards a new tenant: business, license and admin
// account in one shot. Super admin only.
func RegisterBusiness(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		BusinessName string `json:"business_name"`
		BusinessType string `json:"business_type"`
		Email        string `json:"email"`
		Phone        string `json:"phone"`
		Address      string `json:"address"`
		City         string `json:"city"`
		Country      string `json:"country"`

		AdminUsername  string `json:"admin_username"`
		AdminEmail     string `json:"admin_email"`
		AdminFirstName string `json:"admin_first_name"`
		AdminLastName  string `json:"admin_last_name"`
		AdminPhone     string `json:"admin_phone"`

		LicenseTier  string `json:"license_tier"`
		DurationDays int    `json:"duration_days"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse business registration", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	input := lifecycle.RegisterBusinessInput{
		BusinessName:   req.BusinessName,
		BusinessType:   model.BusinessType(req.BusinessType),
		Email:          req.Email,
		Phone:          req.Phone,
		Address:        req.Address,
		City:           req.City,
		Country:        req.Country,
		AdminUsername:  req.AdminUsername,
		AdminEmail:     req.AdminEmail,
		AdminFirstName: req.AdminFirstName,
		AdminLastName:  req.AdminLastName,
		AdminPhone:     req.AdminPhone,
		LicenseTier:    model.LicenseTier(req.LicenseTier),
		DurationDays:   req.DurationDays,
	}

	ok, message, business, adminPassword := lifecycle.RegisterBusiness(database.GetDB(), input, performedBy(c))
	prometheus.RecordLifecycleOperation("register_business", ok)
	if !ok {
		log.Warn("Business registration failed", zap.String("reason", message))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": message})
	}

	log.Info("Business registered",
		zap.Uint("business_id", business.ID),
		zap.String("name", business.Name))
	prometheus.BusinessOperationCounter.WithLabelValues("register").Inc()

	return c.JSON(http.StatusCreated, echo.Map{
		"message":        message,
		"business":       business,
		"admin_password": adminPassword,
	})
}

// ListBusinesses returns all tenants with their licenses. Super admin only.
func ListBusinesses(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())

	query := database.GetDB().Preload("License")
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var businesses []model.Business
	if err := query.Order("created_at DESC").Find(&businesses).Error; err != nil {
		logger.FromContext(c).Error("Failed to list businesses", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	var active int64
	if err := database.GetDB().Model(&model.Business{}).
		Where("status = ?", model.BusinessActive).Count(&active).Error; err == nil {
		prometheus.ActiveBusinessesGauge.Set(float64(active))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"businesses": businesses,
		"count":      len(businesses),
	})
}

// GetBusiness returns one tenant. Super admins see any; business admins only
// their own.
func GetBusiness(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid business id"})
	}

	role, _ := middleware.GetRoleFromContext(c)
	if role != model.RoleSuperAdmin {
		businessID, ok := middleware.GetBusinessIDFromContext(c)
		if !ok || businessID != id {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "insufficient permissions"})
		}
	}

	var business model.Business
	if err := database.GetDB().Preload("License").First(&business, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Business not found"})
	}

	return c.JSON(http.StatusOK, business)
}

// RenewLicense extends a tenant's subscription. Super admin only.
func RenewLicense(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid business id"})
	}

	var req struct {
		DurationDays int    `json:"duration_days"`
		Tier         string `json:"tier"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	ok, message := lifecycle.RenewLicense(database.GetDB(), id, req.DurationDays, model.LicenseTier(req.Tier), performedBy(c))
	prometheus.RecordLifecycleOperation("renew_license", ok)
	if !ok {
		log.Warn("License renewal failed", zap.Uint("business_id", id), zap.String("reason", message))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": message})
	}

	log.Info("License renewed", zap.Uint("business_id", id), zap.Int("duration_days", req.DurationDays))
	return c.JSON(http.StatusOK, echo.Map{"message": message})
}

// SuspendBusiness blocks a tenant and all of its users. Super admin only.
func SuspendBusiness(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid business id"})
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	ok, message := lifecycle.SuspendBusiness(database.GetDB(), id, req.Reason, performedBy(c))
	prometheus.RecordLifecycleOperation("suspend_business", ok)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": message})
	}

	log.Info("Business suspended", zap.Uint("business_id", id), zap.String("reason", req.Reason))
	return c.JSON(http.StatusOK, echo.Map{"message": message})
}

// ActivateBusiness lifts a suspension. Super admin only.
func ActivateBusiness(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid business id"})
	}

	ok, message := lifecycle.ActivateBusiness(database.GetDB(), id, performedBy(c))
	prometheus.RecordLifecycleOperation("activate_business", ok)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": message})
	}

	logger.FromContext(c).Info("Business activated", zap.Uint("business_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": message})
}

// DeleteBusiness removes a tenant and its owned records. Super admin only.
func DeleteBusiness(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid business id"})
	}

	ok, message := lifecycle.DeleteBusiness(database.GetDB(), id, performedBy(c))
	prometheus.RecordLifecycleOperation("delete_business", ok)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": message})
	}

	log.Info("Business deleted", zap.Uint("business_id", id))
	prometheus.BusinessOperationCounter.WithLabelValues("delete").Inc()
	return c.JSON(http.StatusOK, echo.Map{"message": message})
}

// RequestLicenseRenewal lets a business admin ask for a renewal. The request
// is delivered to super admins as a notification.
func RequestLicenseRenewal(c echo.Context) error {
	businessID, ok := middleware.GetBusinessIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no business associated with this account"})
	}

	var req struct {
		Tier         string `json:"tier"`
		DurationDays int    `json:"duration_days"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	ok, message := lifecycle.RequestLicenseRenewal(database.GetDB(), businessID, model.LicenseTier(req.Tier), req.DurationDays)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": message})
	}

	logger.FromContext(c).Info("License renewal requested", zap.Uint("business_id", businessID))
	return c.JSON(http.StatusOK, echo.Map{"message": message})
}

// ExpiringLicenses lists licenses lapsing within the given number of days
// (default 30). Super admin only.
func ExpiringLicenses(c echo.Context) error {
	days := 30
	if d, err := strconv.Atoi(c.QueryParam("days")); err == nil && d > 0 {
		days = d
	}

	cutoff := model.Today().AddDate(0, 0, days)
	var licenses []model.License
	if err := database.GetDB().
		Where("end_date <= ? AND end_date >= ?", cutoff, model.Today()).
		Order("end_date ASC").Find(&licenses).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	prometheus.ExpiringLicensesGauge.Set(float64(len(licenses)))
	return c.JSON(http.StatusOK, echo.Map{
		"licenses": licenses,
		"count":    len(licenses),
	})
}
