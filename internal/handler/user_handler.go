package handler

import (
	"net/http"
	"strings"
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

func conflictStatus(message string) int {
	if strings.Contains(message, "already exists") {
		return http.StatusConflict
	}
	return http.StatusBadRequest
}

// CreateUser creates an account. Super admins may target any business;
// business admins are pinned to their own.
func CreateUser(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Username    string `json:"username"`
		Email       string `json:"email"`
		Password    string `json:"password"`
		FirstName   string `json:"first_name"`
		LastName    string `json:"last_name"`
		Phone       string `json:"phone"`
		Role        string `json:"role"`
		LicenseTier string `json:"license_tier"`
		BusinessID  *uint  `json:"business_id"`
		IsActive    *bool  `json:"is_active"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse create user request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	role, _ := middleware.GetRoleFromContext(c)
	businessID := req.BusinessID
	if role == model.RoleBusinessAdmin {
		// Business admins can only create non-privileged users inside
		// their own business.
		if model.Role(req.Role) == model.RoleSuperAdmin || model.Role(req.Role) == model.RoleBusinessAdmin {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "insufficient permissions"})
		}
		own, ok := middleware.GetBusinessIDFromContext(c)
		if !ok {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "no business associated with this account"})
		}
		businessID = &own
	}

	input := lifecycle.CreateUserInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Phone:       req.Phone,
		Role:        model.Role(req.Role),
		LicenseTier: model.LicenseTier(req.LicenseTier),
		BusinessID:  businessID,
		IsActive:    req.IsActive,
	}

	ok, message, user, generatedPassword := lifecycle.CreateUser(database.GetDB(), input, performedBy(c))
	prometheus.RecordLifecycleOperation("create_user", ok)
	if !ok {
		log.Warn("User creation failed", zap.String("reason", message))
		return c.JSON(conflictStatus(message), echo.Map{"error": message})
	}

	log.Info("User created", zap.Uint("user_id", user.ID), zap.String("username", user.Username))

	resp := echo.Map{
		"message": message,
		"user":    user,
	}
	if generatedPassword != "" {
		resp["generated_password"] = generatedPassword
	}
	return c.JSON(http.StatusCreated, resp)
}

// ListUsers returns accounts, tenant-scoped for business admins.
func ListUsers(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())

	query := database.GetDB().Model(&model.User{})

	role, _ := middleware.GetRoleFromContext(c)
	if role != model.RoleSuperAdmin {
		businessID, ok := middleware.GetBusinessIDFromContext(c)
		if !ok {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "no business associated with this account"})
		}
		query = query.Where("business_id = ?", businessID)
	} else if b := c.QueryParam("business_id"); b != "" {
		query = query.Where("business_id = ?", b)
	}

	var users []model.User
	if err := query.Order("created_at DESC").Find(&users).Error; err != nil {
		logger.FromContext(c).Error("Failed to list users", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"users": users,
		"count": len(users),
	})
}

// GetUser returns one account, tenant-scoped for business admins.
func GetUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}

	var user model.User
	if err := database.GetDB().Preload("Business").First(&user, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
	}

	role, _ := middleware.GetRoleFromContext(c)
	if role != model.RoleSuperAdmin {
		businessID, ok := middleware.GetBusinessIDFromContext(c)
		if !ok || user.BusinessID == nil || *user.BusinessID != businessID {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "insufficient permissions"})
		}
	}

	return c.JSON(http.StatusOK, user)
}

// UpdateUser applies a partial update to an account. Super admin only.
func UpdateUser(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}

	// Raw map distinguishes "business_id absent" from "business_id null".
	var raw map[string]interface{}
	if err := c.Bind(&raw); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	input := lifecycle.UpdateUserInput{}
	if v, ok := raw["username"].(string); ok {
		input.Username = &v
	}
	if v, ok := raw["email"].(string); ok {
		input.Email = &v
	}
	if v, ok := raw["first_name"].(string); ok {
		input.FirstName = &v
	}
	if v, ok := raw["last_name"].(string); ok {
		input.LastName = &v
	}
	if v, ok := raw["phone"].(string); ok {
		input.Phone = &v
	}
	if v, ok := raw["role"].(string); ok {
		r := model.Role(v)
		input.Role = &r
	}
	if v, ok := raw["license_tier"].(string); ok {
		t := model.LicenseTier(v)
		input.LicenseTier = &t
	}
	if v, ok := raw["is_active"].(bool); ok {
		input.IsActive = &v
	}
	if v, present := raw["business_id"]; present {
		input.BusinessSet = true
		if f, ok := v.(float64); ok {
			businessID := uint(f)
			input.BusinessID = &businessID
		}
	}

	ok, message := lifecycle.UpdateUser(database.GetDB(), id, input, performedBy(c))
	prometheus.RecordLifecycleOperation("update_user", ok)
	if !ok {
		log.Warn("User update failed", zap.Uint("user_id", id), zap.String("reason", message))
		return c.JSON(conflictStatus(message), echo.Map{"error": message})
	}

	log.Info("User updated", zap.Uint("user_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": message})
}

// DeactivateUser disables an account. Super admin only.
func DeactivateUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	callerID, _ := middleware.GetUserIDFromContext(c)

	ok, message := lifecycle.DeactivateUser(database.GetDB(), id, callerID)
	prometheus.RecordLifecycleOperation("deactivate_user", ok)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": message})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": message})
}

// ActivateUser re-enables an account. Super admin only.
func ActivateUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	callerID, _ := middleware.GetUserIDFromContext(c)

	ok, message := lifecycle.ActivateUser(database.GetDB(), id, callerID)
	prometheus.RecordLifecycleOperation("activate_user", ok)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": message})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": message})
}

// DeleteUser removes an account. Super admin only.
func DeleteUser(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	callerID, _ := middleware.GetUserIDFromContext(c)

	ok, message := lifecycle.DeleteUser(database.GetDB(), id, callerID)
	prometheus.RecordLifecycleOperation("delete_user", ok)
	if !ok {
		log.Warn("User deletion rejected", zap.Uint("user_id", id), zap.String("reason", message))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": message})
	}

	log.Info("User deleted", zap.Uint("user_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": message})
}

// ResetPassword issues a fresh random password for an account and returns it
// once. Super admin only.
func ResetPassword(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	callerID, _ := middleware.GetUserIDFromContext(c)

	ok, message, newPassword := lifecycle.ResetPassword(database.GetDB(), id, callerID)
	prometheus.RecordLifecycleOperation("reset_password", ok)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": message})
	}

	logger.FromContext(c).Info("Password reset", zap.Uint("user_id", id))
	return c.JSON(http.StatusOK, echo.Map{
		"message":      message,
		"new_password": newPassword,
	})
}
