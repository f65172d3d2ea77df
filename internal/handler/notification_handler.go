package handler

import (
	"net/http"
	"time"

	"salepoint/internal/middleware"
	"salepoint/internal/model"
	"salepoint/pkg/database"
	"salepoint/pkg/logger"
	"salepoint/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// visibleNotifications builds the audience filter for the caller: ALL plus
// their role audience, plus their own business for tenant-targeted
// notifications.
func visibleNotifications(c echo.Context) ([]model.Notification, error) {
	role, _ := middleware.GetRoleFromContext(c)

	query := database.GetDB().Where("is_active = ?", true)
	switch role {
	case model.RoleSuperAdmin:
		query = query.Where("audience IN ?", []model.Audience{model.AudienceAll, model.AudienceSuperAdmins})
	case model.RoleBusinessAdmin:
		if businessID, ok := middleware.GetBusinessIDFromContext(c); ok {
			query = query.Where(
				"audience IN ? OR (audience = ? AND business_id = ?)",
				[]model.Audience{model.AudienceAll, model.AudienceBusinessAdmins},
				model.AudienceSpecificBusiness, businessID)
		} else {
			query = query.Where("audience IN ?", []model.Audience{model.AudienceAll, model.AudienceBusinessAdmins})
		}
	case model.RoleCashier:
		query = query.Where("audience IN ?", []model.Audience{model.AudienceAll, model.AudienceCashiers})
	default:
		query = query.Where("audience = ?", model.AudienceAll)
	}

	var notifications []model.Notification
	err := query.Order("created_at DESC").Find(&notifications).Error
	return notifications, err
}

// ListNotifications returns the caller's visible, non-expired notifications
func ListNotifications(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())

	notifications, err := visibleNotifications(c)
	if err != nil {
		logger.FromContext(c).Error("Failed to list notifications", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	// Expired notifications are filtered out, not deleted.
	active := notifications[:0]
	unread := 0
	for _, n := range notifications {
		if n.Expired() {
			continue
		}
		active = append(active, n)
		if !n.IsRead {
			unread++
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"notifications": active,
		"count":         len(active),
		"unread":        unread,
	})
}

// MarkNotificationRead marks a single notification as read
func MarkNotificationRead(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid notification id"})
	}

	result := database.GetDB().Model(&model.Notification{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_read", true)
	if result.Error != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "notification not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Notification marked as read"})
}

// MarkAllNotificationsRead marks every visible notification as read
func MarkAllNotificationsRead(c echo.Context) error {
	notifications, err := visibleNotifications(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	ids := make([]uint, 0, len(notifications))
	for _, n := range notifications {
		if !n.IsRead {
			ids = append(ids, n.ID)
		}
	}
	if len(ids) > 0 {
		if err := database.GetDB().Model(&model.Notification{}).
			Where("id IN ?", ids).Update("is_read", true).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "All notifications marked as read",
		"count":   len(ids),
	})
}

// ClearNotification soft-deletes a notification by flipping is_active
func ClearNotification(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid notification id"})
	}

	result := database.GetDB().Model(&model.Notification{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if result.Error != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "notification not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Notification cleared"})
}

// ListActivities returns the audit trail, tenant-scoped for business admins
func ListActivities(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())

	query := database.GetDB().Model(&model.SystemActivity{})

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
	if t := c.QueryParam("activity_type"); t != "" {
		query = query.Where("activity_type = ?", t)
	}

	var activities []model.SystemActivity
	if err := query.Order("created_at DESC").Limit(200).Find(&activities).Error; err != nil {
		logger.FromContext(c).Error("Failed to list activities", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"activities": activities,
		"count":      len(activities),
	})
}
