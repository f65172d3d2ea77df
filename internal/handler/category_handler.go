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
	"gorm.io/gorm"
)

// callerBusinessID resolves the tenant for tenant-scoped routes. Everyone
// except super admins operates strictly within their own business.
func callerBusinessID(c echo.Context) (uint, bool) {
	return middleware.GetBusinessIDFromContext(c)
}

// CreateCategory adds a product category to the caller's business
func CreateCategory(c echo.Context) error {
	log := logger.FromContext(c)

	businessID, ok := callerBusinessID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "no business associated with this account"})
	}

	var req struct {
		Name         string `json:"name"`
		Description  string `json:"description"`
		ParentID     *uint  `json:"parent_id"`
		DisplayOrder int    `json:"display_order"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "category name is required"})
	}

	// Names are unique within the business only.
	var count int64
	if err := database.GetDB().Model(&model.Category{}).
		Where("business_id = ? AND name = ?", businessID, req.Name).Count(&count).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if count > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "Category already exists"})
	}

	category := model.Category{
		BusinessID:   businessID,
		Name:         req.Name,
		Description:  req.Description,
		ParentID:     req.ParentID,
		DisplayOrder: req.DisplayOrder,
		IsActive:     true,
	}
	if err := database.GetDB().Create(&category).Error; err != nil {
		log.Error("Failed to create category", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	log.Info("Category created", zap.Uint("category_id", category.ID), zap.Uint("business_id", businessID))
	return c.JSON(http.StatusCreated, category)
}

// ListCategories returns the caller's business categories
func ListCategories(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())

	businessID, ok := callerBusinessID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "no business associated with this account"})
	}

	var categories []model.Category
	if err := database.GetDB().
		Where("business_id = ?", businessID).
		Order("display_order ASC, name ASC").Find(&categories).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"categories": categories,
		"count":      len(categories),
	})
}

// UpdateCategory edits a category within the caller's business
func UpdateCategory(c echo.Context) error {
	businessID, ok := callerBusinessID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "no business associated with this account"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category id"})
	}

	var category model.Category
	if err := database.GetDB().
		Where("id = ? AND business_id = ?", id, businessID).First(&category).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
	}

	var req struct {
		Name         *string `json:"name"`
		Description  *string `json:"description"`
		DisplayOrder *int    `json:"display_order"`
		IsActive     *bool   `json:"is_active"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name != nil && *req.Name != category.Name {
		var count int64
		if err := database.GetDB().Model(&model.Category{}).
			Where("business_id = ? AND name = ? AND id <> ?", businessID, *req.Name, id).
			Count(&count).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		if count > 0 {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Category already exists"})
		}
		category.Name = *req.Name
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.DisplayOrder != nil {
		category.DisplayOrder = *req.DisplayOrder
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := database.GetDB().Save(&category).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, category)
}

// DeleteCategory removes a category; its products keep existing uncategorized
func DeleteCategory(c echo.Context) error {
	businessID, ok := callerBusinessID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "no business associated with this account"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category id"})
	}

	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		var category model.Category
		if err := tx.Where("id = ? AND business_id = ?", id, businessID).First(&category).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Product{}).
			Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&category).Error
	})
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Category deleted successfully"})
}
