package handler

import (
	"net/http"
	"time"

	"salepoint/internal/model"
	"salepoint/pkg/database"
	"salepoint/pkg/logger"
	"salepoint/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CreateProduct adds a product to the caller's business, subject to the
// license MaxProducts limit.
func CreateProduct(c echo.Context) error {
	log := logger.FromContext(c)

	businessID, ok := callerBusinessID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "no business associated with this account"})
	}

	var req struct {
		Name              string  `json:"name"`
		SKU               string  `json:"sku"`
		Barcode           string  `json:"barcode"`
		Description       string  `json:"description"`
		CategoryID        *uint   `json:"category_id"`
		CostPrice         float64 `json:"cost_price"`
		SellingPrice      float64 `json:"selling_price"`
		TaxRate           float64 `json:"tax_rate"`
		StockQuantity     int     `json:"stock_quantity"`
		LowStockThreshold int     `json:"low_stock_threshold"`
		TrackInventory    *bool   `json:"track_inventory"`
		Unit              string  `json:"unit"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" || req.SKU == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "product name and SKU are required"})
	}

	// License limit check before inserting.
	var license model.License
	if err := database.GetDB().Where("business_id = ?", businessID).First(&license).Error; err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "no license found for this business"})
	}
	var productCount int64
	if err := database.GetDB().Model(&model.Product{}).
		Where("business_id = ?", businessID).Count(&productCount).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if license.MaxProducts > 0 && productCount >= int64(license.MaxProducts) {
		log.Warn("Product limit reached",
			zap.Uint("business_id", businessID),
			zap.Int("max_products", license.MaxProducts))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Product limit reached for your license tier"})
	}

	var skuCount int64
	if err := database.GetDB().Model(&model.Product{}).
		Where("sku = ?", req.SKU).Count(&skuCount).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if skuCount > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "SKU already exists"})
	}

	trackInventory := true
	if req.TrackInventory != nil {
		trackInventory = *req.TrackInventory
	}
	unit := req.Unit
	if unit == "" {
		unit = "pcs"
	}
	threshold := req.LowStockThreshold
	if threshold == 0 {
		threshold = 10
	}

	product := model.Product{
		BusinessID:        &businessID,
		Name:              req.Name,
		SKU:               req.SKU,
		Barcode:           req.Barcode,
		Description:       req.Description,
		CategoryID:        req.CategoryID,
		CostPrice:         req.CostPrice,
		SellingPrice:      req.SellingPrice,
		TaxRate:           req.TaxRate,
		StockQuantity:     req.StockQuantity,
		LowStockThreshold: threshold,
		TrackInventory:    trackInventory,
		Unit:              unit,
		Status:            model.ProductActive,
		CreatedByID:       performedBy(c),
	}
	if err := database.GetDB().Create(&product).Error; err != nil {
		log.Error("Failed to create product", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	log.Info("Product created",
		zap.Uint("product_id", product.ID),
		zap.String("sku", product.SKU))
	return c.JSON(http.StatusCreated, product)
}

// ListProducts returns the caller's business products
func ListProducts(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())

	businessID, ok := callerBusinessID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "no business associated with this account"})
	}

	query := database.GetDB().Preload("Category").Where("business_id = ?", businessID)
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if categoryID := c.QueryParam("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if search := c.QueryParam("search"); search != "" {
		query = query.Where("name LIKE ? OR sku LIKE ? OR barcode LIKE ?",
			"%"+search+"%", "%"+search+"%", "%"+search+"%")
	}

	var products []model.Product
	if err := query.Order("name ASC").Find(&products).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"products": products,
		"count":    len(products),
	})
}

// GetProduct returns one product from the caller's business
func GetProduct(c echo.Context) error {
	businessID, ok := callerBusinessID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "no business associated with this account"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	var product model.Product
	if err := database.GetDB().Preload("Category").
		Where("id = ? AND business_id = ?", id, businessID).First(&product).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"product":        product,
		"tax_amount":     product.TaxAmount(),
		"price_with_tax": product.PriceWithTax(),
		"low_stock":      product.IsLowStock(),
	})
}

// UpdateProduct edits a product within the caller's business
func UpdateProduct(c echo.Context) error {
	businessID, ok := callerBusinessID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "no business associated with this account"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	var product model.Product
	if err := database.GetDB().
		Where("id = ? AND business_id = ?", id, businessID).First(&product).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}

	var req struct {
		Name              *string  `json:"name"`
		Barcode           *string  `json:"barcode"`
		Description       *string  `json:"description"`
		CategoryID        *uint    `json:"category_id"`
		CostPrice         *float64 `json:"cost_price"`
		SellingPrice      *float64 `json:"selling_price"`
		TaxRate           *float64 `json:"tax_rate"`
		StockQuantity     *int     `json:"stock_quantity"`
		LowStockThreshold *int     `json:"low_stock_threshold"`
		TrackInventory    *bool    `json:"track_inventory"`
		Unit              *string  `json:"unit"`
		Status            *string  `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Barcode != nil {
		product.Barcode = *req.Barcode
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.CategoryID != nil {
		product.CategoryID = req.CategoryID
	}
	if req.CostPrice != nil {
		product.CostPrice = *req.CostPrice
	}
	if req.SellingPrice != nil {
		product.SellingPrice = *req.SellingPrice
	}
	if req.TaxRate != nil {
		product.TaxRate = *req.TaxRate
	}
	if req.StockQuantity != nil {
		product.StockQuantity = *req.StockQuantity
	}
	if req.LowStockThreshold != nil {
		product.LowStockThreshold = *req.LowStockThreshold
	}
	if req.TrackInventory != nil {
		product.TrackInventory = *req.TrackInventory
	}
	if req.Unit != nil {
		product.Unit = *req.Unit
	}
	if req.Status != nil {
		product.Status = model.ProductStatus(*req.Status)
	}

	if err := database.GetDB().Save(&product).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct removes a product from the caller's business
func DeleteProduct(c echo.Context) error {
	businessID, ok := callerBusinessID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "no business associated with this account"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	result := database.GetDB().Where("id = ? AND business_id = ?", id, businessID).Delete(&model.Product{})
	if result.Error != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}

	logger.FromContext(c).Info("Product deleted", zap.Uint("product_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Product deleted successfully"})
}

// LowStockProducts lists tracked products at or below their threshold
func LowStockProducts(c echo.Context) error {
	businessID, ok := callerBusinessID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "no business associated with this account"})
	}

	var candidates []model.Product
	if err := database.GetDB().
		Where("business_id = ?", businessID).
		Order("stock_quantity ASC").Find(&candidates).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	products := make([]model.Product, 0, len(candidates))
	for _, p := range candidates {
		if p.IsLowStock() {
			products = append(products, p)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"products": products,
		"count":    len(products),
	})
}
