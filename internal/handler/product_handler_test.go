package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"salepoint/internal/lifecycle"
	"salepoint/internal/middleware"
	"salepoint/internal/model"
	"salepoint/pkg/config"
	"salepoint/pkg/database"
	"salepoint/pkg/jwtutil"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCatalogServer(t *testing.T) (*echo.Echo, *model.Business, string) {
	t.Helper()

	db, err := database.InitTestDB()
	require.NoError(t, err)
	database.DB = db

	jwtutil.Initialize(&config.JWTConfig{
		SigningKey:      "test-signing-key",
		ExpirationHours: 1,
	})

	e := echo.New()
	e.POST("/auth/login", Login)

	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)
	api.POST("/products", CreateProduct)
	api.GET("/products", ListProducts)
	api.GET("/products/low-stock", LowStockProducts)
	api.POST("/sales", CreateSale)
	api.GET("/sales", ListSales)

	ok, message, business, password := lifecycle.RegisterBusiness(db, lifecycle.RegisterBusinessInput{
		BusinessName:  "Shop",
		Email:         "shop@example.com",
		AdminUsername: "shopadmin",
		AdminEmail:    "sa@example.com",
		LicenseTier:   model.TierBasic,
		DurationDays:  30,
	}, nil)
	require.True(t, ok, message)

	return e, business, loginToken(t, e, "shopadmin", password)
}

func postJSON(e *echo.Echo, path, token string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCreateProduct(t *testing.T) {
	e, business, token := setupCatalogServer(t)

	rec := postJSON(e, "/api/products", token, map[string]interface{}{
		"name":           "Cola",
		"sku":            "COLA-1",
		"selling_price":  50.0,
		"tax_rate":       16.0,
		"stock_quantity": 20,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var product model.Product
	require.NoError(t, database.GetDB().Where("sku = ?", "COLA-1").First(&product).Error)
	require.NotNil(t, product.BusinessID)
	assert.Equal(t, business.ID, *product.BusinessID)

	// Duplicate SKU
	rec = postJSON(e, "/api/products", token, map[string]interface{}{
		"name": "Cola again", "sku": "COLA-1", "selling_price": 50.0,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Missing fields
	rec = postJSON(e, "/api/products", token, map[string]interface{}{"name": "No SKU"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateProductLicenseLimit(t *testing.T) {
	e, business, token := setupCatalogServer(t)

	require.NoError(t, database.GetDB().Model(&model.License{}).
		Where("business_id = ?", business.ID).Update("max_products", 2).Error)

	for i := 0; i < 2; i++ {
		rec := postJSON(e, "/api/products", token, map[string]interface{}{
			"name": fmt.Sprintf("Item %d", i), "sku": fmt.Sprintf("SKU-%d", i), "selling_price": 10.0,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := postJSON(e, "/api/products", token, map[string]interface{}{
		"name": "One too many", "sku": "SKU-OVER", "selling_price": 10.0,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Product limit reached")
}

func TestCreateSaleDecrementsStock(t *testing.T) {
	e, business, token := setupCatalogServer(t)

	product := model.Product{
		BusinessID:     &business.ID,
		Name:           "Cola",
		SKU:            "COLA-1",
		SellingPrice:   50,
		TaxRate:        16,
		StockQuantity:  10,
		TrackInventory: true,
		Status:         model.ProductActive,
	}
	require.NoError(t, database.GetDB().Create(&product).Error)

	rec := postJSON(e, "/api/sales", token, map[string]interface{}{
		"payment_method": "CASH",
		"amount_paid":    200.0,
		"items": []map[string]interface{}{
			{"product_id": product.ID, "quantity": 3},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var sale model.Sale
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sale))
	assert.InDelta(t, 150.0, sale.Subtotal, 0.001)
	assert.InDelta(t, 174.0, sale.TotalAmount, 0.001)
	assert.InDelta(t, 26.0, sale.ChangeGiven, 0.001)
	assert.NotEmpty(t, sale.ReceiptNumber)

	var got model.Product
	require.NoError(t, database.GetDB().First(&got, product.ID).Error)
	assert.Equal(t, 7, got.StockQuantity)
}

func TestCreateSaleUnderpaidStaysPending(t *testing.T) {
	e, business, token := setupCatalogServer(t)

	product := model.Product{
		BusinessID: &business.ID, Name: "Cola", SKU: "COLA-1",
		SellingPrice: 50, StockQuantity: 10, TrackInventory: true, Status: model.ProductActive,
	}
	require.NoError(t, database.GetDB().Create(&product).Error)

	rec := postJSON(e, "/api/sales", token, map[string]interface{}{
		"amount_paid": 30.0,
		"items": []map[string]interface{}{
			{"product_id": product.ID, "quantity": 2},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var sale model.Sale
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sale))
	assert.Equal(t, model.SalePending, sale.Status)
	assert.Nil(t, sale.CompletedAt)
	assert.Zero(t, sale.ChangeGiven)
}

func TestLowStockProducts(t *testing.T) {
	e, business, token := setupCatalogServer(t)

	low := model.Product{
		BusinessID: &business.ID, Name: "Low", SKU: "LOW-1",
		SellingPrice: 10, StockQuantity: 2, LowStockThreshold: 5,
		TrackInventory: true, Status: model.ProductActive,
	}
	plenty := model.Product{
		BusinessID: &business.ID, Name: "Plenty", SKU: "PLENTY-1",
		SellingPrice: 10, StockQuantity: 50, LowStockThreshold: 5,
		TrackInventory: true, Status: model.ProductActive,
	}
	untracked := model.Product{
		BusinessID: &business.ID, Name: "Untracked", SKU: "UNTRACKED-1",
		SellingPrice: 10, StockQuantity: 0, LowStockThreshold: 5,
		TrackInventory: false, Status: model.ProductActive,
	}
	for _, p := range []*model.Product{&low, &plenty, &untracked} {
		require.NoError(t, database.GetDB().Create(p).Error)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/products/low-stock", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Products []model.Product `json:"products"`
		Count    int             `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "LOW-1", resp.Products[0].SKU)
}

func TestCreateSaleInsufficientStockRollsBack(t *testing.T) {
	e, business, token := setupCatalogServer(t)

	cheap := model.Product{
		BusinessID: &business.ID, Name: "Gum", SKU: "GUM-1",
		SellingPrice: 5, StockQuantity: 100, TrackInventory: true, Status: model.ProductActive,
	}
	scarce := model.Product{
		BusinessID: &business.ID, Name: "Rare", SKU: "RARE-1",
		SellingPrice: 500, StockQuantity: 1, TrackInventory: true, Status: model.ProductActive,
	}
	require.NoError(t, database.GetDB().Create(&cheap).Error)
	require.NoError(t, database.GetDB().Create(&scarce).Error)

	rec := postJSON(e, "/api/sales", token, map[string]interface{}{
		"amount_paid": 1000.0,
		"items": []map[string]interface{}{
			{"product_id": cheap.ID, "quantity": 10},
			{"product_id": scarce.ID, "quantity": 2},
		},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "insufficient stock")

	// The first line's decrement rolled back with the sale
	var got model.Product
	require.NoError(t, database.GetDB().First(&got, cheap.ID).Error)
	assert.Equal(t, 100, got.StockQuantity)

	var count int64
	require.NoError(t, database.GetDB().Model(&model.Sale{}).Count(&count).Error)
	assert.Zero(t, count)
}
