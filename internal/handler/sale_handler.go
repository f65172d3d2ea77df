package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"salepoint/internal/model"
	"salepoint/pkg/database"
	"salepoint/pkg/logger"
	"salepoint/prometheus"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreateSale records a POS transaction: line totals are computed server-side
// and tracked inventory is decremented in the same transaction.
func CreateSale(c echo.Context) error {
	log := logger.FromContext(c)

	businessID, ok := callerBusinessID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "no business associated with this account"})
	}

	var req struct {
		CustomerName     string  `json:"customer_name"`
		CustomerPhone    string  `json:"customer_phone"`
		CustomerEmail    string  `json:"customer_email"`
		PaymentMethod    string  `json:"payment_method"`
		PaymentReference string  `json:"payment_reference"`
		AmountPaid       float64 `json:"amount_paid"`
		Items            []struct {
			ProductID          uint    `json:"product_id"`
			Quantity           float64 `json:"quantity"`
			DiscountPercentage float64 `json:"discount_percentage"`
		} `json:"items"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "sale must contain at least one item"})
	}

	paymentMethod := model.PaymentMethod(req.PaymentMethod)
	if paymentMethod == "" {
		paymentMethod = model.PaymentCash
	}

	var sale model.Sale
	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		sale = model.Sale{
			BusinessID:       &businessID,
			TransactionID:    uuid.New().String(),
			ReceiptNumber:    fmt.Sprintf("RCP-%d-%s", businessID, strings.ToUpper(uuid.New().String()[:8])),
			CustomerName:     req.CustomerName,
			CustomerPhone:    req.CustomerPhone,
			CustomerEmail:    req.CustomerEmail,
			PaymentMethod:    paymentMethod,
			PaymentReference: req.PaymentReference,
			AmountPaid:       req.AmountPaid,
			Status:           model.SaleCompleted,
			CashierID:        performedBy(c),
			CompletedAt:      &now,
		}

		for _, item := range req.Items {
			if item.Quantity <= 0 {
				return errors.New("item quantity must be positive")
			}

			var product model.Product
			if err := tx.Where("id = ? AND business_id = ?", item.ProductID, businessID).First(&product).Error; err != nil {
				return fmt.Errorf("product %d not found", item.ProductID)
			}
			if product.Status != model.ProductActive {
				return fmt.Errorf("product %s is not available for sale", product.Name)
			}
			if product.TrackInventory {
				if float64(product.StockQuantity) < item.Quantity {
					return fmt.Errorf("insufficient stock for %s", product.Name)
				}
				product.StockQuantity -= int(item.Quantity)
				if product.StockQuantity == 0 {
					product.Status = model.ProductOutOfStock
				}
				if err := tx.Save(&product).Error; err != nil {
					return err
				}
			}

			line := model.SaleItem{
				ProductID:          product.ID,
				Quantity:           item.Quantity,
				UnitPrice:          product.SellingPrice,
				TaxRate:            product.TaxRate,
				DiscountPercentage: item.DiscountPercentage,
			}
			// BeforeSave fills the derived amounts once the sale exists; the
			// totals are accumulated from the same arithmetic here.
			subtotal := line.UnitPrice * line.Quantity
			discount := subtotal * line.DiscountPercentage / 100
			tax := (subtotal - discount) * line.TaxRate / 100

			sale.Subtotal += subtotal
			sale.DiscountAmount += discount
			sale.TaxAmount += tax
			sale.TotalAmount += subtotal - discount + tax
			sale.Items = append(sale.Items, line)
		}

		if sale.AmountPaid > sale.TotalAmount {
			sale.ChangeGiven = sale.AmountPaid - sale.TotalAmount
		}

		// An underpaid sale stays open instead of completing.
		if !sale.IsPaid() {
			sale.Status = model.SalePending
			sale.CompletedAt = nil
		}

		return tx.Create(&sale).Error
	})
	if err != nil {
		log.Warn("Sale rejected", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	prometheus.SaleCounter.WithLabelValues(string(sale.PaymentMethod)).Inc()
	log.Info("Sale completed",
		zap.Uint("sale_id", sale.ID),
		zap.String("receipt", sale.ReceiptNumber),
		zap.Float64("total", sale.TotalAmount))

	return c.JSON(http.StatusCreated, sale)
}

// ListSales returns the caller's business sales, newest first
func ListSales(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())

	businessID, ok := callerBusinessID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "no business associated with this account"})
	}

	query := database.GetDB().Preload("Items").Where("business_id = ?", businessID)
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if from := c.QueryParam("from"); from != "" {
		query = query.Where("created_at >= ?", from)
	}
	if to := c.QueryParam("to"); to != "" {
		query = query.Where("created_at <= ?", to)
	}

	var sales []model.Sale
	if err := query.Order("created_at DESC").Limit(200).Find(&sales).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"sales": sales,
		"count": len(sales),
	})
}

// GetSale returns one sale with its line items
func GetSale(c echo.Context) error {
	businessID, ok := callerBusinessID(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "no business associated with this account"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid sale id"})
	}

	var sale model.Sale
	if err := database.GetDB().Preload("Items").
		Where("id = ? AND business_id = ?", id, businessID).First(&sale).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "sale not found"})
	}

	return c.JSON(http.StatusOK, sale)
}
