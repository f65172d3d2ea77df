package model

import (
	"time"
)

// ProductStatus is the sales availability of a product.
type ProductStatus string

const (
	ProductActive       ProductStatus = "ACTIVE"
	ProductInactive     ProductStatus = "INACTIVE"
	ProductOutOfStock   ProductStatus = "OUT_OF_STOCK"
	ProductDiscontinued ProductStatus = "DISCONTINUED"
)

// Product is a sellable item owned by a business. The business reference is
// nullable: deleting a business orphans its products instead of removing them.
type Product struct {
	ID         uint  `json:"id" gorm:"primaryKey"`
	BusinessID *uint `json:"business_id,omitempty" gorm:"index"`

	Name        string `json:"name" gorm:"type:varchar(255);not null"`
	SKU         string `json:"sku" gorm:"type:varchar(100);uniqueIndex;not null"`
	Barcode     string `json:"barcode,omitempty" gorm:"type:varchar(100);index"`
	Description string `json:"description" gorm:"type:text"`

	CategoryID *uint     `json:"category_id,omitempty"`
	Category   *Category `json:"category,omitempty" gorm:"constraint:OnDelete:SET NULL"`

	// Pricing; TaxRate is a percentage.
	CostPrice    float64 `json:"cost_price" gorm:"type:decimal(10,2)"`
	SellingPrice float64 `json:"selling_price" gorm:"type:decimal(10,2)"`
	TaxRate      float64 `json:"tax_rate" gorm:"type:decimal(5,2);default:0"`

	// Inventory
	StockQuantity     int    `json:"stock_quantity" gorm:"default:0"`
	LowStockThreshold int    `json:"low_stock_threshold" gorm:"default:10"`
	TrackInventory    bool   `json:"track_inventory" gorm:"default:true"`
	Unit              string `json:"unit" gorm:"type:varchar(20);default:'pcs'"`

	Status ProductStatus `json:"status" gorm:"type:varchar(20);default:'ACTIVE';index"`

	CreatedByID *uint     `json:"created_by_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaxAmount returns the tax charged on one unit.
func (p *Product) TaxAmount() float64 {
	return p.SellingPrice * p.TaxRate / 100
}

// PriceWithTax returns the unit price including tax.
func (p *Product) PriceWithTax() float64 {
	return p.SellingPrice + p.TaxAmount()
}

// IsLowStock reports whether tracked inventory has fallen to the threshold.
func (p *Product) IsLowStock() bool {
	return p.TrackInventory && p.StockQuantity <= p.LowStockThreshold
}
