package model

import (
	"time"

	"gorm.io/gorm"
)

// PaymentMethod is how a sale was settled.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "CASH"
	PaymentCard         PaymentMethod = "CARD"
	PaymentMobileMoney  PaymentMethod = "MPESA"
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentCheque       PaymentMethod = "CHEQUE"
	PaymentOther        PaymentMethod = "OTHER"
)

// SaleStatus is the settlement state of a sale.
type SaleStatus string

const (
	SaleCompleted SaleStatus = "COMPLETED"
	SalePending   SaleStatus = "PENDING"
	SaleCancelled SaleStatus = "CANCELLED"
	SaleRefunded  SaleStatus = "REFUNDED"
)

// Sale is a POS transaction. The business reference is nullable: sales
// outlive their business as orphaned records for reporting.
type Sale struct {
	ID         uint  `json:"id" gorm:"primaryKey"`
	BusinessID *uint `json:"business_id,omitempty" gorm:"index"`

	TransactionID string `json:"transaction_id" gorm:"type:varchar(50);uniqueIndex;not null"`
	ReceiptNumber string `json:"receipt_number" gorm:"type:varchar(50);uniqueIndex;not null"`

	CustomerName  string `json:"customer_name,omitempty" gorm:"type:varchar(255)"`
	CustomerPhone string `json:"customer_phone,omitempty" gorm:"type:varchar(20)"`
	CustomerEmail string `json:"customer_email,omitempty" gorm:"type:varchar(100)"`

	PaymentMethod    PaymentMethod `json:"payment_method" gorm:"type:varchar(20);default:'CASH'"`
	PaymentReference string        `json:"payment_reference,omitempty" gorm:"type:varchar(100)"`

	Subtotal       float64 `json:"subtotal" gorm:"type:decimal(12,2)"`
	TaxAmount      float64 `json:"tax_amount" gorm:"type:decimal(12,2);default:0"`
	DiscountAmount float64 `json:"discount_amount" gorm:"type:decimal(12,2);default:0"`
	TotalAmount    float64 `json:"total_amount" gorm:"type:decimal(12,2)"`
	AmountPaid     float64 `json:"amount_paid" gorm:"type:decimal(12,2)"`
	ChangeGiven    float64 `json:"change_given" gorm:"type:decimal(12,2);default:0"`

	Status SaleStatus `json:"status" gorm:"type:varchar(20);default:'COMPLETED';index"`

	// Cashier reference survives user deletion as null.
	CashierID *uint `json:"cashier_id,omitempty"`

	CreatedAt   time.Time  `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Items []SaleItem `json:"items,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// IsPaid reports whether the amount tendered covers the total.
func (s *Sale) IsPaid() bool {
	return s.AmountPaid >= s.TotalAmount
}

// SaleItem is one line of a sale. Monetary fields are recomputed from
// quantity, unit price, discount and tax on every save.
type SaleItem struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	SaleID    uint `json:"sale_id" gorm:"index;not null"`
	ProductID uint `json:"product_id" gorm:"not null"`

	Quantity           float64 `json:"quantity" gorm:"type:decimal(10,3)"`
	UnitPrice          float64 `json:"unit_price" gorm:"type:decimal(10,2)"`
	TaxRate            float64 `json:"tax_rate" gorm:"type:decimal(5,2);default:0"`
	DiscountPercentage float64 `json:"discount_percentage" gorm:"type:decimal(5,2);default:0"`

	Subtotal       float64 `json:"subtotal" gorm:"type:decimal(12,2)"`
	TaxAmount      float64 `json:"tax_amount" gorm:"type:decimal(12,2)"`
	DiscountAmount float64 `json:"discount_amount" gorm:"type:decimal(12,2)"`
	Total          float64 `json:"total" gorm:"type:decimal(12,2)"`

	CreatedAt time.Time `json:"created_at"`
}

// BeforeSave derives the line amounts.
func (i *SaleItem) BeforeSave(tx *gorm.DB) error {
	i.Subtotal = i.UnitPrice * i.Quantity
	i.DiscountAmount = i.Subtotal * i.DiscountPercentage / 100
	discounted := i.Subtotal - i.DiscountAmount
	i.TaxAmount = discounted * i.TaxRate / 100
	i.Total = discounted + i.TaxAmount
	return nil
}
