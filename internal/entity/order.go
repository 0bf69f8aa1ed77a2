package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnknownCategory is imputed when a product category has no translation.
const UnknownCategory = "unknown"

// OrderRecord is one unified row spanning order, item, payment, customer and product.
// An order with N items and M payments yields N×M records.
type OrderRecord struct {
	OrderID          string
	CustomerID       string
	CustomerUniqueID string
	State            Level

	PurchasedAt time.Time
	// DeliveredAt and EstimatedAt are zero when the source value is missing.
	DeliveredAt time.Time
	EstimatedAt time.Time

	ProductID   string
	CategoryRaw string
	Category    Level
	Price       decimal.Decimal
	ItemSeq     int

	PaymentType  Level
	PaymentValue decimal.Decimal
	PaymentSeq   int
}

// HasDeliveryDates reports whether all three logistics dates are present.
func (r *OrderRecord) HasDeliveryDates() bool {
	return !r.PurchasedAt.IsZero() && !r.DeliveredAt.IsZero() && !r.EstimatedAt.IsZero()
}

// CategoryTranslation is one row of the category translation table.
type CategoryTranslation struct {
	Name        string
	NameEnglish string
}
