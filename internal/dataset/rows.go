package dataset

import (
	"fmt"
	"time"

	"github.com/jekabolt/ecomm-insights/internal/source"
	"github.com/shopspring/decimal"
)

type orderRow struct {
	OrderID     string
	CustomerID  string
	PurchasedAt time.Time
	PurchasedOK bool
	DeliveredAt time.Time
	EstimatedAt time.Time
}

type itemRow struct {
	OrderID   string
	ProductID string
	Price     decimal.Decimal
}

type paymentRow struct {
	OrderID string
	Type    string
	Value   decimal.Decimal
}

type customerRow struct {
	CustomerID string
	UniqueID   string
	State      string
}

type productRow struct {
	ProductID string
	Category  string
}

type translationRow struct {
	Category        string
	CategoryEnglish string
}

// columns resolves the named columns of f in order.
func columns(f *source.Frame, names ...string) ([]*source.Column, error) {
	out := make([]*source.Column, len(names))
	for i, n := range names {
		c, err := f.Column(n)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

func str(c *source.Column, i int) string {
	s, _ := c.String(i)
	return s
}

func dec(c *source.Column, i int) decimal.Decimal {
	d, _ := c.Decimal(i)
	return d
}

func stamp(c *source.Column, i int) time.Time {
	t, _ := c.Timestamp(i)
	return t
}

func readOrders(f *source.Frame) ([]orderRow, error) {
	cs, err := columns(f, colOrderID, colCustomerID, colPurchasedAt, colDeliveredAt, colEstimatedAt)
	if err != nil {
		return nil, err
	}
	rows := make([]orderRow, f.Len())
	for i := range rows {
		purchased, ok := cs[2].Timestamp(i)
		rows[i] = orderRow{
			OrderID:     str(cs[0], i),
			CustomerID:  str(cs[1], i),
			PurchasedAt: purchased,
			PurchasedOK: ok,
			DeliveredAt: stamp(cs[3], i),
			EstimatedAt: stamp(cs[4], i),
		}
	}
	return rows, nil
}

func readItems(f *source.Frame) ([]itemRow, error) {
	cs, err := columns(f, colOrderID, colProductID, colPrice)
	if err != nil {
		return nil, err
	}
	rows := make([]itemRow, f.Len())
	for i := range rows {
		price := dec(cs[2], i)
		if price.IsNegative() {
			return nil, fmt.Errorf("negative price %s for order %s", price, str(cs[0], i))
		}
		rows[i] = itemRow{
			OrderID:   str(cs[0], i),
			ProductID: str(cs[1], i),
			Price:     price,
		}
	}
	return rows, nil
}

func readPayments(f *source.Frame) ([]paymentRow, error) {
	cs, err := columns(f, colOrderID, colPaymentType, colPaymentValue)
	if err != nil {
		return nil, err
	}
	rows := make([]paymentRow, f.Len())
	for i := range rows {
		rows[i] = paymentRow{
			OrderID: str(cs[0], i),
			Type:    str(cs[1], i),
			Value:   dec(cs[2], i),
		}
	}
	return rows, nil
}

func readCustomers(f *source.Frame) ([]customerRow, error) {
	cs, err := columns(f, colCustomerID, colCustomerUniqueID, colCustomerState)
	if err != nil {
		return nil, err
	}
	rows := make([]customerRow, f.Len())
	for i := range rows {
		rows[i] = customerRow{
			CustomerID: str(cs[0], i),
			UniqueID:   str(cs[1], i),
			State:      str(cs[2], i),
		}
	}
	return rows, nil
}

func readProducts(f *source.Frame) ([]productRow, error) {
	cs, err := columns(f, colProductID, colCategory)
	if err != nil {
		return nil, err
	}
	rows := make([]productRow, f.Len())
	for i := range rows {
		rows[i] = productRow{
			ProductID: str(cs[0], i),
			Category:  str(cs[1], i),
		}
	}
	return rows, nil
}

func readTranslations(f *source.Frame) ([]translationRow, error) {
	cs, err := columns(f, colCategory, colCategoryEnglish)
	if err != nil {
		return nil, err
	}
	rows := make([]translationRow, f.Len())
	for i := range rows {
		rows[i] = translationRow{
			Category:        str(cs[0], i),
			CategoryEnglish: str(cs[1], i),
		}
	}
	return rows, nil
}
