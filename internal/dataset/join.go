package dataset

import (
	"time"

	"github.com/jekabolt/ecomm-insights/internal/entity"
	"github.com/shopspring/decimal"
)

// JoinKind is the kind of a join between two tables.
type JoinKind string

const (
	JoinInner JoinKind = "inner"
	JoinLeft  JoinKind = "left"
)

// JoinStep documents one step of the unified record join.
type JoinStep struct {
	Left  string
	Right string
	Key   string
	Kind  JoinKind
}

// JoinPlan lists the joins in the order they are applied.
var JoinPlan = []JoinStep{
	{Left: "orders", Right: "items", Key: colOrderID, Kind: JoinInner},
	{Left: "orders+items", Right: "payments", Key: colOrderID, Kind: JoinInner},
	{Left: "orders+items+payments", Right: "customers", Key: colCustomerID, Kind: JoinInner},
	{Left: "orders+items+payments+customers", Right: "products", Key: colProductID, Kind: JoinInner},
	{Left: "orders+items+payments+customers+products", Right: "translation", Key: colCategory, Kind: JoinLeft},
}

// joined is a unified record before categorical values are encoded.
type joined struct {
	OrderID          string
	CustomerID       string
	CustomerUniqueID string
	State            string

	PurchasedAt time.Time
	PurchasedOK bool
	DeliveredAt time.Time
	EstimatedAt time.Time

	ProductID       string
	CategoryRaw     string
	CategoryEnglish string
	Price           decimal.Decimal
	ItemSeq         int

	PaymentType  string
	PaymentValue decimal.Decimal
	PaymentSeq   int
}

// indexBy groups row positions by key, keeping row order. Rows with an empty
// key never match.
func indexBy[T any](rows []T, key func(T) string) map[string][]int {
	idx := make(map[string][]int, len(rows))
	for i, r := range rows {
		k := key(r)
		if k == "" {
			continue
		}
		idx[k] = append(idx[k], i)
	}
	return idx
}

// joinOrderItems is orders ⋈ items, inner on order_id. ItemSeq is the
// position of the item within its order.
func joinOrderItems(orders []orderRow, items []itemRow) []joined {
	idx := indexBy(items, func(r itemRow) string { return r.OrderID })
	out := make([]joined, 0, len(items))
	for _, o := range orders {
		for seq, i := range idx[o.OrderID] {
			it := items[i]
			out = append(out, joined{
				OrderID:     o.OrderID,
				CustomerID:  o.CustomerID,
				PurchasedAt: o.PurchasedAt,
				PurchasedOK: o.PurchasedOK,
				DeliveredAt: o.DeliveredAt,
				EstimatedAt: o.EstimatedAt,
				ProductID:   it.ProductID,
				Price:       it.Price,
				ItemSeq:     seq,
			})
		}
	}
	return out
}

// joinPayments is rows ⋈ payments, inner on order_id. PaymentSeq is the
// position of the payment within its order.
func joinPayments(rows []joined, payments []paymentRow) []joined {
	idx := indexBy(payments, func(r paymentRow) string { return r.OrderID })
	out := make([]joined, 0, len(rows))
	for _, r := range rows {
		for seq, i := range idx[r.OrderID] {
			p := payments[i]
			j := r
			j.PaymentType = p.Type
			j.PaymentValue = p.Value
			j.PaymentSeq = seq
			out = append(out, j)
		}
	}
	return out
}

// joinCustomers is rows ⋈ customers, inner on customer_id.
func joinCustomers(rows []joined, customers []customerRow) []joined {
	idx := indexBy(customers, func(r customerRow) string { return r.CustomerID })
	out := make([]joined, 0, len(rows))
	for _, r := range rows {
		for _, i := range idx[r.CustomerID] {
			c := customers[i]
			j := r
			j.CustomerUniqueID = c.UniqueID
			j.State = c.State
			out = append(out, j)
		}
	}
	return out
}

// joinProducts is rows ⋈ products, inner on product_id.
func joinProducts(rows []joined, products []productRow) []joined {
	idx := indexBy(products, func(r productRow) string { return r.ProductID })
	out := make([]joined, 0, len(rows))
	for _, r := range rows {
		for _, i := range idx[r.ProductID] {
			j := r
			j.CategoryRaw = products[i].Category
			out = append(out, j)
		}
	}
	return out
}

// joinTranslation is rows ⟕ translation, left on product_category_name.
// Rows without a translation keep their place with the english name set to
// entity.UnknownCategory.
func joinTranslation(rows []joined, translations []translationRow) []joined {
	idx := indexBy(translations, func(r translationRow) string { return r.Category })
	out := make([]joined, 0, len(rows))
	for _, r := range rows {
		matches := idx[r.CategoryRaw]
		if len(matches) == 0 {
			r.CategoryEnglish = entity.UnknownCategory
			out = append(out, r)
			continue
		}
		for _, i := range matches {
			j := r
			j.CategoryEnglish = translations[i].CategoryEnglish
			if j.CategoryEnglish == "" {
				j.CategoryEnglish = entity.UnknownCategory
			}
			out = append(out, j)
		}
	}
	return out
}
