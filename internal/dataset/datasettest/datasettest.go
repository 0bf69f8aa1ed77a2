// Package datasettest builds in-memory datasets for tests.
package datasettest

import (
	"context"
	"testing"

	"github.com/jekabolt/ecomm-insights/internal/dataset"
	"github.com/jekabolt/ecomm-insights/internal/source"
	"github.com/stretchr/testify/require"
)

// Item is one order item.
type Item struct {
	Product  string
	Category string
	Price    string
}

// Payment is one payment row.
type Payment struct {
	Type  string
	Value string
}

// Order describes an order with its customer, items and payments. Dates use
// the "2006-01-02 15:04:05" layout or a bare date; empty means missing.
type Order struct {
	ID        string
	Customer  string
	UniqueID  string
	State     string
	Purchased string
	Delivered string
	Estimated string
	Items     []Item
	Payments  []Payment
}

// DefaultTranslations is a small category translation table.
var DefaultTranslations = [][2]string{
	{"beleza_saude", "health_beauty"},
	{"informatica_acessorios", "computers_accessories"},
	{"cama_mesa_banho", "bed_bath_table"},
	{"esporte_lazer", "sports_leisure"},
	{"moveis_decoracao", "furniture_decor"},
}

// Builder accumulates orders and renders the six source tables.
type Builder struct {
	orders       []Order
	translations [][2]string
}

func New() *Builder {
	return &Builder{translations: DefaultTranslations}
}

// Translations replaces the translation table.
func (b *Builder) Translations(tr [][2]string) *Builder {
	b.translations = tr
	return b
}

// Add appends orders.
func (b *Builder) Add(orders ...Order) *Builder {
	b.orders = append(b.orders, orders...)
	return b
}

// Frames renders the source tables.
func (b *Builder) Frames() []*source.Frame {
	var (
		oID, oCust, oPurch, oDeliv, oEst []string
		iOrder, iProd, iPrice            []string
		pOrder, pType, pValue            []string
		cID, cUnique, cState             []string
		prID, prCat                      []string
		tName, tEnglish                  []string
	)
	seenCustomer := map[string]bool{}
	seenProduct := map[string]bool{}
	for _, o := range b.orders {
		oID = append(oID, o.ID)
		oCust = append(oCust, o.Customer)
		oPurch = append(oPurch, o.Purchased)
		oDeliv = append(oDeliv, o.Delivered)
		oEst = append(oEst, o.Estimated)
		for _, it := range o.Items {
			iOrder = append(iOrder, o.ID)
			iProd = append(iProd, it.Product)
			iPrice = append(iPrice, it.Price)
			if !seenProduct[it.Product] {
				seenProduct[it.Product] = true
				prID = append(prID, it.Product)
				prCat = append(prCat, it.Category)
			}
		}
		for _, p := range o.Payments {
			pOrder = append(pOrder, o.ID)
			pType = append(pType, p.Type)
			pValue = append(pValue, p.Value)
		}
		if !seenCustomer[o.Customer] {
			seenCustomer[o.Customer] = true
			cID = append(cID, o.Customer)
			cUnique = append(cUnique, o.UniqueID)
			cState = append(cState, o.State)
		}
	}
	for _, t := range b.translations {
		tName = append(tName, t[0])
		tEnglish = append(tEnglish, t[1])
	}

	return []*source.Frame{
		frame(source.TableOrders, map[string][]string{
			"order_id":                      oID,
			"customer_id":                   oCust,
			"order_purchase_timestamp":      oPurch,
			"order_delivered_customer_date": oDeliv,
			"order_estimated_delivery_date": oEst,
		}),
		frame(source.TableItems, map[string][]string{
			"order_id":   iOrder,
			"product_id": iProd,
			"price":      iPrice,
		}),
		frame(source.TablePayments, map[string][]string{
			"order_id":      pOrder,
			"payment_type":  pType,
			"payment_value": pValue,
		}),
		frame(source.TableCustomers, map[string][]string{
			"customer_id":        cID,
			"customer_unique_id": cUnique,
			"customer_state":     cState,
		}),
		frame(source.TableProducts, map[string][]string{
			"product_id":            prID,
			"product_category_name": prCat,
		}),
		frame(source.TableTranslation, map[string][]string{
			"product_category_name":         tName,
			"product_category_name_english": tEnglish,
		}),
	}
}

// Source returns a memory source serving the built tables.
func (b *Builder) Source() *source.MemorySource {
	return source.NewMemorySource(b.Frames()...)
}

// Load builds and loads the dataset, failing t on error.
func (b *Builder) Load(t testing.TB) *dataset.Dataset {
	t.Helper()
	ds, _, err := dataset.NewLoader(b.Source()).Load(context.Background())
	require.NoError(t, err)
	return ds
}

func frame(table source.Table, cols map[string][]string) *source.Frame {
	f := source.NewFrame(table)
	for _, name := range dataset.Columns[table] {
		if err := f.AddColumn(source.NewStringColumn(name, cols[name]...)); err != nil {
			panic(err)
		}
	}
	return f
}
