package source

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Table names a source table of the dataset.
type Table string

const (
	TableOrders      Table = "orders"
	TableItems       Table = "items"
	TablePayments    Table = "payments"
	TableCustomers   Table = "customers"
	TableProducts    Table = "products"
	TableTranslation Table = "translation"
)

// Tables lists every source table in load order.
var Tables = []Table{
	TableOrders,
	TableItems,
	TablePayments,
	TableCustomers,
	TableProducts,
	TableTranslation,
}

// FileNames maps tables to their on-disk base names (without extension).
var FileNames = map[Table]string{
	TableOrders:      "olist_orders_dataset",
	TableItems:       "olist_order_items_dataset",
	TablePayments:    "olist_order_payments_dataset",
	TableCustomers:   "olist_customers_dataset",
	TableProducts:    "olist_products_dataset",
	TableTranslation: "product_category_name_translation",
}

// Kind is the physical type of a column.
type Kind int

const (
	KindString Kind = iota
	KindFloat
	KindTime
)

// Column holds the values of one projected column. Only the slice matching
// Kind is populated.
type Column struct {
	Name  string
	Kind  Kind
	Str   []string
	Float []float64
	Time  []time.Time
	Valid []bool
}

// NewStringColumn builds a string column; empty strings are treated as null.
func NewStringColumn(name string, vs ...string) *Column {
	c := &Column{Name: name, Kind: KindString}
	for _, v := range vs {
		c.AppendString(v, v != "")
	}
	return c
}

// NewFloatColumn builds a float column with every value valid.
func NewFloatColumn(name string, vs ...float64) *Column {
	c := &Column{Name: name, Kind: KindFloat}
	for _, v := range vs {
		c.AppendFloat(v, true)
	}
	return c
}

func (c *Column) Len() int {
	return len(c.Valid)
}

func (c *Column) AppendString(v string, valid bool) {
	c.Str = append(c.Str, v)
	c.Valid = append(c.Valid, valid)
}

func (c *Column) AppendFloat(v float64, valid bool) {
	c.Float = append(c.Float, v)
	c.Valid = append(c.Valid, valid)
}

func (c *Column) AppendTime(v time.Time, valid bool) {
	c.Time = append(c.Time, v)
	c.Valid = append(c.Valid, valid)
}

// String returns the value at i rendered as a string.
func (c *Column) String(i int) (string, bool) {
	if !c.Valid[i] {
		return "", false
	}
	switch c.Kind {
	case KindFloat:
		return strconv.FormatFloat(c.Float[i], 'f', -1, 64), true
	case KindTime:
		return c.Time[i].Format(time.DateTime), true
	default:
		return c.Str[i], true
	}
}

// Decimal returns the value at i as a decimal.
func (c *Column) Decimal(i int) (decimal.Decimal, bool) {
	if !c.Valid[i] {
		return decimal.Zero, false
	}
	switch c.Kind {
	case KindFloat:
		return decimal.NewFromFloat(c.Float[i]), true
	case KindString:
		d, err := decimal.NewFromString(strings.TrimSpace(c.Str[i]))
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	default:
		return decimal.Zero, false
	}
}

// Timestamp returns the value at i as a time. String values are parsed with
// the layouts accepted by ParseTimestamp; unparsable values are reported as null.
func (c *Column) Timestamp(i int) (time.Time, bool) {
	if !c.Valid[i] {
		return time.Time{}, false
	}
	switch c.Kind {
	case KindTime:
		return c.Time[i], true
	case KindString:
		t, err := ParseTimestamp(c.Str[i])
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	default:
		return time.Time{}, false
	}
}

var timestampLayouts = []string{
	time.DateTime,
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04",
	time.DateOnly,
}

// ParseTimestamp parses a naive timestamp as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp %q", s)
}

// Frame is a column-projected table read from a source.
type Frame struct {
	Table   Table
	rows    int
	columns map[string]*Column
	order   []string
}

func NewFrame(table Table) *Frame {
	return &Frame{
		Table:   table,
		rows:    -1,
		columns: make(map[string]*Column),
	}
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if f.rows < 0 {
		return 0
	}
	return f.rows
}

// AddColumn attaches c to the frame; every column must have the same length.
func (f *Frame) AddColumn(c *Column) error {
	if f.rows >= 0 && c.Len() != f.rows {
		return fmt.Errorf("column %s has %d rows, want %d", c.Name, c.Len(), f.rows)
	}
	if _, ok := f.columns[c.Name]; ok {
		return fmt.Errorf("duplicate column %s", c.Name)
	}
	f.rows = c.Len()
	f.columns[c.Name] = c
	f.order = append(f.order, c.Name)
	return nil
}

// Column returns the named column.
func (f *Frame) Column(name string) (*Column, error) {
	c, ok := f.columns[name]
	if !ok {
		return nil, fmt.Errorf("table %s: missing column %s", f.Table, name)
	}
	return c, nil
}

// Columns returns the column names in insertion order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}
