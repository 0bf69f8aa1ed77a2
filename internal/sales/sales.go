// Package sales aggregates revenue, orders and payments of a filtered dataset.
package sales

import (
	"context"
	"log/slog"
	"sort"

	"github.com/jekabolt/ecomm-insights/internal/dataset"
	"github.com/jekabolt/ecomm-insights/internal/entity"
	gerr "github.com/jekabolt/ecomm-insights/internal/errors"
	"github.com/jekabolt/ecomm-insights/internal/timeseries"
	"github.com/shopspring/decimal"
)

const defaultTopN = 10

type Config struct {
	TopN int `mapstructure:"top_n"`
}

func DefaultConfig() *Config {
	return &Config{TopN: defaultTopN}
}

// Aggregator computes the sales view. It never modifies the dataset.
type Aggregator struct {
	c *Config
}

func New(c *Config) *Aggregator {
	if c == nil {
		c = DefaultConfig()
	}
	if c.TopN <= 0 {
		c.TopN = defaultTopN
	}
	return &Aggregator{c: c}
}

type paymentKey struct {
	orderID string
	seq     int
}

// Report computes the sales KPIs and series for the records matching f.
// It returns gerr.ErrEmptyResult when nothing matches.
func (a *Aggregator) Report(ctx context.Context, ds *dataset.Dataset, f entity.Filter) (*entity.SalesReport, error) {
	m := ds.Matcher(f)

	var (
		revenue   = decimal.Zero
		orders    = make(map[string]struct{})
		customers = make(map[string]struct{})
		payments  = make(map[paymentKey]struct{})
		monthly   = timeseries.NewSum(entity.MetricsGranularityMonth)

		byCategory = make([]decimal.Decimal, ds.Categories.Len())
		catCount   = make([]int, ds.Categories.Len())
		byState    = make([]decimal.Decimal, ds.States.Len())
		stateCount = make([]int, ds.States.Len())
		byPayment  = make([]decimal.Decimal, ds.PaymentTypes.Len())
		payCount   = make([]int, ds.PaymentTypes.Len())
		matched    = 0
	)

	for i := range ds.Records {
		r := &ds.Records[i]
		if !m.Match(r) {
			continue
		}
		matched++

		revenue = revenue.Add(r.Price)
		orders[r.OrderID] = struct{}{}
		customers[r.CustomerUniqueID] = struct{}{}
		monthly.Add(r.PurchasedAt, r.Price)

		byCategory[r.Category] = byCategory[r.Category].Add(r.Price)
		catCount[r.Category]++
		byState[r.State] = byState[r.State].Add(r.Price)
		stateCount[r.State]++

		// one payment row shows up once per item of its order
		pk := paymentKey{orderID: r.OrderID, seq: r.PaymentSeq}
		if _, ok := payments[pk]; ok {
			continue
		}
		payments[pk] = struct{}{}
		byPayment[r.PaymentType] = byPayment[r.PaymentType].Add(r.PaymentValue)
		payCount[r.PaymentType]++
	}

	if matched == 0 {
		return nil, gerr.ErrEmptyResult
	}

	rep := &entity.SalesReport{
		Filter:          f,
		TotalRevenue:    revenue,
		TotalOrders:     len(orders),
		AverageTicket:   AverageTicket(revenue, len(orders)),
		UniqueCustomers: len(customers),
		MonthlyRevenue:  monthly.Points(),
	}

	tr := ds.Translator
	cats := make([]entity.CategoryMetric, ds.Categories.Len())
	for l := range cats {
		code := ds.Categories.Value(entity.Level(l))
		cats[l] = entity.CategoryMetric{
			Category: code,
			Label:    tr.CategoryLabel(code),
			Value:    zeroIfUnset(byCategory[l]),
			Count:    catCount[l],
		}
	}
	sort.SliceStable(cats, func(i, j int) bool {
		return cats[i].Value.GreaterThan(cats[j].Value)
	})
	rep.TopCategories = top(cats, a.c.TopN)

	states := make([]entity.StateMetric, ds.States.Len())
	for l := range states {
		states[l] = entity.StateMetric{
			State: ds.States.Value(entity.Level(l)),
			Value: zeroIfUnset(byState[l]),
			Count: stateCount[l],
		}
	}
	sort.SliceStable(states, func(i, j int) bool {
		return states[i].Value.GreaterThan(states[j].Value)
	})
	rep.TopStates = top(states, a.c.TopN)

	rep.PaymentDistribution = make([]entity.PaymentMethodMetric, ds.PaymentTypes.Len())
	for l := range rep.PaymentDistribution {
		pt := ds.PaymentTypes.Value(entity.Level(l))
		rep.PaymentDistribution[l] = entity.PaymentMethodMetric{
			PaymentType: pt,
			Label:       tr.PaymentLabel(pt),
			Value:       zeroIfUnset(byPayment[l]),
			Count:       payCount[l],
		}
	}

	slog.Default().DebugContext(ctx, "sales report",
		slog.Int("rows", matched),
		slog.Int("orders", rep.TotalOrders),
		slog.String("revenue", revenue.String()),
	)
	return rep, nil
}

// AverageTicket returns revenue / orders, zero when there are no orders.
func AverageTicket(revenue decimal.Decimal, orders int) decimal.Decimal {
	if orders == 0 {
		return decimal.Zero
	}
	return revenue.Div(decimal.NewFromInt(int64(orders)))
}

func zeroIfUnset(d decimal.Decimal) decimal.Decimal {
	if d.IsZero() {
		return decimal.Zero
	}
	return d
}

func top[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
