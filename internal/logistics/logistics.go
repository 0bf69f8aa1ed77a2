// Package logistics derives delivery durations, delays and on-time status.
package logistics

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/jekabolt/ecomm-insights/internal/dataset"
	"github.com/jekabolt/ecomm-insights/internal/entity"
	gerr "github.com/jekabolt/ecomm-insights/internal/errors"
	"github.com/jekabolt/ecomm-insights/internal/timeseries"
)

const (
	defaultTopN = 10
	day         = 24 * time.Hour
)

type Config struct {
	TopN int `mapstructure:"top_n"`
}

func DefaultConfig() *Config {
	return &Config{TopN: defaultTopN}
}

// Deriver computes the logistics view on its own copy of the matching rows.
type Deriver struct {
	c *Config
}

func New(c *Config) *Deriver {
	if c == nil {
		c = DefaultConfig()
	}
	if c.TopN <= 0 {
		c.TopN = defaultTopN
	}
	return &Deriver{c: c}
}

// Days returns the whole days between from and to, rounded down.
func Days(from, to time.Time) int {
	d := to.Sub(from)
	n := int(d / day)
	if d%day < 0 {
		n--
	}
	return n
}

// Derive computes the delivery fields of r. ok is false when a date is
// missing or the delivery precedes the purchase.
func Derive(r *entity.OrderRecord) (entity.DeliveryRecord, bool) {
	if !r.HasDeliveryDates() {
		return entity.DeliveryRecord{}, false
	}
	d := entity.DeliveryRecord{
		OrderID:       r.OrderID,
		State:         r.State,
		PurchasedAt:   r.PurchasedAt,
		DeliveryTime:  Days(r.PurchasedAt, r.DeliveredAt),
		EstimatedTime: Days(r.PurchasedAt, r.EstimatedAt),
		DeliveryDelay: Days(r.EstimatedAt, r.DeliveredAt),
		Status:        entity.DeliveryOnTime,
	}
	if d.DeliveryDelay > 0 {
		d.Status = entity.DeliveryLate
	}
	if d.DeliveryTime < 0 {
		return entity.DeliveryRecord{}, false
	}
	return d, true
}

// Deliveries returns the derived rows of the records matching f.
func (dv *Deriver) Deliveries(ds *dataset.Dataset, f entity.Filter) []entity.DeliveryRecord {
	m := ds.Matcher(f)
	out := make([]entity.DeliveryRecord, 0, len(ds.Records)/2)
	for i := range ds.Records {
		r := &ds.Records[i]
		if !m.Match(r) {
			continue
		}
		if d, ok := Derive(r); ok {
			out = append(out, d)
		}
	}
	return out
}

type stateAcc struct {
	days  int
	late  int
	count int
}

// Report computes the logistics KPIs and series for the records matching f.
// It returns gerr.ErrEmptyResult when no delivery survives.
func (dv *Deriver) Report(ctx context.Context, ds *dataset.Dataset, f entity.Filter) (*entity.LogisticsReport, error) {
	rows := dv.Deliveries(ds, f)
	if len(rows) == 0 {
		return nil, gerr.ErrEmptyResult
	}

	var deliverySum, estimatedSum, late int
	monthly := timeseries.NewMean(entity.MetricsGranularityMonth)
	byState := make([]stateAcc, ds.States.Len())
	for _, d := range rows {
		deliverySum += d.DeliveryTime
		estimatedSum += d.EstimatedTime
		monthly.Add(d.PurchasedAt, float64(d.DeliveryTime))

		acc := &byState[d.State]
		acc.days += d.DeliveryTime
		acc.count++
		if d.Status == entity.DeliveryLate {
			late++
			acc.late++
		}
	}

	n := float64(len(rows))
	tr := ds.Translator
	rep := &entity.LogisticsReport{
		Filter:              f,
		AvgDeliveryTime:     float64(deliverySum) / n,
		AvgEstimatedTime:    float64(estimatedSum) / n,
		LatePercentage:      float64(late) / n * 100,
		Deliveries:          len(rows),
		MonthlyDeliveryTime: monthly.Points(),
		StatusCounts: []entity.StatusCount{
			{Status: entity.DeliveryOnTime, Label: tr.DeliveryStatusLabel(entity.DeliveryOnTime), Count: len(rows) - late},
			{Status: entity.DeliveryLate, Label: tr.DeliveryStatusLabel(entity.DeliveryLate), Count: late},
		},
	}

	for l, acc := range byState {
		if acc.count == 0 {
			continue
		}
		rep.States = append(rep.States, entity.StateDelivery{
			State:           ds.States.Value(entity.Level(l)),
			AvgDeliveryTime: float64(acc.days) / float64(acc.count),
			LatePercentage:  float64(acc.late) / float64(acc.count) * 100,
			Count:           acc.count,
		})
	}
	rep.TopSlowest = TopSlowest(rep.States, dv.c.TopN)
	rep.TopDelayed = TopDelayed(rep.States, dv.c.TopN)

	slog.Default().DebugContext(ctx, "logistics report",
		slog.Int("deliveries", rep.Deliveries),
		slog.Float64("late_pct", rep.LatePercentage),
	)
	return rep, nil
}

// TopSlowest ranks states by mean delivery time, slowest first. Ties keep the
// order of states, which is sorted by code.
func TopSlowest(states []entity.StateDelivery, n int) []entity.StateDelivery {
	return rank(states, n, func(a, b entity.StateDelivery) bool {
		return a.AvgDeliveryTime > b.AvgDeliveryTime
	})
}

// TopDelayed ranks states by late percentage, highest first.
func TopDelayed(states []entity.StateDelivery, n int) []entity.StateDelivery {
	return rank(states, n, func(a, b entity.StateDelivery) bool {
		return a.LatePercentage > b.LatePercentage
	})
}

func rank(states []entity.StateDelivery, n int, less func(a, b entity.StateDelivery) bool) []entity.StateDelivery {
	out := make([]entity.StateDelivery, len(states))
	copy(out, states)
	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i], out[j])
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
