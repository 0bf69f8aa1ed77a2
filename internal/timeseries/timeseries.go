// Package timeseries buckets timestamps into calendar periods and fills gaps
// so charts and models see a continuous index.
package timeseries

import (
	"time"

	"github.com/jekabolt/ecomm-insights/internal/entity"
	"github.com/shopspring/decimal"
)

const dateKey = "2006-01-02"

// BucketStart truncates t to the start of its bucket.
func BucketStart(t time.Time, g entity.MetricsGranularity) time.Time {
	loc := t.Location()
	switch g {
	case entity.MetricsGranularityWeek:
		// Monday 00:00
		weekday := int(t.Weekday())
		daysBack := (weekday + 6) % 7
		return time.Date(t.Year(), t.Month(), t.Day()-daysBack, 0, 0, 0, 0, loc)
	case entity.MetricsGranularityMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	}
}

// BucketNext returns the start of the bucket following the one starting at t.
func BucketNext(t time.Time, g entity.MetricsGranularity) time.Time {
	switch g {
	case entity.MetricsGranularityWeek:
		return t.AddDate(0, 0, 7)
	case entity.MetricsGranularityMonth:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

// BucketLabel returns the date a bucket is reported under. Month buckets are
// labelled with their last day, other buckets with their start.
func BucketLabel(start time.Time, g entity.MetricsGranularity) time.Time {
	if g == entity.MetricsGranularityMonth {
		return start.AddDate(0, 1, -1)
	}
	return start
}

// Buckets lists the bucket starts covering [from, to], both ends included.
func Buckets(from, to time.Time, g entity.MetricsGranularity) []time.Time {
	var out []time.Time
	cur := BucketStart(from, g)
	end := BucketStart(to, g)
	for !cur.After(end) {
		out = append(out, cur)
		cur = BucketNext(cur, g)
	}
	return out
}

// Sum accumulates decimal values per bucket.
type Sum struct {
	g      entity.MetricsGranularity
	points map[string]*entity.TimeSeriesPoint
	first  time.Time
	last   time.Time
}

func NewSum(g entity.MetricsGranularity) *Sum {
	return &Sum{
		g:      g,
		points: make(map[string]*entity.TimeSeriesPoint),
	}
}

// Add adds v at time t.
func (s *Sum) Add(t time.Time, v decimal.Decimal) {
	start := BucketStart(t, s.g)
	key := start.Format(dateKey)
	p, ok := s.points[key]
	if !ok {
		p = &entity.TimeSeriesPoint{Date: BucketLabel(start, s.g), Value: decimal.Zero}
		s.points[key] = p
	}
	p.Value = p.Value.Add(v)
	p.Count++
	if s.first.IsZero() || start.Before(s.first) {
		s.first = start
	}
	if start.After(s.last) {
		s.last = start
	}
}

// Points returns the buckets between the first and last observation with
// missing buckets filled with zeros.
func (s *Sum) Points() []entity.TimeSeriesPoint {
	if len(s.points) == 0 {
		return nil
	}
	return FillGaps(s.points, s.first, s.last, s.g)
}

// FillGaps ensures continuous date range for charts; fills missing buckets with zeros.
func FillGaps(points map[string]*entity.TimeSeriesPoint, from, to time.Time, g entity.MetricsGranularity) []entity.TimeSeriesPoint {
	var result []entity.TimeSeriesPoint
	for _, cur := range Buckets(from, to, g) {
		if p, ok := points[cur.Format(dateKey)]; ok {
			result = append(result, *p)
			continue
		}
		result = append(result, entity.TimeSeriesPoint{Date: BucketLabel(cur, g), Value: decimal.Zero})
	}
	return result
}

// Mean accumulates float means per bucket.
type Mean struct {
	g     entity.MetricsGranularity
	sums  map[string]float64
	cnt   map[string]int
	first time.Time
	last  time.Time
}

func NewMean(g entity.MetricsGranularity) *Mean {
	return &Mean{
		g:    g,
		sums: make(map[string]float64),
		cnt:  make(map[string]int),
	}
}

func (m *Mean) Add(t time.Time, v float64) {
	start := BucketStart(t, m.g)
	key := start.Format(dateKey)
	m.sums[key] += v
	m.cnt[key]++
	if m.first.IsZero() || start.Before(m.first) {
		m.first = start
	}
	if start.After(m.last) {
		m.last = start
	}
}

// Points returns one point per bucket between the first and last observation.
// Buckets without observations carry a nil Value.
func (m *Mean) Points() []entity.MeanPoint {
	if len(m.cnt) == 0 {
		return nil
	}
	var out []entity.MeanPoint
	for _, cur := range Buckets(m.first, m.last, m.g) {
		key := cur.Format(dateKey)
		p := entity.MeanPoint{Date: BucketLabel(cur, m.g)}
		if n := m.cnt[key]; n > 0 {
			v := m.sums[key] / float64(n)
			p.Value = &v
			p.Count = n
		}
		out = append(out, p)
	}
	return out
}

// Daily returns calendar-day sums of values from the first to the last day of
// ts, zero-filled. ts and vs must have the same length.
func Daily(ts []time.Time, vs []float64) []entity.DailyRevenue {
	if len(ts) == 0 {
		return nil
	}
	sums := make(map[string]float64, len(ts))
	var first, last time.Time
	for i, t := range ts {
		d := BucketStart(t, entity.MetricsGranularityDay)
		sums[d.Format(dateKey)] += vs[i]
		if first.IsZero() || d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}
	days := Buckets(first, last, entity.MetricsGranularityDay)
	out := make([]entity.DailyRevenue, len(days))
	for i, d := range days {
		out[i] = entity.DailyRevenue{Date: d, Value: sums[d.Format(dateKey)]}
	}
	return out
}
