// Package forecast fits an additive trend and seasonality model to the daily
// revenue series and projects it forward.
package forecast

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/jekabolt/ecomm-insights/internal/dataset"
	"github.com/jekabolt/ecomm-insights/internal/dependency"
	"github.com/jekabolt/ecomm-insights/internal/entity"
	gerr "github.com/jekabolt/ecomm-insights/internal/errors"
	"github.com/jekabolt/ecomm-insights/internal/timeseries"
)

const (
	daysPerMonth     = 30
	yearlyCycleDays  = 365
	minYearlyCycles  = 2
	daysInLeapYear   = 366
	shortHistoryNote = "history covers %d days, less than %d yearly cycles (%d days); yearly seasonality is unreliable"
)

// Stage identifies a step of a forecast run.
type Stage string

const (
	StageSeries     Stage = "series"
	StageFit        Stage = "fit"
	StagePredict    Stage = "predict"
	StageComponents Stage = "components"
	StageDone       Stage = "done"
)

// ProgressFunc receives the stage being entered and the share of work done.
type ProgressFunc func(stage Stage, done float64)

// Engine fits and projects the revenue series.
type Engine struct {
	c *Config
}

func New(c *Config) (*Engine, error) {
	if c == nil {
		c = DefaultConfig()
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid forecast config: %w", err)
	}
	return &Engine{c: c}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return *e.c
}

// ValidateHorizon reports an invalid horizon before any work is done.
func (e *Engine) ValidateHorizon(months int) error {
	if months < 1 || months > e.c.MaxHorizonMonths {
		return gerr.New(gerr.KindInvalid, fmt.Sprintf("horizon must be between 1 and %d months, got %d", e.c.MaxHorizonMonths, months))
	}
	return nil
}

// DailySeries resamples the price of every record to calendar-day sums from
// the first to the last purchase day. Days without sales are zero.
func DailySeries(ds *dataset.Dataset) []entity.DailyRevenue {
	ts := make([]time.Time, len(ds.Records))
	vs := make([]float64, len(ds.Records))
	for i := range ds.Records {
		ts[i] = ds.Records[i].PurchasedAt
		vs[i] = ds.Records[i].Price.InexactFloat64()
	}
	return timeseries.Daily(ts, vs)
}

// Forecast fits the model on the full dataset and predicts horizonMonths*30
// days past the last historical day.
func (e *Engine) Forecast(ctx context.Context, ds *dataset.Dataset, horizonMonths int, progress ProgressFunc) (*entity.Forecast, error) {
	if err := e.ValidateHorizon(horizonMonths); err != nil {
		return nil, err
	}
	if progress != nil {
		progress(StageSeries, 0)
	}
	series := DailySeries(ds)
	return e.forecastSeries(ctx, series, ds.Translator, horizonMonths, progress)
}

func (e *Engine) forecastSeries(ctx context.Context, series []entity.DailyRevenue, tr dependency.Translator, horizonMonths int, progress ProgressFunc) (*entity.Forecast, error) {
	start := time.Now()
	if progress == nil {
		progress = func(Stage, float64) {}
	}
	if err := e.ValidateHorizon(horizonMonths); err != nil {
		return nil, err
	}
	if len(series) < e.c.MinHistoryDays {
		return nil, gerr.New(gerr.KindPrecondition, fmt.Sprintf("history covers %d days, at least %d are required", len(series), e.c.MinHistoryDays))
	}

	var notes []string
	if need := minYearlyCycles * yearlyCycleDays; len(series) < need {
		note := fmt.Sprintf(shortHistoryNote, len(series), minYearlyCycles, need)
		if e.c.RequireYearlyCycles {
			return nil, gerr.New(gerr.KindPrecondition, note)
		}
		notes = append(notes, note)
	}

	dates := make([]time.Time, len(series))
	ys := make([]float64, len(series))
	for i, p := range series {
		dates[i] = p.Date
		ys[i] = p.Value
	}

	progress(StageFit, 0.25)
	md, err := fit(dates, ys, e.c)
	if err != nil {
		return nil, gerr.Wrap(gerr.KindPrecondition, "forecast fit failed", err)
	}

	progress(StagePredict, 0.5)
	last := dates[len(dates)-1]
	future := horizonMonths * daysPerMonth
	points := make([]entity.ForecastPoint, 0, len(series)+future)
	weeklySum := [7]float64{}
	weeklyCnt := [7]int{}
	for i := 0; i < len(series)+future; i++ {
		d := dates[0].AddDate(0, 0, i)
		c := md.predict(d)
		yhat := c.yhat()
		hw := md.halfWidth(d)
		p := entity.ForecastPoint{
			Date:        d,
			Historical:  !d.After(last),
			YHat:        yhat,
			YHatLower:   yhat - hw,
			YHatUpper:   yhat + hw,
			Trend:       c.trend,
			Yearly:      c.yearly,
			Weekly:      c.weekly,
			DisplayYHat: e.capped(yhat),
		}
		if p.Historical {
			actual := ys[i]
			display := e.capped(actual)
			p.Actual = &actual
			p.DisplayActual = &display
		}
		weeklySum[d.Weekday()] += c.weekly
		weeklyCnt[d.Weekday()]++
		points = append(points, p)
	}

	progress(StageComponents, 0.75)
	res := &entity.Forecast{
		HorizonMonths:    horizonMonths,
		HistoryStart:     dates[0],
		HistoryEnd:       last,
		HistoryDays:      len(series),
		Points:           points,
		Yearly:           make([]entity.SeasonalityPoint, 0, daysInLeapYear),
		Weekly:           make([]entity.SeasonalityPoint, 0, 7),
		IntervalWidth:    e.c.IntervalWidth,
		ResidualStdDev:   md.sigma,
		DisplayCap:       e.c.DisplayCap,
		DataQualityNotes: notes,
		FittedAt:         time.Now().UTC(),
	}
	for doy := 1; doy <= daysInLeapYear; doy++ {
		res.Yearly = append(res.Yearly, entity.SeasonalityPoint{
			Key:   doy,
			Label: time.Date(2020, 1, doy, 0, 0, 0, 0, time.UTC).Format("Jan 02"),
			Value: md.yearlyAt(doy),
		})
	}
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		var v float64
		if weeklyCnt[wd] > 0 {
			v = weeklySum[wd] / float64(weeklyCnt[wd])
		}
		res.Weekly = append(res.Weekly, entity.SeasonalityPoint{
			Key:   int(wd),
			Label: tr.WeekdayLabel(wd),
			Value: v,
		})
	}
	res.FitDuration = time.Since(start)
	progress(StageDone, 1)

	slog.Default().InfoContext(ctx, "forecast fitted",
		slog.Int("horizon_months", horizonMonths),
		slog.Int("history_days", res.HistoryDays),
		slog.Int("points", len(res.Points)),
		slog.Float64("sigma", res.ResidualStdDev),
		slog.Duration("took", res.FitDuration),
	)
	return res, nil
}

func (e *Engine) capped(v float64) float64 {
	if e.c.DisplayCap > 0 {
		return math.Min(v, e.c.DisplayCap)
	}
	return v
}
