package forecast

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/jekabolt/ecomm-insights/internal/cache"
	"github.com/jekabolt/ecomm-insights/internal/dataset"
	"github.com/jekabolt/ecomm-insights/internal/dataset/datasettest"
	"github.com/jekabolt/ecomm-insights/internal/entity"
	gerr "github.com/jekabolt/ecomm-insights/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC)

// synthetic returns n days of revenue with a linear trend and a weekend peak.
func synthetic(n int, seed int64) []entity.DailyRevenue {
	rnd := rand.New(rand.NewSource(seed))
	out := make([]entity.DailyRevenue, n)
	for i := range out {
		d := start.AddDate(0, 0, i)
		v := 1000 + 2*float64(i) + rnd.NormFloat64()*20
		if d.Weekday() == time.Saturday {
			v += 300
		}
		out[i] = entity.DailyRevenue{Date: d, Value: v}
	}
	return out
}

func translator(t *testing.T) *cache.Translator {
	tr, err := cache.NewTranslator(nil)
	require.NoError(t, err)
	return tr
}

func engine(t *testing.T, mod func(c *Config)) *Engine {
	c := DefaultConfig()
	if mod != nil {
		mod(c)
	}
	e, err := New(c)
	require.NoError(t, err)
	return e
}

// history builds a dataset with one order per day for n days.
func history(t *testing.T, n int) *dataset.Dataset {
	b := datasettest.New()
	for i := 0; i < n; i++ {
		d := start.AddDate(0, 0, i)
		price := 100 + i%7*10
		b.Add(datasettest.Order{
			ID: fmt.Sprintf("o%d", i), Customer: fmt.Sprintf("c%d", i), UniqueID: fmt.Sprintf("u%d", i),
			State: "SP", Purchased: d.Add(13 * time.Hour).Format(time.DateTime),
			Items:    []datasettest.Item{{Product: "p1", Category: "beleza_saude", Price: fmt.Sprint(price)}},
			Payments: []datasettest.Payment{{Type: "boleto", Value: fmt.Sprint(price)}},
		})
	}
	return b.Load(t)
}

func TestDailySeriesSumsJoinedRows(t *testing.T) {
	b := datasettest.New()
	b.Add(datasettest.Order{
		ID: "o1", Customer: "c1", UniqueID: "u1",
		State: "SP", Purchased: start.Add(10 * time.Hour).Format(time.DateTime),
		Items: []datasettest.Item{
			{Product: "p1", Category: "beleza_saude", Price: "10"},
			{Product: "p2", Category: "beleza_saude", Price: "20"},
		},
		Payments: []datasettest.Payment{{Type: "boleto", Value: "15"}, {Type: "voucher", Value: "15"}},
	})
	b.Add(datasettest.Order{
		ID: "o2", Customer: "c2", UniqueID: "u2",
		State: "RJ", Purchased: start.AddDate(0, 0, 2).Format(time.DateTime),
		Items:    []datasettest.Item{{Product: "p3", Category: "beleza_saude", Price: "5"}},
		Payments: []datasettest.Payment{{Type: "boleto", Value: "5"}},
	})

	series := DailySeries(b.Load(t))
	require.Len(t, series, 3)
	// two items times two payment rows
	assert.InDelta(t, 60, series[0].Value, 1e-9)
	assert.Zero(t, series[1].Value)
	assert.InDelta(t, 5, series[2].Value, 1e-9)
}

func TestForecastIndexLength(t *testing.T) {
	ds := history(t, 400)
	series := DailySeries(ds)
	require.Len(t, series, 400)

	res, err := engine(t, nil).Forecast(context.Background(), ds, 1, nil)
	require.NoError(t, err)
	require.Len(t, res.Points, 430)
	assert.Len(t, res.Future(), 30)
	assert.Equal(t, 400, res.HistoryDays)
	assert.Equal(t, start, res.HistoryStart)
	assert.Equal(t, start.AddDate(0, 0, 399), res.HistoryEnd)
	assert.Equal(t, start.AddDate(0, 0, 429), res.Points[429].Date)

	for _, p := range res.Points {
		assert.LessOrEqual(t, p.YHatLower, p.YHat)
		assert.LessOrEqual(t, p.YHat, p.YHatUpper)
		assert.InDelta(t, p.YHat, p.Trend+p.Yearly+p.Weekly, 1e-6)
		if p.Historical {
			require.NotNil(t, p.Actual)
		} else {
			assert.Nil(t, p.Actual)
		}
	}
}

func TestForecastRecoversTrendAndWeekly(t *testing.T) {
	res, err := engine(t, nil).forecastSeries(context.Background(), synthetic(800, 1), translator(t), 3, nil)
	require.NoError(t, err)
	require.Len(t, res.Points, 800+90)
	assert.Empty(t, res.DataQualityNotes)

	// the fit follows the data closely
	var sse float64
	for _, p := range res.Points[:800] {
		sse += (p.YHat - *p.Actual) * (p.YHat - *p.Actual)
	}
	rmse := math.Sqrt(sse / 800)
	assert.Less(t, rmse, 60.0)

	require.Len(t, res.Weekly, 7)
	assert.Equal(t, "Domingo", res.Weekly[0].Label)
	assert.Equal(t, int(time.Saturday), res.Weekly[6].Key)
	for _, w := range res.Weekly[:6] {
		assert.Greater(t, res.Weekly[6].Value, w.Value)
	}

	require.Len(t, res.Yearly, 366)
	assert.Equal(t, 1, res.Yearly[0].Key)
	assert.Equal(t, "Jan 01", res.Yearly[0].Label)

	// upward trend continues and the band widens in the future
	future := res.Future()
	assert.Greater(t, future[len(future)-1].Trend, res.Points[0].Trend)
	first := res.Points[0].YHatUpper - res.Points[0].YHatLower
	lastW := future[len(future)-1].YHatUpper - future[len(future)-1].YHatLower
	assert.GreaterOrEqual(t, lastW, first)
}

func TestForecastHorizonValidation(t *testing.T) {
	e := engine(t, nil)
	ds := history(t, 40)
	for _, h := range []int{0, -1, 13} {
		_, err := e.Forecast(context.Background(), ds, h, nil)
		require.Error(t, err)
		assert.Equal(t, gerr.KindInvalid, gerr.KindOf(err), "horizon %d", h)
	}
}

func TestForecastShortHistory(t *testing.T) {
	_, err := engine(t, nil).forecastSeries(context.Background(), synthetic(20, 2), translator(t), 1, nil)
	require.Error(t, err)
	assert.Equal(t, gerr.KindPrecondition, gerr.KindOf(err))
}

func TestForecastYearlyCycleNote(t *testing.T) {
	res, err := engine(t, nil).forecastSeries(context.Background(), synthetic(400, 3), translator(t), 1, nil)
	require.NoError(t, err)
	require.Len(t, res.DataQualityNotes, 1)
	assert.Contains(t, res.DataQualityNotes[0], "400 days")

	strict := engine(t, func(c *Config) { c.RequireYearlyCycles = true })
	_, err = strict.forecastSeries(context.Background(), synthetic(400, 3), translator(t), 1, nil)
	require.Error(t, err)
	assert.Equal(t, gerr.KindPrecondition, gerr.KindOf(err))
}

func TestForecastDisplayCap(t *testing.T) {
	series := synthetic(100, 4)
	series[50].Value = 50000

	plain, err := engine(t, nil).forecastSeries(context.Background(), series, translator(t), 1, nil)
	require.NoError(t, err)
	capped, err := engine(t, func(c *Config) { c.DisplayCap = 2000 }).forecastSeries(context.Background(), series, translator(t), 1, nil)
	require.NoError(t, err)

	assert.Equal(t, 50000.0, *capped.Points[50].Actual)
	assert.Equal(t, 2000.0, *capped.Points[50].DisplayActual)
	assert.Equal(t, 50000.0, *plain.Points[50].DisplayActual)
	for i := range plain.Points {
		// the fit itself is unaffected
		assert.InDelta(t, plain.Points[i].YHat, capped.Points[i].YHat, 1e-9)
		assert.LessOrEqual(t, capped.Points[i].DisplayYHat, 2000.0)
	}
}

func TestForecastProgressStages(t *testing.T) {
	var stages []Stage
	_, err := engine(t, nil).Forecast(context.Background(), history(t, 60), 2, func(s Stage, _ float64) {
		stages = append(stages, s)
	})
	require.NoError(t, err)
	assert.Equal(t, []Stage{StageSeries, StageFit, StagePredict, StageComponents, StageDone}, stages)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	c := DefaultConfig()
	c.IntervalWidth = 1
	assert.Error(t, c.Validate())

	c = DefaultConfig()
	c.DisplayCap = -1
	assert.Error(t, c.Validate())

	_, err := New(c)
	assert.Error(t, err)
}

func TestChangepointTimes(t *testing.T) {
	ts := make([]float64, 100)
	for i := range ts {
		ts[i] = float64(i) / 99
	}
	cps := changepointTimes(ts, 25, 0.8)
	require.Len(t, cps, 25)
	assert.Greater(t, cps[0], 0.0)
	assert.LessOrEqual(t, cps[24], 0.8)
	for i := 1; i < len(cps); i++ {
		assert.Greater(t, cps[i], cps[i-1])
	}
	assert.Len(t, changepointTimes(ts[:10], 25, 0.8), 7)
	assert.Nil(t, changepointTimes(ts[:1], 25, 0.8))
}
