package metrics

import (
	"testing"
	"time"

	"github.com/jekabolt/ecomm-insights/internal/dataset"
	"github.com/jekabolt/ecomm-insights/internal/entity"
	"github.com/jekabolt/ecomm-insights/internal/source"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveLoad(t *testing.T) {
	r := NewRegistry()
	r.ObserveLoad(&dataset.LoadReport{
		TableRows:        map[source.Table]int{source.TableOrders: 10, source.TableItems: 12},
		Records:          11,
		DroppedTimestamp: 2,
		Took:             1500 * time.Millisecond,
	})
	assert.Equal(t, 1.5, testutil.ToFloat64(r.LoadDurationSec))
	assert.Equal(t, 10.0, testutil.ToFloat64(r.TableRows.WithLabelValues("orders")))
	assert.Equal(t, 11.0, testutil.ToFloat64(r.RecordsLoaded))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.RowsDropped))

	r.ObserveLoad(nil)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.LoadFailures))
}

func TestSetForecastState(t *testing.T) {
	r := NewRegistry()
	r.SetForecastState(entity.ForecastFitting)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ForecastState.WithLabelValues("fitting")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.ForecastState.WithLabelValues("idle")))

	r.SetForecastState(entity.ForecastReady)
	assert.Equal(t, 0.0, testutil.ToFloat64(r.ForecastState.WithLabelValues("fitting")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ForecastState.WithLabelValues("ready")))
}
