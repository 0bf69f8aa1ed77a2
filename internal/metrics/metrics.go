package metrics

import (
	"net/http"
	"time"

	"github.com/jekabolt/ecomm-insights/internal/dataset"
	"github.com/jekabolt/ecomm-insights/internal/entity"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var forecastStates = []entity.ForecastState{
	entity.ForecastIdle,
	entity.ForecastFitting,
	entity.ForecastReady,
}

type Registry struct {
	reg *prometheus.Registry

	// dataset
	LoadDurationSec prometheus.Gauge
	TableRows       *prometheus.GaugeVec
	RecordsLoaded   prometheus.Gauge
	RowsDropped     prometheus.Gauge
	LoadFailures    prometheus.Counter

	// views
	Requests      *prometheus.CounterVec
	EmptyResults  *prometheus.CounterVec
	FitDuration   prometheus.Histogram
	ForecastState *prometheus.GaugeVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	loadDuration := prometheus.NewGauge(prometheus.GaugeOpts{Name: "insights_dataset_load_seconds"})
	tableRows := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "insights_dataset_table_rows"}, []string{"table"})
	records := prometheus.NewGauge(prometheus.GaugeOpts{Name: "insights_dataset_records"})
	dropped := prometheus.NewGauge(prometheus.GaugeOpts{Name: "insights_dataset_rows_dropped"})
	loadFailures := prometheus.NewCounter(prometheus.CounterOpts{Name: "insights_dataset_load_failures_total"})

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "insights_view_requests_total"}, []string{"view"})
	empty := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "insights_view_empty_results_total"}, []string{"view"})
	fitDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "insights_forecast_fit_seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})
	state := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "insights_forecast_state"}, []string{"state"})

	r.MustRegister(loadDuration, tableRows, records, dropped, loadFailures, requests, empty, fitDuration, state)
	return &Registry{
		reg:             r,
		LoadDurationSec: loadDuration,
		TableRows:       tableRows,
		RecordsLoaded:   records,
		RowsDropped:     dropped,
		LoadFailures:    loadFailures,
		Requests:        requests,
		EmptyResults:    empty,
		FitDuration:     fitDuration,
		ForecastState:   state,
	}
}

// ObserveLoad records a dataset load. A nil report counts as a failure.
func (r *Registry) ObserveLoad(rep *dataset.LoadReport) {
	if rep == nil {
		r.LoadFailures.Inc()
		return
	}
	r.LoadDurationSec.Set(rep.Took.Seconds())
	for t, n := range rep.TableRows {
		r.TableRows.WithLabelValues(string(t)).Set(float64(n))
	}
	r.RecordsLoaded.Set(float64(rep.Records))
	r.RowsDropped.Set(float64(rep.DroppedTimestamp))
}

// ObserveFit records a finished fit.
func (r *Registry) ObserveFit(d time.Duration) {
	r.FitDuration.Observe(d.Seconds())
}

// SetForecastState flags the current forecast state with 1 and the others with 0.
func (r *Registry) SetForecastState(s entity.ForecastState) {
	for _, st := range forecastStates {
		v := 0.0
		if st == s {
			v = 1
		}
		r.ForecastState.WithLabelValues(string(st)).Set(v)
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
