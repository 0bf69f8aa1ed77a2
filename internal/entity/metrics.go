package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesReport contains the KPIs and chart series of the sales view.
type SalesReport struct {
	Filter Filter

	// Core sales
	TotalRevenue    decimal.Decimal
	TotalOrders     int
	AverageTicket   decimal.Decimal
	UniqueCustomers int

	MonthlyRevenue      []TimeSeriesPoint
	TopCategories       []CategoryMetric
	PaymentDistribution []PaymentMethodMetric
	TopStates           []StateMetric
}

// MetricsGranularity controls time bucket size for time series (day, week, month).
type MetricsGranularity int

const (
	MetricsGranularityDay   MetricsGranularity = 1
	MetricsGranularityWeek  MetricsGranularity = 2
	MetricsGranularityMonth MetricsGranularity = 3
)

// TimeSeriesPoint is one bucket of a resampled series. Month buckets are labelled
// with the last day of the month.
type TimeSeriesPoint struct {
	Date  time.Time
	Value decimal.Decimal
	Count int
}

// CategoryMetric aggregates revenue by product category.
type CategoryMetric struct {
	Category string
	Label    string
	Value    decimal.Decimal
	Count    int
}

// PaymentMethodMetric aggregates payment value by payment type (credit card, boleto, etc.)
type PaymentMethodMetric struct {
	PaymentType string
	Label       string
	Value       decimal.Decimal
	Count       int
}

// StateMetric aggregates revenue by customer state.
type StateMetric struct {
	State string
	Value decimal.Decimal
	Count int
}
