package entity

import "time"

// DeliveryStatus classifies a delivery against its estimate.
type DeliveryStatus string

const (
	DeliveryOnTime DeliveryStatus = "On-Time"
	DeliveryLate   DeliveryStatus = "Late"
)

// DeliveryRecord is the logistics view of one unified record.
// Durations are whole days.
type DeliveryRecord struct {
	OrderID       string
	State         Level
	PurchasedAt   time.Time
	DeliveryTime  int
	EstimatedTime int
	DeliveryDelay int
	Status        DeliveryStatus
}

// LogisticsReport contains the KPIs and chart series of the logistics view.
type LogisticsReport struct {
	Filter Filter

	AvgDeliveryTime  float64
	AvgEstimatedTime float64
	LatePercentage   float64
	Deliveries       int
	StatusCounts     []StatusCount

	MonthlyDeliveryTime []MeanPoint
	States              []StateDelivery
	TopSlowest          []StateDelivery
	TopDelayed          []StateDelivery
}

// StatusCount counts deliveries per status.
type StatusCount struct {
	Status DeliveryStatus
	Label  string
	Count  int
}

// MeanPoint is a monthly mean; Value is nil for months without deliveries.
type MeanPoint struct {
	Date  time.Time
	Value *float64
	Count int
}

// StateDelivery holds per-state delivery performance.
type StateDelivery struct {
	State           string
	AvgDeliveryTime float64
	LatePercentage  float64
	Count           int
}
