package entity

import "time"

// ForecastState is the lifecycle state of a session forecast.
type ForecastState string

const (
	ForecastIdle    ForecastState = "idle"
	ForecastFitting ForecastState = "fitting"
	ForecastReady   ForecastState = "ready"
)

// DailyRevenue is one day of the forecast input series.
type DailyRevenue struct {
	Date  time.Time
	Value float64
}

// ForecastPoint is the prediction for one date of the extended index.
type ForecastPoint struct {
	Date       time.Time
	Historical bool

	// Actual is set for historical dates only.
	Actual    *float64
	YHat      float64
	YHatLower float64
	YHatUpper float64
	Trend     float64
	Yearly    float64
	Weekly    float64

	// DisplayActual and DisplayYHat equal Actual and YHat unless a display cap applies.
	DisplayActual *float64
	DisplayYHat   float64
}

// SeasonalityPoint is one sample of a seasonal component.
type SeasonalityPoint struct {
	// Key is the day of year (1..366) for yearly, the weekday for weekly.
	Key   int
	Label string
	Value float64
}

// Forecast is the result bundle of one fit.
type Forecast struct {
	HorizonMonths    int
	HistoryStart     time.Time
	HistoryEnd       time.Time
	HistoryDays      int
	Points           []ForecastPoint
	Yearly           []SeasonalityPoint
	Weekly           []SeasonalityPoint
	IntervalWidth    float64
	ResidualStdDev   float64
	DisplayCap       float64
	DataQualityNotes []string
	FittedAt         time.Time
	FitDuration      time.Duration
}

// Future returns the points after the last historical day.
func (f *Forecast) Future() []ForecastPoint {
	for i, p := range f.Points {
		if !p.Historical {
			return f.Points[i:]
		}
	}
	return nil
}
