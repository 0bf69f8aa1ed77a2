package dto

import (
	"time"

	"github.com/jekabolt/ecomm-insights/internal/entity"
	"github.com/jekabolt/ecomm-insights/internal/forecast"
)

const dateLayout = time.DateOnly

type FilterOptions struct {
	MinDate    string           `json:"minDate"`
	MaxDate    string           `json:"maxDate"`
	States     []string         `json:"states"`
	Categories []CategoryOption `json:"categories"`
}

type CategoryOption struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

func ConvertFilterOptions(o entity.FilterOptions) *FilterOptions {
	out := &FilterOptions{
		MinDate:    o.MinDate.Format(dateLayout),
		MaxDate:    o.MaxDate.Format(dateLayout),
		States:     o.States,
		Categories: make([]CategoryOption, 0, len(o.Categories)),
	}
	for _, c := range o.Categories {
		out.Categories = append(out.Categories, CategoryOption{Code: c.Code, Label: c.Label})
	}
	return out
}

type Filter struct {
	From       string   `json:"from"`
	To         string   `json:"to"`
	States     []string `json:"states"`
	Categories []string `json:"categories"`
}

func convertFilter(f entity.Filter) Filter {
	return Filter{
		From:       f.From.Format(dateLayout),
		To:         f.To.Format(dateLayout),
		States:     f.States,
		Categories: f.Categories,
	}
}

type TimeSeriesPoint struct {
	Date  string `json:"date"`
	Value string `json:"value"`
	Count int    `json:"count"`
}

type LabeledValue struct {
	Code  string `json:"code"`
	Label string `json:"label"`
	Value string `json:"value"`
	Count int    `json:"count"`
}

type SalesReport struct {
	Filter              Filter            `json:"filter"`
	TotalRevenue        string            `json:"totalRevenue"`
	TotalOrders         int               `json:"totalOrders"`
	AverageTicket       string            `json:"averageTicket"`
	UniqueCustomers     int               `json:"uniqueCustomers"`
	MonthlyRevenue      []TimeSeriesPoint `json:"monthlyRevenue"`
	TopCategories       []LabeledValue    `json:"topCategories"`
	PaymentDistribution []LabeledValue    `json:"paymentDistribution"`
	TopStates           []LabeledValue    `json:"topStates"`
}

func ConvertSalesReport(r *entity.SalesReport) *SalesReport {
	if r == nil {
		return nil
	}
	out := &SalesReport{
		Filter:          convertFilter(r.Filter),
		TotalRevenue:    r.TotalRevenue.StringFixed(2),
		TotalOrders:     r.TotalOrders,
		AverageTicket:   r.AverageTicket.StringFixed(2),
		UniqueCustomers: r.UniqueCustomers,
	}
	for _, p := range r.MonthlyRevenue {
		out.MonthlyRevenue = append(out.MonthlyRevenue, TimeSeriesPoint{
			Date:  p.Date.Format(dateLayout),
			Value: p.Value.StringFixed(2),
			Count: p.Count,
		})
	}
	for _, c := range r.TopCategories {
		out.TopCategories = append(out.TopCategories, LabeledValue{Code: c.Category, Label: c.Label, Value: c.Value.StringFixed(2), Count: c.Count})
	}
	for _, p := range r.PaymentDistribution {
		out.PaymentDistribution = append(out.PaymentDistribution, LabeledValue{Code: p.PaymentType, Label: p.Label, Value: p.Value.StringFixed(2), Count: p.Count})
	}
	for _, s := range r.TopStates {
		out.TopStates = append(out.TopStates, LabeledValue{Code: s.State, Label: s.State, Value: s.Value.StringFixed(2), Count: s.Count})
	}
	return out
}

type MeanPoint struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
	Count int      `json:"count"`
}

type StateDelivery struct {
	State           string  `json:"state"`
	AvgDeliveryTime float64 `json:"avgDeliveryTime"`
	LatePercentage  float64 `json:"latePercentage"`
	Count           int     `json:"count"`
}

type StatusCount struct {
	Status string `json:"status"`
	Label  string `json:"label"`
	Count  int    `json:"count"`
}

type LogisticsReport struct {
	Filter              Filter          `json:"filter"`
	AvgDeliveryTime     float64         `json:"avgDeliveryTime"`
	AvgEstimatedTime    float64         `json:"avgEstimatedTime"`
	LatePercentage      float64         `json:"latePercentage"`
	Deliveries          int             `json:"deliveries"`
	StatusCounts        []StatusCount   `json:"statusCounts"`
	MonthlyDeliveryTime []MeanPoint     `json:"monthlyDeliveryTime"`
	TopSlowest          []StateDelivery `json:"topSlowest"`
	TopDelayed          []StateDelivery `json:"topDelayed"`
}

func ConvertLogisticsReport(r *entity.LogisticsReport) *LogisticsReport {
	if r == nil {
		return nil
	}
	out := &LogisticsReport{
		Filter:           convertFilter(r.Filter),
		AvgDeliveryTime:  r.AvgDeliveryTime,
		AvgEstimatedTime: r.AvgEstimatedTime,
		LatePercentage:   r.LatePercentage,
		Deliveries:       r.Deliveries,
		TopSlowest:       convertStates(r.TopSlowest),
		TopDelayed:       convertStates(r.TopDelayed),
	}
	for _, s := range r.StatusCounts {
		out.StatusCounts = append(out.StatusCounts, StatusCount{Status: string(s.Status), Label: s.Label, Count: s.Count})
	}
	for _, p := range r.MonthlyDeliveryTime {
		out.MonthlyDeliveryTime = append(out.MonthlyDeliveryTime, MeanPoint{Date: p.Date.Format(dateLayout), Value: p.Value, Count: p.Count})
	}
	return out
}

func convertStates(ss []entity.StateDelivery) []StateDelivery {
	out := make([]StateDelivery, 0, len(ss))
	for _, s := range ss {
		out = append(out, StateDelivery{
			State:           s.State,
			AvgDeliveryTime: s.AvgDeliveryTime,
			LatePercentage:  s.LatePercentage,
			Count:           s.Count,
		})
	}
	return out
}

type ForecastPoint struct {
	Date          string   `json:"date"`
	Historical    bool     `json:"historical"`
	Actual        *float64 `json:"actual,omitempty"`
	YHat          float64  `json:"yhat"`
	YHatLower     float64  `json:"yhatLower"`
	YHatUpper     float64  `json:"yhatUpper"`
	Trend         float64  `json:"trend"`
	Yearly        float64  `json:"yearly"`
	Weekly        float64  `json:"weekly"`
	DisplayActual *float64 `json:"displayActual,omitempty"`
	DisplayYHat   float64  `json:"displayYhat"`
}

type SeasonalityPoint struct {
	Key   int     `json:"key"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type Forecast struct {
	HorizonMonths    int                `json:"horizonMonths"`
	HistoryStart     string             `json:"historyStart"`
	HistoryEnd       string             `json:"historyEnd"`
	HistoryDays      int                `json:"historyDays"`
	IntervalWidth    float64            `json:"intervalWidth"`
	ResidualStdDev   float64            `json:"residualStdDev"`
	DisplayCap       float64            `json:"displayCap,omitempty"`
	DataQualityNotes []string           `json:"dataQualityNotes,omitempty"`
	FittedAt         time.Time          `json:"fittedAt"`
	FitDurationMs    int64              `json:"fitDurationMs"`
	Points           []ForecastPoint    `json:"points"`
	Yearly           []SeasonalityPoint `json:"yearly"`
	Weekly           []SeasonalityPoint `json:"weekly"`
}

func ConvertForecast(f *entity.Forecast) *Forecast {
	if f == nil {
		return nil
	}
	out := &Forecast{
		HorizonMonths:    f.HorizonMonths,
		HistoryStart:     f.HistoryStart.Format(dateLayout),
		HistoryEnd:       f.HistoryEnd.Format(dateLayout),
		HistoryDays:      f.HistoryDays,
		IntervalWidth:    f.IntervalWidth,
		ResidualStdDev:   f.ResidualStdDev,
		DisplayCap:       f.DisplayCap,
		DataQualityNotes: f.DataQualityNotes,
		FittedAt:         f.FittedAt,
		FitDurationMs:    f.FitDuration.Milliseconds(),
		Points:           make([]ForecastPoint, 0, len(f.Points)),
		Yearly:           convertSeasonality(f.Yearly),
		Weekly:           convertSeasonality(f.Weekly),
	}
	for _, p := range f.Points {
		out.Points = append(out.Points, ForecastPoint{
			Date:          p.Date.Format(dateLayout),
			Historical:    p.Historical,
			Actual:        p.Actual,
			YHat:          p.YHat,
			YHatLower:     p.YHatLower,
			YHatUpper:     p.YHatUpper,
			Trend:         p.Trend,
			Yearly:        p.Yearly,
			Weekly:        p.Weekly,
			DisplayActual: p.DisplayActual,
			DisplayYHat:   p.DisplayYHat,
		})
	}
	return out
}

func convertSeasonality(ps []entity.SeasonalityPoint) []SeasonalityPoint {
	out := make([]SeasonalityPoint, 0, len(ps))
	for _, p := range ps {
		out = append(out, SeasonalityPoint{Key: p.Key, Label: p.Label, Value: p.Value})
	}
	return out
}

type ForecastStatus struct {
	State         string    `json:"state"`
	HorizonMonths int       `json:"horizonMonths,omitempty"`
	Stage         string    `json:"stage,omitempty"`
	Progress      float64   `json:"progress"`
	StartedAt     time.Time `json:"startedAt,omitempty"`
	LastError     string    `json:"lastError,omitempty"`
}

func ConvertForecastStatus(s forecast.Status) *ForecastStatus {
	return &ForecastStatus{
		State:         string(s.State),
		HorizonMonths: s.HorizonMonths,
		Stage:         string(s.Stage),
		Progress:      s.Progress,
		StartedAt:     s.StartedAt,
		LastError:     s.LastError,
	}
}
