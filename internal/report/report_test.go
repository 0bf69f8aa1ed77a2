package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jekabolt/ecomm-insights/internal/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testViews() Views {
	jan := time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC)
	actual := 120.0
	return Views{
		Sales: &entity.SalesReport{
			Filter: entity.Filter{
				From: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
				To:   time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC),
			},
			TotalRevenue:    decimal.RequireFromString("1500.50"),
			TotalOrders:     10,
			AverageTicket:   decimal.RequireFromString("150.05"),
			UniqueCustomers: 9,
			MonthlyRevenue:  []entity.TimeSeriesPoint{{Date: jan, Value: decimal.RequireFromString("1500.50"), Count: 12}},
			TopCategories: []entity.CategoryMetric{
				{Category: "health_beauty", Label: "Beleza Saude", Value: decimal.RequireFromString("1000"), Count: 8},
				{Category: "bed_bath_table", Label: "Cama Mesa Banho", Value: decimal.RequireFromString("500.50"), Count: 4},
			},
			PaymentDistribution: []entity.PaymentMethodMetric{{PaymentType: "boleto", Label: "Boleto", Value: decimal.RequireFromString("1500.50"), Count: 10}},
			TopStates:           []entity.StateMetric{{State: "SP", Value: decimal.RequireFromString("1500.50"), Count: 12}},
		},
		Logistics: &entity.LogisticsReport{
			AvgDeliveryTime:  7.25,
			AvgEstimatedTime: 9.75,
			LatePercentage:   50,
			Deliveries:       4,
			StatusCounts:     []entity.StatusCount{{Label: "No prazo", Count: 2}, {Label: "Atrasado", Count: 2}},
			States:           []entity.StateDelivery{{State: "SP", AvgDeliveryTime: 7.25, LatePercentage: 50, Count: 4}},
		},
		Forecast: &entity.Forecast{
			HorizonMonths:    1,
			IntervalWidth:    0.8,
			DataQualityNotes: []string{"short history"},
			FittedAt:         time.Date(2023, 2, 1, 12, 0, 0, 0, time.UTC),
			Points: []entity.ForecastPoint{
				{Date: jan, Historical: true, Actual: &actual, DisplayActual: &actual, YHat: 110, DisplayYHat: 110, YHatLower: 90, YHatUpper: 130},
				{Date: jan.AddDate(0, 0, 1), YHat: 115, DisplayYHat: 115, YHatLower: 80, YHatUpper: 150},
			},
		},
	}
}

func TestWorkbookSheets(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, testViews()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		SheetKPI, SheetMonthly, SheetCategories, SheetPayments, SheetStates,
		SheetLogistics, SheetStatus, SheetForecast,
	}, f.GetSheetList())

	kpi, err := f.GetRows(SheetKPI)
	require.NoError(t, err)
	assert.Equal(t, []string{"Metric", "Value"}, kpi[0])
	assert.Equal(t, []string{"Period start", "2023-01-01"}, kpi[1])
	assert.Equal(t, []string{"Period end", "2023-01-31"}, kpi[2])
	assert.Equal(t, []string{"Total revenue", "1500.5"}, kpi[3])
	assert.Equal(t, []string{"Note", "short history"}, kpi[len(kpi)-1])

	cats, err := f.GetRows(SheetCategories)
	require.NoError(t, err)
	require.Len(t, cats, 3)
	assert.Equal(t, []string{"health_beauty", "Beleza Saude", "1000", "8"}, cats[1])

	fc, err := f.GetRows(SheetForecast)
	require.NoError(t, err)
	require.Len(t, fc, 3)
	assert.Equal(t, "2023-01-31", fc[1][0])
	assert.Equal(t, "120", fc[1][2])
	assert.Equal(t, "", fc[2][2])
}

func TestWorkbookSkipsMissingViews(t *testing.T) {
	f, err := Workbook(Views{Logistics: testViews().Logistics})
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{SheetKPI, SheetLogistics, SheetStatus}, f.GetSheetList())
}

func TestSaveOutputs(t *testing.T) {
	c := DefaultConfig()
	c.OutputDir = filepath.Join(t.TempDir(), "out")

	path, err := SaveWorkbook(c, "dashboard.xlsx", testViews())
	require.NoError(t, err)
	assert.FileExists(t, path)

	path, err = SaveForecastPNG(c, "forecast.png", testViews().Forecast)
	require.NoError(t, err)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("\x89PNG")))
}

func TestForecastChart(t *testing.T) {
	_, err := ForecastChart(&entity.Forecast{})
	assert.Error(t, err)

	fc := testViews().Forecast
	fc.DisplayCap = 100
	p, err := ForecastChart(fc)
	require.NoError(t, err)
	assert.Equal(t, "Revenue forecast, 1 months", p.Title.Text)
	assert.Equal(t, 100.0, capTo(fc.Points[1].YHatUpper, fc.DisplayCap))
	assert.Equal(t, 80.0, capTo(fc.Points[1].YHatLower, fc.DisplayCap))
}
