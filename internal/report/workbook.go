// Package report renders dashboard views to files: an xlsx workbook with one
// sheet per view and a png chart of the forecast.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jekabolt/ecomm-insights/internal/entity"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	SheetKPI        = "KPI"
	SheetMonthly    = "Monthly"
	SheetCategories = "Categories"
	SheetPayments   = "Payments"
	SheetStates     = "States"
	SheetLogistics  = "Logistics"
	SheetStatus     = "Delivery Status"
	SheetForecast   = "Forecast"
)

// Config configures report outputs.
type Config struct {
	OutputDir   string  `mapstructure:"output_dir"`
	ChartWidth  float64 `mapstructure:"chart_width_cm"`
	ChartHeight float64 `mapstructure:"chart_height_cm"`
}

func DefaultConfig() *Config {
	return &Config{
		OutputDir:   ".",
		ChartWidth:  30,
		ChartHeight: 15,
	}
}

// Views are the computed dashboard views to export. Nil views are skipped.
type Views struct {
	Sales     *entity.SalesReport
	Logistics *entity.LogisticsReport
	Forecast  *entity.Forecast
}

// Workbook builds an xlsx file from v. The caller closes the file.
func Workbook(v Views) (*excelize.File, error) {
	f := excelize.NewFile()
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}
	w := &sheetWriter{f: f, header: bold}

	if err := f.SetSheetName("Sheet1", SheetKPI); err != nil {
		f.Close()
		return nil, err
	}
	w.kpi(v)
	if v.Sales != nil {
		w.sales(v.Sales)
	}
	if v.Logistics != nil {
		w.logistics(v.Logistics)
	}
	if v.Forecast != nil {
		w.forecast(v.Forecast)
	}
	if w.err != nil {
		f.Close()
		return nil, w.err
	}
	return f, nil
}

// WriteWorkbook writes the workbook of v to out.
func WriteWorkbook(out io.Writer, v Views) error {
	f, err := Workbook(v)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteTo(out)
	return err
}

// SaveWorkbook writes the workbook of v to name under c.OutputDir and
// returns the full path.
func SaveWorkbook(c *Config, name string, v Views) (string, error) {
	if err := os.MkdirAll(c.OutputDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(c.OutputDir, name)
	f, err := Workbook(v)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("can't save workbook %s: %w", path, err)
	}
	return path, nil
}

// sheetWriter keeps the first error so sheets can be written without
// checking every cell.
type sheetWriter struct {
	f      *excelize.File
	header int
	err    error
}

func (w *sheetWriter) table(sheet string, header []any, rows [][]any) {
	if w.err != nil {
		return
	}
	if sheet != SheetKPI {
		if _, w.err = w.f.NewSheet(sheet); w.err != nil {
			return
		}
	}
	w.row(sheet, 1, header)
	if w.err == nil {
		w.err = w.f.SetRowStyle(sheet, 1, 1, w.header)
	}
	for i, r := range rows {
		w.row(sheet, i+2, r)
	}
	if w.err == nil {
		last, _ := excelize.ColumnNumberToName(len(header))
		w.err = w.f.SetColWidth(sheet, "A", last, 18)
	}
}

func (w *sheetWriter) row(sheet string, n int, values []any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetSheetRow(sheet, cell, &values)
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func day(t time.Time) string {
	return t.Format(time.DateOnly)
}

func (w *sheetWriter) kpi(v Views) {
	var rows [][]any
	if s := v.Sales; s != nil {
		rows = append(rows,
			[]any{"Period start", day(s.Filter.From)},
			[]any{"Period end", day(s.Filter.To.AddDate(0, 0, -1))},
			[]any{"Total revenue", money(s.TotalRevenue)},
			[]any{"Total orders", s.TotalOrders},
			[]any{"Average ticket", money(s.AverageTicket)},
			[]any{"Unique customers", s.UniqueCustomers},
		)
	}
	if l := v.Logistics; l != nil {
		rows = append(rows,
			[]any{"Deliveries", l.Deliveries},
			[]any{"Average delivery days", l.AvgDeliveryTime},
			[]any{"Average estimated days", l.AvgEstimatedTime},
			[]any{"Late deliveries %", l.LatePercentage},
		)
	}
	if fc := v.Forecast; fc != nil {
		rows = append(rows,
			[]any{"Forecast horizon months", fc.HorizonMonths},
			[]any{"Forecast fitted at", fc.FittedAt.Format(time.DateTime)},
		)
		for _, n := range fc.DataQualityNotes {
			rows = append(rows, []any{"Note", n})
		}
	}
	w.table(SheetKPI, []any{"Metric", "Value"}, rows)
}

func (w *sheetWriter) sales(s *entity.SalesReport) {
	monthly := make([][]any, 0, len(s.MonthlyRevenue))
	for _, p := range s.MonthlyRevenue {
		monthly = append(monthly, []any{day(p.Date), money(p.Value), p.Count})
	}
	w.table(SheetMonthly, []any{"Month", "Revenue", "Records"}, monthly)

	categories := make([][]any, 0, len(s.TopCategories))
	for _, c := range s.TopCategories {
		categories = append(categories, []any{c.Category, c.Label, money(c.Value), c.Count})
	}
	w.table(SheetCategories, []any{"Code", "Category", "Revenue", "Records"}, categories)

	payments := make([][]any, 0, len(s.PaymentDistribution))
	for _, p := range s.PaymentDistribution {
		payments = append(payments, []any{p.PaymentType, p.Label, money(p.Value), p.Count})
	}
	w.table(SheetPayments, []any{"Code", "Payment type", "Value", "Payments"}, payments)

	states := make([][]any, 0, len(s.TopStates))
	for _, st := range s.TopStates {
		states = append(states, []any{st.State, money(st.Value), st.Count})
	}
	w.table(SheetStates, []any{"State", "Revenue", "Records"}, states)
}

func (w *sheetWriter) logistics(l *entity.LogisticsReport) {
	states := make([][]any, 0, len(l.States))
	for _, s := range l.States {
		states = append(states, []any{s.State, s.AvgDeliveryTime, s.LatePercentage, s.Count})
	}
	w.table(SheetLogistics, []any{"State", "Average delivery days", "Late %", "Deliveries"}, states)

	status := make([][]any, 0, len(l.StatusCounts))
	for _, s := range l.StatusCounts {
		status = append(status, []any{s.Label, s.Count})
	}
	w.table(SheetStatus, []any{"Status", "Deliveries"}, status)
}

func (w *sheetWriter) forecast(fc *entity.Forecast) {
	rows := make([][]any, 0, len(fc.Points))
	for _, p := range fc.Points {
		var actual any
		if p.Actual != nil {
			actual = *p.Actual
		}
		rows = append(rows, []any{day(p.Date), p.Historical, actual, p.YHat, p.YHatLower, p.YHatUpper, p.Trend, p.Yearly, p.Weekly})
	}
	w.table(SheetForecast, []any{"Date", "Historical", "Actual", "Forecast", "Lower", "Upper", "Trend", "Yearly", "Weekly"}, rows)
}
