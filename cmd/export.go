package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jekabolt/ecomm-insights/internal/dataset"
	"github.com/jekabolt/ecomm-insights/internal/forecast"
	"github.com/jekabolt/ecomm-insights/internal/form"
	"github.com/jekabolt/ecomm-insights/internal/logistics"
	"github.com/jekabolt/ecomm-insights/internal/report"
	"github.com/jekabolt/ecomm-insights/internal/sales"
	"github.com/spf13/cobra"
)

var (
	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Export the dashboard views to an xlsx workbook",
		RunE:  runExport,
	}

	exportStart      string
	exportEnd        string
	exportStates     []string
	exportCategories []string
	exportHorizon    int
	exportName       string
)

func init() {
	f := exportCmd.Flags()
	f.StringVar(&exportStart, "start", "", "first day, 2006-01-02 (default first purchase day)")
	f.StringVar(&exportEnd, "end", "", "last day, 2006-01-02 (default last purchase day)")
	f.StringSliceVar(&exportStates, "state", nil, "customer states to include (default all)")
	f.StringSliceVar(&exportCategories, "category", nil, "category labels to include (default all)")
	f.IntVar(&exportHorizon, "horizon", 0, "also fit and export a forecast of this many months")
	f.StringVar(&exportName, "out", "", "workbook file name (default insights-<date>.xlsx)")
}

// exportFilter builds the filter from flags, defaulting to the whole dataset.
func exportFilter(ds *dataset.Dataset) (dataset.Selection, error) {
	opts := ds.Options()
	req := &form.DashboardFilterRequest{
		StartDate:      exportStart,
		EndDate:        exportEnd,
		States:         exportStates,
		CategoryLabels: exportCategories,
	}
	if req.StartDate == "" {
		req.StartDate = opts.MinDate.Format(time.DateOnly)
	}
	if req.EndDate == "" {
		req.EndDate = opts.MaxDate.Format(time.DateOnly)
	}
	if err := req.Validate(); err != nil {
		return dataset.Selection{}, err
	}
	sel := dataset.Selection{States: req.States, CategoryLabels: req.CategoryLabels}
	sel.StartDate, sel.EndDate = req.Dates()
	if len(sel.States) == 0 {
		sel.States = opts.States
	}
	if len(sel.CategoryLabels) == 0 {
		for _, c := range opts.Categories {
			sel.CategoryLabels = append(sel.CategoryLabels, c.Label)
		}
	}
	return sel, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	ds, err := loadDataset(ctx, cfg)
	if err != nil {
		return err
	}
	sel, err := exportFilter(ds)
	if err != nil {
		return err
	}
	f := ds.NewFilter(sel)

	var views report.Views
	if views.Sales, err = sales.New(&cfg.Sales).Report(ctx, ds, f); err != nil {
		return fmt.Errorf("sales view: %w", err)
	}
	if views.Logistics, err = logistics.New(&cfg.Logistics).Report(ctx, ds, f); err != nil {
		logger.WarnContext(ctx, "logistics view skipped", slog.String("err", err.Error()))
		views.Logistics = nil
	}

	if exportHorizon > 0 {
		engine, err := forecast.New(&cfg.Forecast)
		if err != nil {
			return err
		}
		if views.Forecast, err = engine.Forecast(ctx, ds, exportHorizon, nil); err != nil {
			return err
		}
		if _, err := report.SaveForecastPNG(&cfg.Report, "forecast.png", views.Forecast); err != nil {
			return err
		}
	}

	name := exportName
	if name == "" {
		name = fmt.Sprintf("insights-%s.xlsx", time.Now().Format("20060102-150405"))
	}
	path, err := report.SaveWorkbook(&cfg.Report, name, views)
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "workbook written", slog.String("path", path))
	return nil
}
