package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"

	"github.com/jekabolt/ecomm-insights/internal/dto"
	"github.com/jekabolt/ecomm-insights/internal/forecast"
	"github.com/jekabolt/ecomm-insights/internal/report"
	"github.com/spf13/cobra"
)

var (
	forecastCmd = &cobra.Command{
		Use:   "forecast",
		Short: "Fit the revenue forecast once and print it as JSON",
		RunE:  runForecast,
	}

	forecastHorizon int
	forecastPNG     string
)

func init() {
	forecastCmd.Flags().IntVar(&forecastHorizon, "horizon", 3, "forecast horizon in months")
	forecastCmd.Flags().StringVar(&forecastPNG, "png", "", "also write the forecast chart to this file under report.output_dir")
}

func runForecast(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	engine, err := forecast.New(&cfg.Forecast)
	if err != nil {
		return err
	}
	if err := engine.ValidateHorizon(forecastHorizon); err != nil {
		return err
	}
	ds, err := loadDataset(ctx, cfg)
	if err != nil {
		return err
	}

	fc, err := engine.Forecast(ctx, ds, forecastHorizon, func(stage forecast.Stage, done float64) {
		logger.InfoContext(ctx, "forecast progress", slog.String("stage", string(stage)), slog.Float64("done", done))
	})
	if err != nil {
		return err
	}

	if forecastPNG != "" {
		path, err := report.SaveForecastPNG(&cfg.Report, forecastPNG, fc)
		if err != nil {
			return err
		}
		logger.InfoContext(ctx, "forecast chart written", slog.String("path", path))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(dto.ConvertForecast(fc))
}
