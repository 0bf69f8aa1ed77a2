package main

import (
	"context"
	"log/slog"

	"github.com/jekabolt/ecomm-insights/config"
	"github.com/jekabolt/ecomm-insights/internal/source"
	"github.com/spf13/cobra"
)

var (
	convertCmd = &cobra.Command{
		Use:   "convert",
		Short: "Convert the dataset CSV files to parquet",
		RunE:  runConvert,
	}

	convertDir string
)

func init() {
	convertCmd.Flags().StringVar(&convertDir, "dir", "", "directory holding the CSV files (default dataset.parquet.data_path)")
}

func runConvert(cmd *cobra.Command, args []string) error {
	dir := convertDir
	if dir == "" {
		cfg, _, err := setup()
		if err != nil {
			return err
		}
		if cfg.Dataset.Source != config.SourceParquet {
			slog.Default().Warn("dataset source is not parquet, converting anyway", slog.String("source", cfg.Dataset.Source))
		}
		dir = cfg.Dataset.Parquet.DataPath
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	results, err := source.Convert(ctx, dir)
	if err != nil {
		return err
	}
	var converted int
	for _, r := range results {
		if !r.Skipped {
			converted++
		}
	}
	slog.Default().InfoContext(ctx, "conversion finished",
		slog.String("dir", dir),
		slog.Int("converted", converted),
		slog.Int("skipped", len(results)-converted),
	)
	return nil
}
