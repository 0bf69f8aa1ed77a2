package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "ecomm-insights",
		Short: "Sales, logistics and revenue forecast dashboard over the e-commerce dataset",
		RunE:  run,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the ecomm-insights version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}

	cfgFile string
	version string
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to configuration file (optional)")
	rootCmd.AddCommand(versionCmd, forecastCmd, convertCmd, exportCmd)
	if err := rootCmd.Execute(); err != nil {
		slog.Default().Error("command failed", slog.String("err", err.Error()))
		os.Exit(-1)
	}
}
