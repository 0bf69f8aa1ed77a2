package config

import (
	"fmt"
	"os"
	"strings"

	httpapi "github.com/jekabolt/ecomm-insights/internal/api/http"
	"github.com/jekabolt/ecomm-insights/internal/forecast"
	"github.com/jekabolt/ecomm-insights/internal/logistics"
	"github.com/jekabolt/ecomm-insights/internal/report"
	"github.com/jekabolt/ecomm-insights/internal/sales"
	"github.com/jekabolt/ecomm-insights/internal/source"
	"github.com/jekabolt/ecomm-insights/log"
	"github.com/spf13/viper"
)

const (
	SourceParquet = "parquet"
	SourceMySQL   = "mysql"
)

// DatasetConfig selects where the six dataset tables are read from.
type DatasetConfig struct {
	Source  string               `mapstructure:"source"`
	Parquet source.ParquetConfig `mapstructure:"parquet"`
	MySQL   source.SQLConfig     `mapstructure:"mysql"`
}

// Config represents the global configuration for the service.
type Config struct {
	Dataset   DatasetConfig    `mapstructure:"dataset"`
	Forecast  forecast.Config  `mapstructure:"forecast"`
	Sales     sales.Config     `mapstructure:"sales"`
	Logistics logistics.Config `mapstructure:"logistics"`
	HTTP      httpapi.Config   `mapstructure:"http"`
	Logger    log.Config       `mapstructure:"logger"`
	Report    report.Config    `mapstructure:"report"`
}

// LoadConfig loads the configuration from a file and/or environment variables.
// Environment variables take precedence over config file values.
// Nested config keys use double underscore, e.g. DATASET__SOURCE for dataset.source
func LoadConfig(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	setDefaults(v)

	v.AutomaticEnv()
	// e.g., dataset.parquet.data_path -> DATASET__PARQUET__DATA_PATH
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__", "-", "__"))
	bindEnvVars(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %v", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/config/ecomm-insights")
		v.AddConfigPath("/etc/ecomm-insights")
		// Try to read config, but don't fail if it doesn't exist
		_ = v.ReadInConfig()
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config into struct: %v", err)
	}

	// Build the MySQL DSN from individual env vars if it is not set
	if config.Dataset.Source == SourceMySQL && config.Dataset.MySQL.DSN == "" {
		config.Dataset.MySQL.DSN = dsnFromEnv()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks the settings every command depends on.
func (c *Config) Validate() error {
	switch c.Dataset.Source {
	case SourceParquet:
		if c.Dataset.Parquet.DataPath == "" {
			return fmt.Errorf("dataset.parquet.data_path is required")
		}
	case SourceMySQL:
		if c.Dataset.MySQL.DSN == "" {
			return fmt.Errorf("dataset.mysql.dsn is required")
		}
	default:
		return fmt.Errorf("unknown dataset source %q, want %s or %s", c.Dataset.Source, SourceParquet, SourceMySQL)
	}
	if err := c.Forecast.Validate(); err != nil {
		return fmt.Errorf("invalid forecast config: %w", err)
	}
	return nil
}

func dsnFromEnv() string {
	host := os.Getenv("MYSQL_HOST")
	if host == "" {
		return ""
	}
	port := os.Getenv("MYSQL_PORT")
	if port == "" {
		port = "3306"
	}
	user, password, database := os.Getenv("MYSQL_USER"), os.Getenv("MYSQL_PASSWORD"), os.Getenv("MYSQL_DATABASE")
	if user == "" || database == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=false", user, password, host, port, database)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("dataset.source", SourceParquet)
	v.SetDefault("dataset.parquet.data_path", "./data")
	v.SetDefault("dataset.parquet.batch_size", 64*1024)
	v.SetDefault("dataset.mysql.max_open_connections", 6)
	v.SetDefault("dataset.mysql.max_idle_connections", 6)

	fc := forecast.DefaultConfig()
	v.SetDefault("forecast.interval_width", fc.IntervalWidth)
	v.SetDefault("forecast.changepoints", fc.Changepoints)
	v.SetDefault("forecast.changepoint_range", fc.ChangepointRange)
	v.SetDefault("forecast.changepoint_prior_scale", fc.ChangepointPriorScale)
	v.SetDefault("forecast.seasonality_prior_scale", fc.SeasonalityPriorScale)
	v.SetDefault("forecast.yearly_order", fc.YearlyOrder)
	v.SetDefault("forecast.weekly_order", fc.WeeklyOrder)
	v.SetDefault("forecast.max_horizon_months", fc.MaxHorizonMonths)
	v.SetDefault("forecast.min_history_days", fc.MinHistoryDays)
	v.SetDefault("forecast.require_yearly_cycles", fc.RequireYearlyCycles)
	v.SetDefault("forecast.display_cap", fc.DisplayCap)

	v.SetDefault("sales.top_n", sales.DefaultConfig().TopN)
	v.SetDefault("logistics.top_n", logistics.DefaultConfig().TopN)

	v.SetDefault("http.address", "0.0.0.0")
	v.SetDefault("http.port", "8501")
	v.SetDefault("http.request_timeout", "60s")
	v.SetDefault("http.heavy_requests_per_minute", 10)

	v.SetDefault("logger.level", 0)

	rc := report.DefaultConfig()
	v.SetDefault("report.output_dir", rc.OutputDir)
	v.SetDefault("report.chart_width_cm", rc.ChartWidth)
	v.SetDefault("report.chart_height_cm", rc.ChartHeight)
}

// bindEnvVars binds flat environment variables to config keys
// This allows using both nested keys (DATASET__MYSQL__DSN) and flat keys (MYSQL_DSN)
func bindEnvVars(v *viper.Viper) {
	// Dataset
	v.BindEnv("dataset.source", "DATASET_SOURCE")
	v.BindEnv("dataset.parquet.data_path", "DATA_PATH")
	v.BindEnv("dataset.mysql.dsn", "MYSQL_DSN")
	v.BindEnv("dataset.mysql.tls_ca_path", "MYSQL_TLS_CA_PATH")
	v.BindEnv("dataset.mysql.table_prefix", "MYSQL_TABLE_PREFIX")

	// Forecast
	v.BindEnv("forecast.max_horizon_months", "FORECAST_MAX_HORIZON_MONTHS")
	v.BindEnv("forecast.require_yearly_cycles", "FORECAST_REQUIRE_YEARLY_CYCLES")
	v.BindEnv("forecast.display_cap", "FORECAST_DISPLAY_CAP")

	// Logger
	v.BindEnv("logger.level", "LOG_LEVEL")
	v.BindEnv("logger.add_source", "LOG_ADD_SOURCE")

	// HTTP
	v.BindEnv("http.port", "HTTP_PORT")
	v.BindEnv("http.address", "HTTP_ADDRESS")
	v.BindEnv("http.allowed_origins", "HTTP_ALLOWED_ORIGINS")

	// Report
	v.BindEnv("report.output_dir", "REPORT_OUTPUT_DIR")
}
