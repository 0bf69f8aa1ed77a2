package forecast

import "fmt"

type Config struct {
	// IntervalWidth is the coverage of the uncertainty band, 0 < w < 1.
	IntervalWidth         float64 `mapstructure:"interval_width"`
	Changepoints          int     `mapstructure:"changepoints"`
	ChangepointRange      float64 `mapstructure:"changepoint_range"`
	ChangepointPriorScale float64 `mapstructure:"changepoint_prior_scale"`
	SeasonalityPriorScale float64 `mapstructure:"seasonality_prior_scale"`
	YearlyOrder           int     `mapstructure:"yearly_order"`
	WeeklyOrder           int     `mapstructure:"weekly_order"`
	MaxHorizonMonths      int     `mapstructure:"max_horizon_months"`
	MinHistoryDays        int     `mapstructure:"min_history_days"`

	// RequireYearlyCycles rejects histories shorter than two yearly cycles
	// instead of noting them.
	RequireYearlyCycles bool `mapstructure:"require_yearly_cycles"`

	// DisplayCap caps displayed actual and predicted values; 0 disables it.
	// The fit always uses raw values.
	DisplayCap float64 `mapstructure:"display_cap"`
}

func DefaultConfig() *Config {
	return &Config{
		IntervalWidth:         0.8,
		Changepoints:          25,
		ChangepointRange:      0.8,
		ChangepointPriorScale: 0.05,
		SeasonalityPriorScale: 10,
		YearlyOrder:           10,
		WeeklyOrder:           3,
		MaxHorizonMonths:      12,
		MinHistoryDays:        28,
	}
}

// Validate checks c for values the model can't work with.
func (c *Config) Validate() error {
	switch {
	case c.IntervalWidth <= 0 || c.IntervalWidth >= 1:
		return fmt.Errorf("interval_width must be in (0, 1), got %v", c.IntervalWidth)
	case c.Changepoints < 0:
		return fmt.Errorf("changepoints must be >= 0, got %d", c.Changepoints)
	case c.ChangepointRange <= 0 || c.ChangepointRange > 1:
		return fmt.Errorf("changepoint_range must be in (0, 1], got %v", c.ChangepointRange)
	case c.ChangepointPriorScale <= 0 || c.SeasonalityPriorScale <= 0:
		return fmt.Errorf("prior scales must be positive")
	case c.YearlyOrder < 0 || c.WeeklyOrder < 0:
		return fmt.Errorf("fourier orders must be >= 0")
	case c.MaxHorizonMonths < 1:
		return fmt.Errorf("max_horizon_months must be >= 1, got %d", c.MaxHorizonMonths)
	case c.MinHistoryDays < 2:
		return fmt.Errorf("min_history_days must be >= 2, got %d", c.MinHistoryDays)
	case c.DisplayCap < 0:
		return fmt.Errorf("display_cap must be >= 0, got %v", c.DisplayCap)
	}
	return nil
}
