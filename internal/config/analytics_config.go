package config

import (
	"time"

	"github.com/spf13/viper"
)

type AnalyticsConfig struct {
	// RefreshSchedule is a cron expression for recomputing the dashboard
	// snapshot in the background.
	RefreshSchedule string        `mapstructure:"refresh_schedule"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
}

func (config *AnalyticsConfig) setDefaults() {
	if config.RefreshSchedule == "" {
		config.RefreshSchedule = "*/10 * * * *"
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = 10 * time.Minute
	}
}

func (config AnalyticsConfig) validate() error {
	return nil
}

func (config AnalyticsConfig) bindEnvironmentVariables() error {

	err := viper.BindEnv("analytics.refresh_schedule", "ANALYTICS_REFRESH_SCHEDULE")
	if err != nil {
		return err
	}

	return viper.BindEnv("analytics.cache_ttl", "ANALYTICS_CACHE_TTL")
}
