package config

import (
	"fmt"
	"github.com/spf13/viper"
)

// RecentWindowDays covers postings admitted speculatively before they had a
// chance to stabilize; anything that fresh is deleted and re-ingested on the
// next scrape. RetentionDays is the absolute age horizon.
type CleanupConfig struct {
	RecentWindowDays int `mapstructure:"recent_window_days"`
	RetentionDays    int `mapstructure:"retention_days"`
}

func (config CleanupConfig) validate() error {

	if config.RecentWindowDays <= 0 {
		return fmt.Errorf("recent_window_days must be greater than zero")
	}

	if config.RetentionDays <= config.RecentWindowDays {
		return fmt.Errorf("retention_days must be greater than recent_window_days")
	}

	return nil
}

func (config CleanupConfig) bindEnvironmentVariables() error {
	var errs []error

	if err := viper.BindEnv("cleanup.recent_window_days", "CLEANUP_RECENT_WINDOW_DAYS"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("cleanup.retention_days", "CLEANUP_RETENTION_DAYS"); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return createMultiError(errs)
	}

	return nil
}
