package config

import (
	"fmt"
	"github.com/spf13/viper"
	"strings"
	"time"
)

type ScraperConfig struct {
	Token                string        `mapstructure:"token"`
	AllowedDomains       []string      `mapstructure:"allowed_domains"`
	ScrapeInterval       time.Duration `mapstructure:"scrape_interval"`
	MaxRequestsPerSecond float32       `mapstructure:"max_requests_per_second"`
	SeenFile             string        `mapstructure:"seen_file"`
}

func (config ScraperConfig) validate() error {

	var missingFields []string

	if config.Token == "" {
		missingFields = append(missingFields, "token")
	}

	if len(config.AllowedDomains) == 0 {
		missingFields = append(missingFields, "allowed_domains")
	}

	if config.SeenFile == "" {
		missingFields = append(missingFields, "seen_file")
	}

	if len(missingFields) > 0 {
		return fmt.Errorf("missing required variables: %s", strings.Join(missingFields, ", "))
	}

	if config.ScrapeInterval <= 0 {
		return fmt.Errorf("scrape_interval must be greater than zero")
	}

	return nil
}

func (config ScraperConfig) bindEnvironmentVariables() error {
	var errs []error

	if err := viper.BindEnv("scraper.token", "TG_TOKEN"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("scraper.seen_file", "SEEN_FILE"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("scraper.scrape_interval", "SCRAPE_INTERVAL"); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return createMultiError(errs)
	}

	return nil
}
