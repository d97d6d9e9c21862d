package config

import (
	"errors"
	"fmt"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"os"
)

type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger"`
	Scraper ScraperConfig `mapstructure:"scraper"`
	DB      DBConfig      `mapstructure:"db"`
	Cleanup CleanupConfig `mapstructure:"cleanup"`
	Push    PushConfig    `mapstructure:"push"`
}

var configFile = "./configs/config.yaml"

func Get() *Config {

	if value, _ := os.LookupEnv("MODE"); value == "test" {
		configFile = "../../configs/config.yaml"
	}

	config, err := loadConfig(configFile)
	if err != nil {
		log.Fatal(err)
	}

	return config
}

func loadConfig(file string) (*Config, error) {

	viper.SetConfigFile(file)
	viper.AutomaticEnv()

	err := bindEnvironmentVariables()
	if err != nil {
		return nil, err
	}

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Error reading config file, %s", err)
	}

	config := Config{}
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	err = config.validate()
	if err != nil {
		return nil, err
	}

	return &config, nil
}

func bindEnvironmentVariables() error {
	var errs []error

	scraper, db, cleanup, push, logger := ScraperConfig{}, DBConfig{}, CleanupConfig{}, PushConfig{}, LoggerConfig{}

	if err := scraper.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("ScraperConfig: %w", err))
	}

	if err := db.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("DBConfig: %w", err))
	}

	if err := cleanup.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("CleanupConfig: %w", err))
	}

	if err := push.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("PushConfig: %w", err))
	}

	if err := logger.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("LoggerConfig: %w", err))
	}

	if len(errs) > 0 {
		return createMultiError(errs)
	}

	return nil
}

func (config Config) validate() error {
	var errs []error

	if err := config.DB.validate(); err != nil {
		errs = append(errs, fmt.Errorf("DBConfig: %w", err))
	}

	if err := config.Scraper.validate(); err != nil {
		errs = append(errs, fmt.Errorf("ScraperConfig: %w", err))
	}

	if err := config.Cleanup.validate(); err != nil {
		errs = append(errs, fmt.Errorf("CleanupConfig: %w", err))
	}

	if err := config.Logger.validate(); err != nil {
		errs = append(errs, fmt.Errorf("LoggerConfig: %w", err))
	}

	if len(errs) > 0 {
		return createMultiError(errs)
	}

	return nil
}

func createMultiError(errs []error) error {
	return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
}
