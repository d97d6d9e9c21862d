package config

import (
	"fmt"
	"github.com/spf13/viper"
)

type dbDriver string

const (
	DriverSqlite   dbDriver = "sqlite"
	DriverSupabase dbDriver = "supabase"
)

type DBConfig struct {
	Driver           dbDriver `mapstructure:"driver"`
	ConnectionString string   `mapstructure:"connection_string"`
	SupabaseURL      string   `mapstructure:"supabase_url"`
	SupabaseKey      string   `mapstructure:"supabase_key"`
}

func (config DBConfig) validate() error {
	switch config.Driver {
	case DriverSqlite:
		if config.ConnectionString == "" {
			return fmt.Errorf("missing variable: db connection string")
		}
	case DriverSupabase:
		if config.SupabaseURL == "" || config.SupabaseKey == "" {
			return fmt.Errorf("missing variables: supabase url and key")
		}
	default:
		return fmt.Errorf("unknown db driver: %v", config.Driver)
	}
	return nil
}

func (config DBConfig) bindEnvironmentVariables() error {
	var errs []error

	if err := viper.BindEnv("db.driver", "DB_DRIVER"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("db.connection_string", "DB_CONNECTION_STRING"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("db.supabase_url", "SUPABASE_URL"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("db.supabase_key", "SUPABASE_KEY"); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return createMultiError(errs)
	}

	return nil
}
