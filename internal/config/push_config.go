package config

import (
	"github.com/spf13/viper"
)

type PushConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	AppID   string `mapstructure:"app_id"`
	APIKey  string `mapstructure:"api_key"`
}

func (config PushConfig) bindEnvironmentVariables() error {
	var errs []error

	if err := viper.BindEnv("push.app_id", "ONESIGNAL_APP_ID"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("push.api_key", "ONESIGNAL_REST_API_KEY"); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return createMultiError(errs)
	}

	return nil
}
