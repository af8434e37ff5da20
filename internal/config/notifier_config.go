package config

import (
	"fmt"
	"github.com/spf13/viper"
)

type NotifierConfig struct {
	// FunctionsURL is the base URL of the email-sending functions, e.g.
	// https://xyz.functions.example.com. The client appends the function
	// name to it.
	FunctionsURL         string  `mapstructure:"functions_url"`
	MaxRequestsPerSecond float32 `mapstructure:"max_requests_per_second"`
}

func (config NotifierConfig) validate() error {
	if config.FunctionsURL == "" {
		return fmt.Errorf("missing variable: notifier functions url")
	}
	return nil
}

func (config NotifierConfig) bindEnvironmentVariables() error {

	err := viper.BindEnv("notifier.functions_url", "NOTIFIER_FUNCTIONS_URL")
	if err != nil {
		return err
	}

	return viper.BindEnv("notifier.max_requests_per_second", "NOTIFIER_MAX_REQUESTS_PER_SECOND")
}
