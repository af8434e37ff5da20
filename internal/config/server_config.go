package config

import (
	"fmt"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address        string `mapstructure:"address"`
	MetricsAddress string `mapstructure:"metrics_address"`
}

func (config *ServerConfig) setDefaults() {
	if config.Address == "" {
		config.Address = ":8080"
	}
	if config.MetricsAddress == "" {
		config.MetricsAddress = ":9090"
	}
}

func (config ServerConfig) validate() error {
	if config.Address == config.MetricsAddress {
		return fmt.Errorf("address and metrics_address must differ")
	}
	return nil
}

func (config ServerConfig) bindEnvironmentVariables() error {

	err := viper.BindEnv("server.address", "SERVER_ADDRESS")
	if err != nil {
		return err
	}

	return viper.BindEnv("server.metrics_address", "METRICS_ADDRESS")
}
