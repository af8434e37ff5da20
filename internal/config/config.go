package config

import (
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	DB        DBConfig        `mapstructure:"db"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Notifier  NotifierConfig  `mapstructure:"notifier"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
}

var configFile = "./configs/config.yaml"

func Get() *Config {

	if value, _ := os.LookupEnv("CONFIG_PATH"); value != "" {
		configFile = value
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

	config.Server.setDefaults()
	config.Storage.setDefaults()
	config.Analytics.setDefaults()

	err = config.validate()
	if err != nil {
		return nil, err
	}

	return &config, nil
}

func bindEnvironmentVariables() error {
	var errs []error

	server, db, logger := ServerConfig{}, DBConfig{}, LoggerConfig{}
	notifier, storage, analytics := NotifierConfig{}, StorageConfig{}, AnalyticsConfig{}

	if err := server.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("ServerConfig: %w", err))
	}

	if err := db.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("DBConfig: %w", err))
	}

	if err := logger.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("LoggerConfig: %w", err))
	}

	if err := notifier.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("NotifierConfig: %w", err))
	}

	if err := storage.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("StorageConfig: %w", err))
	}

	if err := analytics.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("AnalyticsConfig: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config Config) validate() error {
	var errs []error

	if err := config.Server.validate(); err != nil {
		errs = append(errs, fmt.Errorf("ServerConfig: %w", err))
	}

	if err := config.DB.validate(); err != nil {
		errs = append(errs, fmt.Errorf("DBConfig: %w", err))
	}

	if err := config.Logger.validate(); err != nil {
		errs = append(errs, fmt.Errorf("LoggerConfig: %w", err))
	}

	if err := config.Notifier.validate(); err != nil {
		errs = append(errs, fmt.Errorf("NotifierConfig: %w", err))
	}

	if err := config.Storage.validate(); err != nil {
		errs = append(errs, fmt.Errorf("StorageConfig: %w", err))
	}

	if err := config.Analytics.validate(); err != nil {
		errs = append(errs, fmt.Errorf("AnalyticsConfig: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}
