package config

import (
	"github.com/spf13/viper"
)

type StorageConfig struct {
	ResumeDir      string `mapstructure:"resume_dir"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
}

func (config *StorageConfig) setDefaults() {
	if config.ResumeDir == "" {
		config.ResumeDir = "./data/resumes"
	}
	if config.MaxUploadBytes == 0 {
		config.MaxUploadBytes = 5 * 1024 * 1024
	}
}

func (config StorageConfig) validate() error {
	return nil
}

func (config StorageConfig) bindEnvironmentVariables() error {

	err := viper.BindEnv("storage.resume_dir", "STORAGE_RESUME_DIR")
	if err != nil {
		return err
	}

	return viper.BindEnv("storage.max_upload_bytes", "STORAGE_MAX_UPLOAD_BYTES")
}
