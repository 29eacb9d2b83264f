package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

type Config struct {
	APIURL         string `mapstructure:"api_url"`
	AuthToken      string `mapstructure:"auth_token"`
	RequestTimeout int    `mapstructure:"request_timeout"`

	StorageBackend string `mapstructure:"storage_backend"`
	DataDir        string `mapstructure:"data_dir"`

	MaxImageSize        int64 `mapstructure:"max_image_size"`
	PreviewMaxDimension int   `mapstructure:"preview_max_dimension"`
	DecodeTimeout       int   `mapstructure:"decode_timeout"`

	DefaultDirectory string `mapstructure:"default_directory"`
	EnableLogging    bool   `mapstructure:"enable_logging"`
	LogLevel         string `mapstructure:"log_level"`
}

func DefaultConfig() *Config {
	return &Config{
		APIURL:              "http://localhost:8080/api/",
		RequestTimeout:      15,
		StorageBackend:      "file",
		DataDir:             "~/.phocaforme/data",
		MaxImageSize:        10 * 1024 * 1024, // 10MB
		PreviewMaxDimension: 512,
		DecodeTimeout:       0,
		DefaultDirectory:    ".",
		EnableLogging:       true,
		LogLevel:            "info",
	}
}

// LoadConfig reads the config viper was pointed at (see cmd/root.go) on top
// of the defaults.
func LoadConfig() (*Config, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, fmt.Errorf("failed to find home directory: %w", err)
	}

	v := viper.GetViper()
	if v.ConfigFileUsed() == "" {
		v.AddConfigPath(home)
		v.AddConfigPath(".")
		v.SetConfigName(".phocaforme")
		v.SetConfigType("yaml")
	}
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	config := DefaultConfig()

	v.SetEnvPrefix("phocaforme")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err == nil {
		if err := v.Unmarshal(config); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	} else if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound && v.ConfigFileUsed() != "" {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return config, nil
}

func SaveConfig(config *Config) error {
	configFile, err := GetConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return save(viper.New(), configFile, config)
}

func save(v *viper.Viper, configFile string, config *Config) error {
	v.SetConfigFile(configFile)
	v.SetConfigType("yaml")

	v.Set("api_url", config.APIURL)
	v.Set("auth_token", config.AuthToken)
	v.Set("request_timeout", config.RequestTimeout)
	v.Set("storage_backend", config.StorageBackend)
	v.Set("data_dir", config.DataDir)
	v.Set("max_image_size", config.MaxImageSize)
	v.Set("preview_max_dimension", config.PreviewMaxDimension)
	v.Set("decode_timeout", config.DecodeTimeout)
	v.Set("default_directory", config.DefaultDirectory)
	v.Set("enable_logging", config.EnableLogging)
	v.Set("log_level", config.LogLevel)

	return v.WriteConfig()
}

func GetConfigPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".phocaforme.yaml"), nil
}

func CreateDefaultConfig() error {
	config := DefaultConfig()
	return SaveConfig(config)
}

// ResolveDataDir expands a leading ~ in DataDir.
func (c *Config) ResolveDataDir() (string, error) {
	dir, err := homedir.Expand(c.DataDir)
	if err != nil {
		return "", fmt.Errorf("failed to expand data directory: %w", err)
	}
	return dir, nil
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

func (c *Config) DecodeTimeoutDuration() time.Duration {
	return time.Duration(c.DecodeTimeout) * time.Second
}

func ValidateConfig(config *Config) error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	found := false
	for _, level := range validLogLevels {
		if config.LogLevel == level {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("invalid log level: %s", config.LogLevel)
	}

	validBackends := []string{"file", "sqlite", "memory"}
	found = false
	for _, backend := range validBackends {
		if config.StorageBackend == backend {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("invalid storage backend: %s", config.StorageBackend)
	}

	if !strings.HasPrefix(config.APIURL, "http://") && !strings.HasPrefix(config.APIURL, "https://") {
		return fmt.Errorf("invalid api url: %s", config.APIURL)
	}
	if !strings.HasSuffix(config.APIURL, "/") {
		return fmt.Errorf("api url must end with '/': %s", config.APIURL)
	}
	if config.RequestTimeout <= 0 {
		return fmt.Errorf("invalid request timeout: %d", config.RequestTimeout)
	}
	if config.MaxImageSize <= 0 {
		return fmt.Errorf("invalid max image size: %d", config.MaxImageSize)
	}
	if config.PreviewMaxDimension < 0 || config.DecodeTimeout < 0 {
		return fmt.Errorf("preview dimension and decode timeout must not be negative")
	}

	return nil
}
