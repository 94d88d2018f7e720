package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig
	Server  ServerConfig
	Storage StorageConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Debug       bool
	FrontendURL string
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	RateLimitRPS float64
}

type StorageConfig struct {
	DataDir      string
	SettingsFile string
	WebhooksFile string
	FormsFile    string
	ModelsFile   string
}

func (c *StorageConfig) SettingsPath() string {
	return filepath.Join(c.DataDir, c.SettingsFile)
}

func (c *StorageConfig) WebhooksPath() string {
	return filepath.Join(c.DataDir, c.WebhooksFile)
}

func (c *StorageConfig) FormsPath() string {
	return filepath.Join(c.DataDir, c.FormsFile)
}

func (c *StorageConfig) ModelsPath() string {
	return filepath.Join(c.DataDir, c.ModelsFile)
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config

	// App
	cfg.App.Name = viper.GetString("app.name")
	cfg.App.Environment = viper.GetString("app.environment")
	cfg.App.Debug = viper.GetBool("app.debug")
	cfg.App.FrontendURL = viper.GetString("app.frontend_url")

	// Server
	cfg.Server.Host = viper.GetString("server.host")
	cfg.Server.Port = viper.GetInt("server.port")
	cfg.Server.ReadTimeout = viper.GetDuration("server.read_timeout")
	cfg.Server.WriteTimeout = viper.GetDuration("server.write_timeout")
	cfg.Server.IdleTimeout = viper.GetDuration("server.idle_timeout")
	cfg.Server.RateLimitRPS = viper.GetFloat64("server.rate_limit_rps")

	// Storage
	cfg.Storage.DataDir = viper.GetString("storage.data_dir")
	cfg.Storage.SettingsFile = viper.GetString("storage.settings_file")
	cfg.Storage.WebhooksFile = viper.GetString("storage.webhooks_file")
	cfg.Storage.FormsFile = viper.GetString("storage.forms_file")
	cfg.Storage.ModelsFile = viper.GetString("storage.models_file")

	return &cfg, nil
}

func setDefaults() {
	// App defaults
	viper.SetDefault("app.name", "bizsuite")
	viper.SetDefault("app.environment", "development")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.frontend_url", "http://localhost:3000")

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "60s")
	viper.SetDefault("server.idle_timeout", "60s")
	viper.SetDefault("server.rate_limit_rps", 100)

	// Storage defaults (file names match the documents the suite has always used)
	viper.SetDefault("storage.data_dir", "data")
	viper.SetDefault("storage.settings_file", "app_settings.json")
	viper.SetDefault("storage.webhooks_file", "webhooks.json")
	viper.SetDefault("storage.forms_file", "custom_forms.json")
	viper.SetDefault("storage.models_file", "business_models.json")
}
