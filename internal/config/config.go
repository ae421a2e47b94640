package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metadata  MetadataConfig  `mapstructure:"metadata"`
	Transport TransportConfig `mapstructure:"transport"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host              string `mapstructure:"host"`
	Port              int    `mapstructure:"port"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// MetadataConfig holds provider configuration.
type MetadataConfig struct {
	Language              string         `mapstructure:"language"`
	IncludeAdult          bool           `mapstructure:"include_adult"`
	DefaultProvider       string         `mapstructure:"default_provider"`
	CacheTTLMinutes       int            `mapstructure:"cache_ttl_minutes"`
	MaxConcurrentRequests int            `mapstructure:"max_concurrent_requests"`
	PlotAsOutline         bool           `mapstructure:"plot_as_outline"`
	TMDB                  TMDBConfig     `mapstructure:"tmdb"`
	OMDB                  OMDBConfig     `mapstructure:"omdb"`
	FanartTV              FanartTVConfig `mapstructure:"fanarttv"`
}

// TMDBConfig holds TMDB settings.
type TMDBConfig struct {
	APIKey       string `mapstructure:"api_key"`
	BaseURL      string `mapstructure:"base_url"`
	ImageBaseURL string `mapstructure:"image_base_url"`
}

// OMDBConfig holds OMDb settings.
type OMDBConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// FanartTVConfig holds fanart.tv settings.
type FanartTVConfig struct {
	APIKey            string `mapstructure:"api_key"`
	ClientKey         string `mapstructure:"client_key"`
	BaseURL           string `mapstructure:"base_url"`
	PreferredDiscType string `mapstructure:"preferred_disc_type"`
}

// TransportConfig holds outbound HTTP settings.
type TransportConfig struct {
	TimeoutSeconds    int     `mapstructure:"timeout_seconds"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
	UserAgent         string  `mapstructure:"user_agent"`
}

// SchedulerConfig holds cron schedules for background tasks. An empty
// schedule disables the task.
type SchedulerConfig struct {
	ConfigureCron string `mapstructure:"configure_cron"`
}

// Default returns a Config with default values.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	_ = v.Unmarshal(cfg)
	return cfg
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > config file > embedded keys > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.metascrape")
	}

	v.SetEnvPrefix("METASCRAPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.requests_per_minute", 120)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 30)
	v.SetDefault("logging.compress", true)

	v.SetDefault("metadata.language", "en-US")
	v.SetDefault("metadata.include_adult", false)
	v.SetDefault("metadata.default_provider", "tmdb")
	v.SetDefault("metadata.cache_ttl_minutes", 30)
	v.SetDefault("metadata.max_concurrent_requests", 5)
	v.SetDefault("metadata.plot_as_outline", false)

	v.SetDefault("metadata.tmdb.api_key", EmbeddedTMDBKey)
	v.SetDefault("metadata.tmdb.base_url", "https://api.themoviedb.org/3")
	v.SetDefault("metadata.tmdb.image_base_url", "https://image.tmdb.org/t/p/")

	v.SetDefault("metadata.omdb.api_key", EmbeddedOMDBKey)
	v.SetDefault("metadata.omdb.base_url", "https://www.omdbapi.com/")

	v.SetDefault("metadata.fanarttv.api_key", EmbeddedFanartTVKey)
	v.SetDefault("metadata.fanarttv.client_key", "")
	v.SetDefault("metadata.fanarttv.base_url", "https://webservice.fanart.tv/v3")
	v.SetDefault("metadata.fanarttv.preferred_disc_type", "bluray")

	v.SetDefault("scheduler.configure_cron", "0 4 * * *")

	v.SetDefault("transport.timeout_seconds", 30)
	v.SetDefault("transport.requests_per_second", 4)
	v.SetDefault("transport.burst", 8)
	v.SetDefault("transport.user_agent", "metascrape/1.0")
}

// Validate checks values that would otherwise fail later at request time.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Server.RequestsPerMinute < 0 {
		return fmt.Errorf("server.requests_per_minute must not be negative")
	}
	if c.Metadata.MaxConcurrentRequests < 0 {
		return fmt.Errorf("metadata.max_concurrent_requests must not be negative")
	}
	if c.Transport.RequestsPerSecond < 0 {
		return fmt.Errorf("transport.requests_per_second must not be negative")
	}
	return nil
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CacheTTL returns the search cache lifetime.
func (c *MetadataConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

// Timeout returns the outbound request timeout.
func (c *TransportConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
