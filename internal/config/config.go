// Package config provides configuration management for the JOSAA preference
// service.
package config

import "time"

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app" validate:"required"`
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Dataset  DatasetConfig  `mapstructure:"dataset" validate:"required"`
	Pipeline PipelineConfig `mapstructure:"pipeline" validate:"required"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host                   string   `mapstructure:"host"`
	Port                   int      `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadTimeoutSeconds     int      `mapstructure:"read_timeout_seconds" validate:"gt=0"`
	WriteTimeoutSeconds    int      `mapstructure:"write_timeout_seconds" validate:"gt=0"`
	RequestTimeoutSeconds  int      `mapstructure:"request_timeout_seconds" validate:"gt=0"`
	ShutdownTimeoutSeconds int      `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
	RateLimitPerSecond     float64  `mapstructure:"rate_limit_per_second" validate:"gt=0"`
	RateLimitBurst         int      `mapstructure:"rate_limit_burst" validate:"gt=0"`
	AllowedOrigins         []string `mapstructure:"allowed_origins"`
}

// DatasetConfig represents cutoff dataset configuration. Either a local path
// or a remote URL must be set; the URL wins when both are present.
type DatasetConfig struct {
	Path               string  `mapstructure:"path"`
	URL                string  `mapstructure:"url" validate:"omitempty,url"`
	CacheTTLMinutes    int     `mapstructure:"cache_ttl_minutes" validate:"gte=0"`
	RefreshSchedule    string  `mapstructure:"refresh_schedule"`
	HTTPTimeoutSeconds int     `mapstructure:"http_timeout_seconds" validate:"gt=0"`
	MaxRetries         int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimitPerSecond float64 `mapstructure:"rate_limit_per_second" validate:"gt=0"`
}

// PipelineConfig represents preference-pipeline configuration
type PipelineConfig struct {
	Selection             string  `mapstructure:"selection" validate:"required,selection"`
	DefaultMinProbability float64 `mapstructure:"default_min_probability" validate:"gte=0,lte=100"`
}

// MetricsConfig represents metrics exposure configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// CacheTTL returns the dataset cache TTL as a duration; zero means snapshots
// never expire on their own.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Dataset.CacheTTLMinutes) * time.Minute
}
