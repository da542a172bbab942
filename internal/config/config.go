// Package config provides configuration management for the choice-sim application.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	App         AppConfig          `mapstructure:"app" validate:"required"`
	Database    DatabaseConfig     `mapstructure:"database"`
	Simulation  SimulationConfig   `mapstructure:"simulation" validate:"required"`
	Scenarios   []ScenarioConfig   `mapstructure:"scenarios" validate:"required,min=1,dive"`
	DataSources DataSourcesConfig  `mapstructure:"data_sources"`
	Schedule    ScheduleConfig     `mapstructure:"schedule"`
	Metrics     MetricsConfig      `mapstructure:"metrics" validate:"required"`
	Health      HealthConfig       `mapstructure:"health"`
	Tracing     TracingConfig      `mapstructure:"tracing"`
	Output      OutputConfig       `mapstructure:"output" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration. Persistence of
// simulation runs is optional; fields are only required when Enabled is set.
type DatabaseConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name               string `mapstructure:"name"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"omitempty,gt=0"`
}

// SimulationConfig represents probability engine configuration
type SimulationConfig struct {
	Workers          int  `mapstructure:"workers" validate:"gte=0"`
	StabilizeSoftmax bool `mapstructure:"stabilize_softmax"`
	CacheTTLSeconds  int  `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
	CacheMaxSize     int  `mapstructure:"cache_max_size" validate:"required,gt=0"`
}

// ScenarioConfig defines one named simulation scenario: coefficients, utility
// formulas (one per alternative) and the observation data, either inline or by
// data source reference.
type ScenarioConfig struct {
	Name         string               `mapstructure:"name" validate:"required"`
	Coefficients map[string]float64   `mapstructure:"coefficients" validate:"required,min=1"`
	Utilities    []string             `mapstructure:"utilities" validate:"required,min=1"`
	Data         map[string][]float64 `mapstructure:"data"`
	Source       string               `mapstructure:"source"`
}

// DataSourcesConfig represents external observation sources
type DataSourcesConfig struct {
	CSV    []CSVSourceConfig  `mapstructure:"csv" validate:"dive"`
	HTTP   []HTTPSourceConfig `mapstructure:"http" validate:"dive"`
	Stream StreamSourceConfig `mapstructure:"stream"`
}

// CSVSourceConfig represents a CSV file observation source
type CSVSourceConfig struct {
	Name string `mapstructure:"name" validate:"required"`
	Path string `mapstructure:"path" validate:"required"`
}

// HTTPSourceConfig represents an HTTP observation source
type HTTPSourceConfig struct {
	Name           string  `mapstructure:"name" validate:"required"`
	URL            string  `mapstructure:"url" validate:"required,url"`
	APIKey         string  `mapstructure:"api_key"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" validate:"omitempty,gt=0"`
	MaxRetries     int     `mapstructure:"max_retries" validate:"omitempty,gte=0"`
	RateLimit      float64 `mapstructure:"rate_limit" validate:"omitempty,gt=0"`
}

// StreamSourceConfig represents a websocket observation stream for the daemon
type StreamSourceConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	URL        string `mapstructure:"url"`
	Token      string `mapstructure:"token"`
	Scenario   string `mapstructure:"scenario"`
	BufferSize int    `mapstructure:"buffer_size" validate:"omitempty,gt=0"`
}

// ScheduleConfig represents the daemon's periodic run schedule
type ScheduleConfig struct {
	Enabled   bool     `mapstructure:"enabled"`
	Cron      string   `mapstructure:"cron"`
	Scenarios []string `mapstructure:"scenarios"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// HealthConfig represents the health check server configuration
type HealthConfig struct {
	Port string `mapstructure:"port"`
}

// TracingConfig represents AWS X-Ray tracing configuration
type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	DaemonAddr   string  `mapstructure:"daemon_addr"`
	SamplingRate float64 `mapstructure:"sampling_rate" validate:"omitempty,gte=0,lte=1"`
}

// OutputConfig represents result artifact configuration
type OutputConfig struct {
	Directory    string `mapstructure:"directory" validate:"required"`
	JSONEnabled  bool   `mapstructure:"json_enabled"`
	CSVEnabled   bool   `mapstructure:"csv_enabled"`
	ChartEnabled bool   `mapstructure:"chart_enabled"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Scenario returns the named scenario configuration
func (c *Config) Scenario(name string) (*ScenarioConfig, error) {
	for i := range c.Scenarios {
		if c.Scenarios[i].Name == name {
			return &c.Scenarios[i], nil
		}
	}
	return nil, fmt.Errorf("unknown scenario %q", name)
}
