package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration. Values start
// from built-in defaults, are overlaid by an optional YAML file, then by
// environment variables with the RETAILBI prefix; environment always wins.
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Analytics AnalyticsConfig `yaml:"analytics" envconfig:"ANALYTICS"`
}

// ServerConfig contains HTTP server configuration for the query API.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	AllowedOrigins  []string      `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig describes the file system layout: raw input CSVs live under
// DataDir, derived artifacts under ProcessedDir.
type PathsConfig struct {
	DataDir      string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	ProcessedDir string `yaml:"processed_dir" envconfig:"PROCESSED_DIR" validate:"required"`
	LogsDir      string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// AnalyticsConfig tunes the batch transformation and its collaborators.
type AnalyticsConfig struct {
	// AsOf fixes the recency reference instant (YYYY-MM-DD). Empty means
	// "day after the latest sale", which keeps artifacts reproducible for
	// a frozen dataset.
	AsOf string `yaml:"as_of" envconfig:"AS_OF"`
	// ForecastDays is the horizon of the revenue forecast collaborator.
	ForecastDays int `yaml:"forecast_days" envconfig:"FORECAST_DAYS" validate:"min=1"`
	// Clusters is the k for the RFM k-means collaborator.
	Clusters int `yaml:"clusters" envconfig:"CLUSTERS" validate:"min=2"`
	// ExcelExport additionally writes the artifacts as a single workbook.
	ExcelExport bool `yaml:"excel_export" envconfig:"EXCEL_EXPORT"`
}

// defaultConfig returns the built-in configuration.
func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			AllowedOrigins:  []string{"*"},
			RateLimitRPS:    100,
			RateLimitBurst:  50,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/retailbi.log",
		},
		Paths: PathsConfig{
			DataDir:      "data",
			ProcessedDir: "data/processed",
			LogsDir:      "logs",
		},
		Analytics: AnalyticsConfig{
			ForecastDays: 90,
			Clusters:     5,
		},
	}
}

// Load loads configuration from the optional YAML file then the
// environment, validates it and returns the result.
func Load(configFile string) (*Config, error) {
	cfg := defaultConfig()

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			data, err := os.ReadFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	if err := envconfig.Process("RETAILBI", &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// AsOfTime parses the configured as-of instant. It returns ok=false when
// the value is unset and the caller should derive it from the dataset.
func (c *Config) AsOfTime() (asOf time.Time, ok bool, err error) {
	if c.Analytics.AsOf == "" {
		return time.Time{}, false, nil
	}
	t, err := time.Parse("2006-01-02", c.Analytics.AsOf)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse as_of date: %w", err)
	}
	return t, true, nil
}
