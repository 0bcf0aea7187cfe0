package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Tracker  TrackerConfig  `yaml:"tracker"`
	Source   SourceConfig   `yaml:"source"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Display  DisplayConfig  `yaml:"display"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

type TrackerConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type SourceConfig struct {
	Coingecko CoingeckoConfig `yaml:"coingecko"`
}

// Duration wraps time.Duration so yaml values like "30s" parse naturally.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\": %w", err)
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a standard time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// CoingeckoConfig describes the /coins/markets request. MinRequestInterval is
// the courtesy gap between requests on the free API tier.
type CoingeckoConfig struct {
	URL                string   `yaml:"url"`
	VsCurrency         string   `yaml:"vs_currency"`
	Order              string   `yaml:"order"`
	PerPage            int      `yaml:"per_page"`
	Page               int      `yaml:"page"`
	Timeout            Duration `yaml:"timeout"`
	MinRequestInterval Duration `yaml:"min_request_interval"`
}

type AnalysisConfig struct {
	TopLimit int `yaml:"top_limit"`
}

type DisplayConfig struct {
	LeadersLimit int `yaml:"leaders_limit"`
}

type StorageConfig struct {
	Local LocalStorageConfig `yaml:"local"`
	S3    S3Config           `yaml:"s3"`
}

type LocalStorageConfig struct {
	Directory          string `yaml:"directory"`
	ParquetEnabled     bool   `yaml:"parquet_enabled"`
	ParquetCompression string `yaml:"parquet_compression"`
}

type S3Config struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	PathStyle       bool   `yaml:"path_style"`
	Prefix          string `yaml:"prefix"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	MaxAge int    `yaml:"max_age"`
}

type MetricsConfig struct {
	CloudWatch CloudWatchConfig `yaml:"cloudwatch"`
}

type CloudWatchConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Region        string `yaml:"region"`
	Namespace     string `yaml:"namespace"`
	DashboardName string `yaml:"dashboard_name"`
}

func LoadConfig(path string) (*Config, error) {
	// Read configuration file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Config{
		Source: SourceConfig{
			Coingecko: CoingeckoConfig{
				URL:                "https://api.coingecko.com/api/v3/coins/markets",
				VsCurrency:         "usd",
				Order:              "market_cap_desc",
				PerPage:            250,
				Page:               1,
				Timeout:            Duration(30 * time.Second),
				MinRequestInterval: Duration(6 * time.Second),
			},
		},
		Analysis: AnalysisConfig{TopLimit: 10},
		Display:  DisplayConfig{LeadersLimit: 10},
		Storage: StorageConfig{
			Local: LocalStorageConfig{Directory: "data"},
		},
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override S3 settings from environment variables if available
	if config.Storage.S3.Enabled {
		if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
			config.Storage.S3.AccessKeyID = strings.TrimSpace(v)
		}
		if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
			config.Storage.S3.SecretAccessKey = strings.TrimSpace(v)
		}
		if v := os.Getenv("AWS_REGION"); v != "" {
			config.Storage.S3.Region = strings.TrimSpace(v)
		}
		if v := os.Getenv("S3_BUCKET"); v != "" {
			config.Storage.S3.Bucket = strings.TrimSpace(v)
		}
	}

	config.Storage.S3.Bucket = strings.TrimSpace(config.Storage.S3.Bucket)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Tracker.Name == "" {
		return fmt.Errorf("tracker.name is required")
	}

	if cfg.Tracker.Version == "" {
		return fmt.Errorf("tracker.version is required")
	}

	src := cfg.Source.Coingecko
	if src.URL == "" {
		return fmt.Errorf("source.coingecko.url is required")
	}
	if src.VsCurrency == "" {
		return fmt.Errorf("source.coingecko.vs_currency is required")
	}
	if src.PerPage < 1 || src.PerPage > 250 {
		return fmt.Errorf("source.coingecko.per_page must be between 1 and 250")
	}
	if src.Page < 1 {
		return fmt.Errorf("source.coingecko.page must be greater than 0")
	}
	if src.Timeout <= 0 {
		return fmt.Errorf("source.coingecko.timeout must be greater than 0")
	}
	if src.MinRequestInterval < 0 {
		return fmt.Errorf("source.coingecko.min_request_interval must not be negative")
	}

	if cfg.Analysis.TopLimit < 0 {
		return fmt.Errorf("analysis.top_limit must not be negative")
	}
	if cfg.Display.LeadersLimit < 0 {
		return fmt.Errorf("display.leaders_limit must not be negative")
	}

	if cfg.Storage.Local.Directory == "" {
		return fmt.Errorf("storage.local.directory is required")
	}

	if cfg.Storage.S3.Enabled {
		if cfg.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required when S3 is enabled")
		}
		if cfg.Storage.S3.Region == "" {
			return fmt.Errorf("storage.s3.region is required when S3 is enabled")
		}
		if cfg.Storage.S3.AccessKeyID == "" || cfg.Storage.S3.SecretAccessKey == "" {
			return fmt.Errorf("storage.s3.access_key_id and storage.s3.secret_access_key are required when S3 is enabled")
		}
		if !isValidS3Bucket(cfg.Storage.S3.Bucket) {
			return fmt.Errorf("storage.s3.bucket '%s' is invalid", cfg.Storage.S3.Bucket)
		}
	}

	return nil
}

var s3BucketRegexp = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]{1,61}[a-z0-9]$`)

func isValidS3Bucket(name string) bool {
	if len(name) < 3 || len(name) > 63 {
		return false
	}
	if strings.Contains(name, "..") || strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		return false
	}
	return s3BucketRegexp.MatchString(name)
}
