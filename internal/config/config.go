package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Blob store drivers
	DriverS3 = "s3"
	DriverFS = "fs"

	// Default values
	DefaultPort         = 8080
	DefaultHost         = "127.0.0.1"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "json"
	DefaultFetchTimeout = 30 * time.Second
	DefaultBlobDir      = "./artifacts"

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the AHC service
type Config struct {
	// HTTP server configuration
	Host string
	Port int

	// Database configuration
	DatabaseURL string

	// Blob store configuration
	BlobDriver  string // "s3" or "fs"
	S3Bucket    string
	S3Region    string
	S3Endpoint  string // optional, for S3-compatible stores
	BlobDir     string // fs driver: local directory for artifacts
	BlobBaseURL string // fs driver: public URL prefix for artifacts

	// Auth configuration
	JWTSecret string

	// Template fetch configuration
	FetchTimeout time.Duration

	// Application configuration
	LogLevel  string
	LogFormat string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Host:         DefaultHost,
		Port:         DefaultPort,
		BlobDriver:   DriverFS,
		BlobDir:      DefaultBlobDir,
		BlobBaseURL:  fmt.Sprintf("http://%s:%d/artifacts", DefaultHost, DefaultPort),
		S3Region:     "eu-west-1",
		FetchTimeout: DefaultFetchTimeout,
		LogLevel:     DefaultLogLevel,
		LogFormat:    DefaultLogFormat,
	}
}

// LoadFromFlags parses command line flags and environment variables and
// returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()

	pflag.Parse()

	populateConfigFromViper(cfg)

	if cfg.BlobDriver == DriverFS && cfg.BlobDir != "" {
		if expandedPath, err := filepath.Abs(cfg.BlobDir); err == nil {
			cfg.BlobDir = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix("AHC")
	viper.AutomaticEnv()

	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("database_url", cfg.DatabaseURL)
	viper.SetDefault("blob_driver", cfg.BlobDriver)
	viper.SetDefault("s3_bucket", cfg.S3Bucket)
	viper.SetDefault("s3_region", cfg.S3Region)
	viper.SetDefault("s3_endpoint", cfg.S3Endpoint)
	viper.SetDefault("blob_dir", cfg.BlobDir)
	viper.SetDefault("blob_base_url", cfg.BlobBaseURL)
	viper.SetDefault("jwt_secret", cfg.JWTSecret)
	viper.SetDefault("fetch_timeout", cfg.FetchTimeout)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("logformat", cfg.LogFormat)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("host", cfg.Host, "HTTP listen address")
	pflag.Int("port", cfg.Port, "HTTP listen port")
	pflag.String("database-url", cfg.DatabaseURL, "Postgres connection string")
	pflag.String("blob-driver", cfg.BlobDriver, "Artifact store driver: 's3' or 'fs'")
	pflag.String("s3-bucket", cfg.S3Bucket, "S3 bucket for generated PDFs (s3 driver)")
	pflag.String("s3-region", cfg.S3Region, "S3 region (s3 driver)")
	pflag.String("s3-endpoint", cfg.S3Endpoint, "Custom S3 endpoint for compatible stores (s3 driver)")
	pflag.String("blob-dir", cfg.BlobDir, "Local directory for generated PDFs (fs driver)")
	pflag.String("blob-base-url", cfg.BlobBaseURL, "Public URL prefix for locally stored PDFs (fs driver)")
	pflag.String("jwt-secret", cfg.JWTSecret, "HMAC secret for staff API tokens")
	pflag.Duration("fetch-timeout", cfg.FetchTimeout, "Timeout for fetching template PDFs")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.String("logformat", cfg.LogFormat, "Log format (json, text)")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("host", pflag.Lookup("host"))
	_ = viper.BindPFlag("port", pflag.Lookup("port"))
	_ = viper.BindPFlag("database_url", pflag.Lookup("database-url"))
	_ = viper.BindPFlag("blob_driver", pflag.Lookup("blob-driver"))
	_ = viper.BindPFlag("s3_bucket", pflag.Lookup("s3-bucket"))
	_ = viper.BindPFlag("s3_region", pflag.Lookup("s3-region"))
	_ = viper.BindPFlag("s3_endpoint", pflag.Lookup("s3-endpoint"))
	_ = viper.BindPFlag("blob_dir", pflag.Lookup("blob-dir"))
	_ = viper.BindPFlag("blob_base_url", pflag.Lookup("blob-base-url"))
	_ = viper.BindPFlag("jwt_secret", pflag.Lookup("jwt-secret"))
	_ = viper.BindPFlag("fetch_timeout", pflag.Lookup("fetch-timeout"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
	_ = viper.BindPFlag("logformat", pflag.Lookup("logformat"))
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.DatabaseURL = viper.GetString("database_url")
	cfg.BlobDriver = viper.GetString("blob_driver")
	cfg.S3Bucket = viper.GetString("s3_bucket")
	cfg.S3Region = viper.GetString("s3_region")
	cfg.S3Endpoint = viper.GetString("s3_endpoint")
	cfg.BlobDir = viper.GetString("blob_dir")
	cfg.BlobBaseURL = viper.GetString("blob_base_url")
	cfg.JWTSecret = viper.GetString("jwt_secret")
	cfg.FetchTimeout = viper.GetDuration("fetch_timeout")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.LogFormat = viper.GetString("logformat")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}

	if c.DatabaseURL == "" {
		return errors.New("database URL cannot be empty")
	}

	if c.JWTSecret == "" {
		return errors.New("JWT secret cannot be empty")
	}

	switch c.BlobDriver {
	case DriverS3:
		if c.S3Bucket == "" {
			return errors.New("S3 bucket cannot be empty with the s3 driver")
		}
		if c.S3Region == "" {
			return errors.New("S3 region cannot be empty with the s3 driver")
		}
	case DriverFS:
		if c.BlobDir == "" {
			return errors.New("blob directory cannot be empty with the fs driver")
		}
		if c.BlobBaseURL == "" {
			return errors.New("blob base URL cannot be empty with the fs driver")
		}
		if _, err := os.Stat(c.BlobDir); os.IsNotExist(err) {
			if err := os.MkdirAll(c.BlobDir, DefaultDirPerm); err != nil {
				return fmt.Errorf("cannot create blob directory %s: %w", c.BlobDir, err)
			}
		} else if err != nil {
			return fmt.Errorf("cannot access blob directory %s: %w", c.BlobDir, err)
		}
	default:
		return fmt.Errorf("unknown blob driver: %s (must be 's3' or 'fs')", c.BlobDriver)
	}

	if c.FetchTimeout <= 0 {
		return errors.New("fetch timeout must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("invalid log format: %s (must be 'json' or 'text')", c.LogFormat)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}
