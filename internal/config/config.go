package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Storage   StorageConfig   `yaml:"storage"`
	Auth      AuthConfig      `yaml:"auth"`
	Cache     CacheConfig     `yaml:"cache"`
	Retention RetentionConfig `yaml:"retention"`
	Limits    LimitsConfig    `yaml:"limits"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// StorageConfig selects and configures the media store backend.
// Backend is either "local" or "s3".
type StorageConfig struct {
	Backend  string    `yaml:"backend"`
	LocalDir string    `yaml:"local_dir"`
	AWS      AWSConfig `yaml:"aws"`
}

// AWSConfig holds S3 configuration for the s3 media store backend
type AWSConfig struct {
	Region    string `yaml:"region"`
	S3Bucket  string `yaml:"s3_bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Endpoint  string `yaml:"endpoint"` // custom endpoint for S3-compatible providers
}

// AuthConfig holds bearer-token verification configuration
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// CacheConfig holds listing-cache configuration
type CacheConfig struct {
	TTLMinutes int `yaml:"ttl_minutes"`
}

// TTL returns the listing-cache entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// RetentionConfig holds trash retention configuration
type RetentionConfig struct {
	Days               int `yaml:"days"`
	SweepIntervalHours int `yaml:"sweep_interval_hours"`
}

// Window returns how long a trashed photo is kept before forced expiry.
func (c RetentionConfig) Window() time.Duration {
	return time.Duration(c.Days) * 24 * time.Hour
}

// SweepInterval returns how often the purge sweep runs.
func (c RetentionConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalHours) * time.Hour
}

// LimitsConfig holds request limit configuration
type LimitsConfig struct {
	MaxUploadBytes  int64 `yaml:"max_upload_bytes"`
	UploadPerMinute int   `yaml:"upload_per_minute"`
	UploadBurst     int   `yaml:"upload_burst"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Storage.Backend == "" {
		c.Storage.Backend = "local"
	}
	if c.Storage.LocalDir == "" {
		c.Storage.LocalDir = "uploads"
	}
	if c.Cache.TTLMinutes <= 0 {
		c.Cache.TTLMinutes = 5
	}
	if c.Retention.Days <= 0 {
		c.Retention.Days = 30
	}
	if c.Retention.SweepIntervalHours <= 0 {
		c.Retention.SweepIntervalHours = 24
	}
	if c.Limits.MaxUploadBytes <= 0 {
		c.Limits.MaxUploadBytes = 5 << 20
	}
	if c.Limits.UploadPerMinute <= 0 {
		c.Limits.UploadPerMinute = 30
	}
	if c.Limits.UploadBurst <= 0 {
		c.Limits.UploadBurst = 10
	}
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
