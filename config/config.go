package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	API    APIConfig    `yaml:"api"`
	Upload UploadConfig `yaml:"upload"`
	Poll   PollConfig   `yaml:"poll"`
	Log    LogConfig    `yaml:"log"`
	Server ServerConfig `yaml:"server"`
}

type APIConfig struct {
	BaseURL        string        `yaml:"base_url"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxRetries     int           `yaml:"max_retries"`
	RetryBaseDelay time.Duration `yaml:"retry_base_delay"`
	RetryMaxDelay  time.Duration `yaml:"retry_max_delay"`
	TokenFile      string        `yaml:"token_file"`
}

type UploadConfig struct {
	MaxFileSize  int64    `yaml:"max_file_size"`
	AllowedTypes []string `yaml:"allowed_types"`
}

type PollConfig struct {
	Interval time.Duration `yaml:"interval"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServerConfig configures the embedded mock API server.
type ServerConfig struct {
	Port             int           `yaml:"port"`
	JWTSecret        string        `yaml:"jwt_secret"`
	TokenExpireHours int           `yaml:"token_expire_hours"`
	AnalysisDelay    time.Duration `yaml:"analysis_delay"`
	Minio            MinioConfig   `yaml:"minio"`
}

// MinioConfig enables object storage for uploaded documents. When the
// endpoint is empty the server keeps documents in memory.
type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// Load reads the configuration file at path. A missing file is not an
// error: the CLI must work with zero setup, so defaults are returned.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = "http://localhost:8000"
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = 30 * time.Second
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = 3
	}
	if c.API.RetryBaseDelay == 0 {
		c.API.RetryBaseDelay = time.Second
	}
	if c.API.RetryMaxDelay == 0 {
		c.API.RetryMaxDelay = 30 * time.Second
	}
	if c.API.TokenFile == "" {
		c.API.TokenFile = defaultTokenFile()
	}
	if c.Upload.MaxFileSize == 0 {
		c.Upload.MaxFileSize = 10 * 1024 * 1024
	}
	if len(c.Upload.AllowedTypes) == 0 {
		c.Upload.AllowedTypes = []string{
			"application/pdf",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		}
	}
	if c.Poll.Interval == 0 {
		c.Poll.Interval = 5 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.JWTSecret == "" {
		c.Server.JWTSecret = "dev-only-secret"
	}
	if c.Server.TokenExpireHours == 0 {
		c.Server.TokenExpireHours = 24
	}
	if c.Server.AnalysisDelay == 0 {
		c.Server.AnalysisDelay = 2 * time.Second
	}
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".guardian-token"
	}
	return filepath.Join(home, ".config", "guardian", "token")
}
