package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds runtime settings for the userbook CLI.
//
// Fields:
//   - Storage: storage location (file path, sqlite://, postgres://, s3://).
//   - LogFile / LogLevel / LogFormat: process log settings.
//   - S3: credentials and endpoint used only by s3:// locations.
type Config struct {
	Storage   string   `json:"storage" yaml:"storage"`
	LogFile   string   `json:"log_file" yaml:"log_file"`
	LogLevel  string   `json:"log_level" yaml:"log_level"`
	LogFormat string   `json:"log_format" yaml:"log_format"`
	S3        S3Config `json:"s3" yaml:"s3"`
}

// S3Config configures the S3-compatible backend. Empty credentials fall back
// to the AWS default credential chain.
type S3Config struct {
	Region    string `json:"region" yaml:"region"`
	Endpoint  string `json:"endpoint" yaml:"endpoint"`
	AccessKey string `json:"access_key" yaml:"access_key"`
	SecretKey string `json:"secret_key" yaml:"secret_key"`
}

// Environment variables consulted by applyEnv.
const (
	EnvStorage  = "USERBOOK_STORAGE"
	EnvLogFile  = "USERBOOK_LOG_FILE"
	EnvLogLevel = "USERBOOK_LOG_LEVEL"
)

// LoadDefaults populates c with defaults matching the historical file names.
func (c *Config) LoadDefaults() {
	c.Storage = "users.json"
	c.LogFile = "user_operations.log"
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.S3.Region = "us-east-1"
}

// LoadConfig builds a Config from defaults, then the optional config file at
// path, then environment variables. Later sources take precedence.
// Command-line flags are applied on top by the caller.
func LoadConfig(path string, lookupEnv func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path != "" {
		if err := parseFile(cfg, path); err != nil {
			return nil, err
		}
	}
	if lookupEnv != nil {
		applyEnv(cfg, lookupEnv)
	}
	return cfg, nil
}

// parseFile overlays cfg with the keys present in the file at path. Keys
// absent from the file keep their current values. Files ending in .yaml or
// .yml are decoded as YAML, everything else as JSON.
func parseFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	return nil
}

func applyEnv(cfg *Config, lookupEnv func(string) (string, bool)) {
	if v, ok := lookupEnv(EnvStorage); ok && v != "" {
		cfg.Storage = v
	}
	if v, ok := lookupEnv(EnvLogFile); ok && v != "" {
		cfg.LogFile = v
	}
	if v, ok := lookupEnv(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}
}
