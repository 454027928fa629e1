package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig represents the main configuration structure
type AppConfig struct {
	Engine      EngineConfig      `yaml:"engine,omitempty"`
	Preview     PreviewConfig     `yaml:"preview,omitempty"`
	Destination DestinationConfig `yaml:"destination,omitempty"`
	Audit       AuditConfig       `yaml:"audit,omitempty"`
}

// EngineConfig locates and tunes the extraction engine
type EngineConfig struct {
	Path        string `yaml:"path,omitempty"`         // Engine binary (default: discovered)
	Indexed     bool   `yaml:"indexed,omitempty"`      // Use the page index cache
	CacheSizeMB int    `yaml:"cache_size,omitempty"`   // Page cache size in MB
	IndexDir    string `yaml:"index_dir,omitempty"`    // Index cache directory
}

// PreviewConfig bounds preview extractions
type PreviewConfig struct {
	MaxRows        int `yaml:"max_rows,omitempty"`        // Preview row cap (default: 200)
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"` // Preview deadline (default: 120)
}

// DestinationConfig holds export destination defaults
type DestinationConfig struct {
	Server      string `yaml:"server,omitempty"`
	Database    string `yaml:"database,omitempty"`
	User        string `yaml:"user,omitempty"` // Password via BAKSTUDIO_DEST_PASSWORD
	WindowsAuth bool   `yaml:"windows_auth,omitempty"`
	BatchSize   int    `yaml:"batch_size,omitempty"` // Rows per transaction (default: 1000)
}

// AuditConfig for audit logging settings
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	File    string `yaml:"file,omitempty"`
}

const defaultConfigFile = "bakstudio.yaml"

// LoadAppConfig loads configuration from YAML file. An empty filename falls
// back to bakstudio.yaml when present, or built-in defaults otherwise.
func LoadAppConfig(filename string) (*AppConfig, error) {
	explicit := filename != ""
	if !explicit {
		filename = defaultConfigFile
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return &AppConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config AppConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &config, nil
}

// PreviewTimeout returns the configured preview deadline.
func (c *AppConfig) PreviewTimeout() time.Duration {
	if c.Preview.TimeoutSeconds > 0 {
		return time.Duration(c.Preview.TimeoutSeconds) * time.Second
	}
	return 0
}

// createConfigTemplate writes a starter bakstudio.yaml
func createConfigTemplate() {
	config := &AppConfig{
		Engine: EngineConfig{
			Indexed:     true,
			CacheSizeMB: 256,
		},
		Preview: PreviewConfig{
			MaxRows:        200,
			TimeoutSeconds: 120,
		},
		Destination: DestinationConfig{
			Server:    "localhost",
			Database:  "staging",
			User:      "sa",
			BatchSize: 1000,
		},
		Audit: AuditConfig{
			Enabled: true,
			File:    "bakstudio-audit.jsonl",
		},
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		fatal("Failed to marshal config: %v", err)
	}
	if err := os.WriteFile(defaultConfigFile, data, 0o644); err != nil {
		fatal("Failed to write config file: %v", err)
	}
	fmt.Printf("Created %s\n", defaultConfigFile)
}
