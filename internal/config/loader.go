package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigDir is the directory name under ~/.config
	ConfigDir = "fwembed"
	// ConfigFile is the JSON config file name
	ConfigFile = "config.json"
	// ConfigFileYAML is checked when ConfigFile is absent
	ConfigFileYAML = "config.yaml"
)

// FileSystem abstracts file operations for testability
type FileSystem interface {
	UserHomeDir() (string, error)
	ReadFile(path string) ([]byte, error)
}

// ConfigFileReader implements FileSystem using the real OS for config loading
type ConfigFileReader struct{}

func (ConfigFileReader) UserHomeDir() (string, error) {
	return os.UserHomeDir()
}

func (ConfigFileReader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Loader handles configuration loading with injected dependencies
type Loader struct {
	fs FileSystem
}

// NewLoader creates a production Loader using the real filesystem
func NewLoader() *Loader {
	return &Loader{fs: ConfigFileReader{}}
}

// NewLoaderWithFS creates a Loader with a custom filesystem (for testing)
func NewLoaderWithFS(fs FileSystem) *Loader {
	return &Loader{fs: fs}
}

// Load reads configuration from ~/.config/fwembed/config.json, or config.yaml
// when the JSON file does not exist, and merges it with defaults.
// Returns default config if neither file exists.
// Returns error only for parse errors, permission issues, or validation failures.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	homeDir, err := l.fs.UserHomeDir()
	if err != nil {
		return cfg, nil // Use defaults if can't get home dir
	}

	dir := filepath.Join(homeDir, ".config", ConfigDir)
	for _, name := range []string{ConfigFile, ConfigFileYAML} {
		path := filepath.Join(dir, name)
		data, err := l.fs.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		return decode(cfg, path, data)
	}

	return cfg, nil
}

// LoadFile reads configuration from an explicit path. Unlike Load, a missing
// file is an error.
func (l *Loader) LoadFile(path string) (*Config, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decode(DefaultConfig(), path, data)
}

// decode parses data directly over cfg so present keys overwrite defaults
// (even if zero) and missing keys leave them untouched.
func decode(cfg *Config, path string, data []byte) (*Config, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load is a convenience function using the default loader
func Load() (*Config, error) {
	return NewLoader().Load()
}
