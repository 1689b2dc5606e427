// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Calculator CalculatorConfig `toml:"calculator"`
	Storage    StorageConfig    `toml:"storage"`
	Log        LogConfig        `toml:"log"`
	Server     ServerConfig     `toml:"server"`
}

// CalculatorConfig maps estimator and output settings.
type CalculatorConfig struct {
	Formulas []string `toml:"formulas"`
	Output   *string  `toml:"output"`
	ShareURL *string  `toml:"share-url"`
}

// StorageConfig maps persistence settings.
type StorageConfig struct {
	DB *string `toml:"db"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level  *string `toml:"level"`
	File   *string `toml:"file"`
	JSON   *bool   `toml:"json"`
	Stderr *bool   `toml:"stderr"`
}

// ServerConfig maps HTTP API settings.
type ServerConfig struct {
	Addr *string `toml:"addr"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
