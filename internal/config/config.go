// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for revu.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.revu/config.toml
//   - ~/.revu/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/revu-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Display bounds. Out-of-range values are clamped, not rejected: a hand
// edited config should never block startup.
const (
	MinFontSize     = 10
	MaxFontSize     = 24
	DefaultFontSize = 14

	MinContextLines     = 5
	MaxContextLines     = 50
	DefaultContextLines = 10
)

// Config represents the complete revu configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// API configuration
	API APIConfig `toml:"api" json:"api"`

	// Model configuration
	Model ModelConfig `toml:"model" json:"model"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`
}

// APIConfig contains Anthropic API configuration.
type APIConfig struct {
	// Key is the Anthropic API key. Values written by revu carry the
	// "ENC:" prefix and are decrypted by the security package.
	Key string `toml:"key" json:"key"`
}

// ModelConfig contains model selection configuration.
type ModelConfig struct {
	// Tier is the model tier to review with: "haiku", "sonnet", "opus",
	// or a full model id.
	Tier string `toml:"tier" json:"tier"`
	// MaxTokens is the completion budget per turn (0 = client default).
	MaxTokens int `toml:"max_tokens" json:"max_tokens"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// FontSize is the editor font size in points (10-24).
	FontSize int `toml:"font_size" json:"font_size"`
	// MaxContextLines is how many lines around a selection are captured
	// with it (5-50).
	MaxContextLines int `toml:"max_context_lines" json:"max_context_lines"`
	// Theme is the UI theme: "dark" or "light".
	Theme string `toml:"theme" json:"theme"`
	// DefaultLanguage is the language of the bundled example document shown
	// when no file is opened.
	DefaultLanguage string `toml:"default_language" json:"default_language"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",
		API:     APIConfig{Key: ""},
		Model: ModelConfig{
			Tier:      "haiku",
			MaxTokens: 0,
		},
		UI: UIConfig{
			FontSize:        DefaultFontSize,
			MaxContextLines: DefaultContextLines,
			Theme:           "dark",
			DefaultLanguage: "javascript",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the revu configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".revu"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ensureSecurePermissions checks and fixes permissions on config files.
// SECURITY: Config files should be 0600 (owner read/write only) to protect
// API keys.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()

	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err == nil {
				return finish(cfg)
			}
		}
	}

	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err == nil {
				return finish(cfg)
			}
		}
	}

	return finish(cfg)
}

// LoadFromPath loads configuration from a specific file path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}
	return finish(cfg)
}

// finish applies overrides, defaults, and validation in the standard order.
func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file.
// SECURITY: Checks and fixes file permissions on load.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file.
// SECURITY: Checks and fixes file permissions on load.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
// SECURITY: Creates config files with 0600 permissions (owner read/write
// only).
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	// SECURITY: Ensure permissions are correct even if file already existed
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	fmt.Fprintln(file, "# revu configuration file")
	fmt.Fprintln(file, "# Generated by revu - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file.
// RELIABILITY: Atomic write with fsync prevents data loss on crash
func SaveJSON(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION AND DEFAULTS
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// SetDefaults fills missing values and clamps display settings into their
// valid ranges.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.Model.Tier == "" {
		c.Model.Tier = defaults.Model.Tier
	}

	if c.UI.FontSize == 0 {
		c.UI.FontSize = DefaultFontSize
	}
	c.UI.FontSize = clamp(c.UI.FontSize, MinFontSize, MaxFontSize)

	if c.UI.MaxContextLines == 0 {
		c.UI.MaxContextLines = DefaultContextLines
	}
	c.UI.MaxContextLines = clamp(c.UI.MaxContextLines, MinContextLines, MaxContextLines)

	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.UI.DefaultLanguage == "" {
		c.UI.DefaultLanguage = defaults.UI.DefaultLanguage
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	if c.Model.MaxTokens < 0 {
		return ValidationError{Field: "model.max_tokens", Message: "must be non-negative"}
	}
	theme := strings.ToLower(c.UI.Theme)
	if theme != "dark" && theme != "light" {
		return ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be dark or light", c.UI.Theme),
		}
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - REVU_API_KEY / ANTHROPIC_API_KEY: overrides api.key
//   - REVU_MODEL_TIER: overrides model.tier
//   - REVU_FONT_SIZE: overrides ui.font_size
//   - REVU_CONTEXT_LINES: overrides ui.max_context_lines
//   - REVU_THEME: overrides ui.theme
func (c *Config) ApplyEnvOverrides() {
	if key := os.Getenv("REVU_API_KEY"); key != "" {
		c.API.Key = key
	} else if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		c.API.Key = key
	}

	if tier := os.Getenv("REVU_MODEL_TIER"); tier != "" {
		c.Model.Tier = tier
	}

	if size := os.Getenv("REVU_FONT_SIZE"); size != "" {
		if n, err := strconv.Atoi(size); err == nil {
			c.UI.FontSize = n
		}
	}

	if lines := os.Getenv("REVU_CONTEXT_LINES"); lines != "" {
		if n, err := strconv.Atoi(lines); err == nil {
			c.UI.MaxContextLines = n
		}
	}

	if theme := os.Getenv("REVU_THEME"); theme != "" {
		c.UI.Theme = theme
	}
}

// String returns a string representation of the config for debugging.
// SECURITY: Redacts the API key to prevent accidental exposure in logs.
func (c *Config) String() string {
	safe := *c
	if safe.API.Key != "" {
		safe.API.Key = "[REDACTED]"
	}
	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}
