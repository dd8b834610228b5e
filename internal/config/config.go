// Package config provides configuration management for the atelier CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"
	"github.com/tidwall/sjson"

	"github.com/guilhermegouw/atelier/internal/conversation"
)

const appName = "atelier"

var validate = validator.New()

// Config is the top-level configuration structure.
type Config struct {
	Gateway    Gateway    `json:"gateway"`
	Generation Generation `json:"generation"`
	Store      Store      `json:"store"`
	Options    *Options   `json:"options,omitempty"`

	// apiKey is Gateway.APIKey with environment references resolved.
	apiKey string
}

// Gateway holds the AI backend settings.
//
//nolint:govet // Field order is intentional for JSON readability.
type Gateway struct {
	// APIKey may be a literal key or a $VAR reference.
	APIKey        string `json:"api_key,omitempty"`
	BaseURL       string `json:"base_url,omitempty" validate:"omitempty,url"`
	ChatModel     string `json:"chat_model,omitempty"`
	AnalysisModel string `json:"analysis_model,omitempty"`
	EditModel     string `json:"edit_model,omitempty"`
}

// Generation holds the settings a new image generation starts with.
type Generation struct {
	Model          string `json:"model,omitempty"`
	AspectRatio    string `json:"aspect_ratio,omitempty"`
	OutputMIMEType string `json:"output_mime_type,omitempty"`
	NumberOfImages int    `json:"number_of_images,omitempty"`
}

// Store selects the persistence backend.
type Store struct {
	Driver string `json:"driver,omitempty" validate:"omitempty,oneof=sqlite bolt memory"`
}

// Options holds optional configuration settings.
//
//nolint:govet // Field order is intentional for JSON readability.
type Options struct {
	DataDir string `json:"data_directory,omitempty"`
	Debug   bool   `json:"debug,omitempty"`
}

// NewConfig creates a new empty Config.
func NewConfig() *Config {
	return &Config{Options: &Options{}}
}

// Validate checks the values that cannot be defaulted.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := c.GenerationParams().Validate(); err != nil {
		return err
	}
	return nil
}

// APIKey returns the resolved API key, or "" when none is configured.
func (c *Config) APIKey() string {
	return c.apiKey
}

// GenerationParams returns the configured generation defaults.
func (c *Config) GenerationParams() conversation.GenerationParams {
	return conversation.GenerationParams{
		Model:          c.Generation.Model,
		AspectRatio:    conversation.AspectRatio(c.Generation.AspectRatio),
		NumberOfImages: c.Generation.NumberOfImages,
		OutputMIMEType: c.Generation.OutputMIMEType,
	}
}

// DataDir returns the data directory path from configuration.
func (c *Config) DataDir() string {
	if c.Options != nil && c.Options.DataDir != "" {
		return c.Options.DataDir
	}
	return filepath.Join(xdg.DataHome, appName)
}

// DebugLogPath returns where --debug writes its log.
func (c *Config) DebugLogPath() string {
	return filepath.Join(c.DataDir(), "debug.log")
}

// SetConfigField updates a single field in the global config file using
// JSON path notation, leaving the rest of the file untouched.
func (c *Config) SetConfigField(key string, value any) error {
	return setField(GlobalConfigPath(), key, value)
}

func setField(path, key string, value any) error {
	//nolint:gosec // G304: path is a trusted config location, not user input.
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("reading config file: %w", err)
		}
		data = []byte("{}")
	}

	newData, err := sjson.SetBytes(data, key, value)
	if err != nil {
		return fmt.Errorf("setting config field %q: %w", key, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, newData, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
