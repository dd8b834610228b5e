package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/guilhermegouw/atelier/internal/conversation"
)

const (
	configFileName = "atelier.json"

	defaultStoreDriver = "sqlite"
	defaultAPIKey      = "$GEMINI_API_KEY"
)

// Load finds and loads configuration from standard locations.
// It merges global config with project config (project takes precedence).
func Load() (*Config, error) {
	cfg := NewConfig()
	if err := loadFile(GlobalConfigPath(), cfg); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading global config: %w", err)
	}

	if projectPath := findProjectConfig(); projectPath != "" {
		projectCfg := NewConfig()
		if err := loadFile(projectPath, projectCfg); err != nil {
			return nil, fmt.Errorf("loading project config: %w", err)
		}
		mergeConfig(cfg, projectCfg)
	}

	return finish(cfg)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	cfg := NewConfig()
	if err := loadFile(path, cfg); err != nil {
		return nil, err
	}
	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	key, err := NewResolver().Resolve(cfg.Gateway.APIKey)
	if err != nil {
		return nil, fmt.Errorf("resolving api key: %w", err)
	}
	cfg.apiKey = key
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	//nolint:gosec // G304: Path is from trusted config locations, not user input.
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		path := filepath.Join(dir, configFileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}

		hiddenPath := filepath.Join(dir, "."+configFileName)
		if _, err := os.Stat(hiddenPath); err == nil {
			return hiddenPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func mergeConfig(dst, src *Config) {
	mergeString(&dst.Gateway.APIKey, src.Gateway.APIKey)
	mergeString(&dst.Gateway.BaseURL, src.Gateway.BaseURL)
	mergeString(&dst.Gateway.ChatModel, src.Gateway.ChatModel)
	mergeString(&dst.Gateway.AnalysisModel, src.Gateway.AnalysisModel)
	mergeString(&dst.Gateway.EditModel, src.Gateway.EditModel)

	mergeString(&dst.Generation.Model, src.Generation.Model)
	mergeString(&dst.Generation.AspectRatio, src.Generation.AspectRatio)
	mergeString(&dst.Generation.OutputMIMEType, src.Generation.OutputMIMEType)
	if src.Generation.NumberOfImages != 0 {
		dst.Generation.NumberOfImages = src.Generation.NumberOfImages
	}

	mergeString(&dst.Store.Driver, src.Store.Driver)

	if src.Options != nil {
		if dst.Options == nil {
			dst.Options = &Options{}
		}
		mergeString(&dst.Options.DataDir, src.Options.DataDir)
		if src.Options.Debug {
			dst.Options.Debug = true
		}
	}
}

func mergeString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Options == nil {
		cfg.Options = &Options{}
	}
	if cfg.Options.DataDir == "" {
		cfg.Options.DataDir = filepath.Join(xdg.DataHome, appName)
	}

	if cfg.Store.Driver == "" {
		cfg.Store.Driver = defaultStoreDriver
	}

	if cfg.Gateway.APIKey == "" {
		cfg.Gateway.APIKey = defaultAPIKey
	}
	if cfg.Gateway.ChatModel == "" {
		cfg.Gateway.ChatModel = conversation.DefaultChatModel
	}
	if cfg.Gateway.AnalysisModel == "" {
		cfg.Gateway.AnalysisModel = conversation.DefaultAnalysisModel
	}
	if cfg.Gateway.EditModel == "" {
		cfg.Gateway.EditModel = conversation.DefaultEditModel
	}

	defaults := conversation.DefaultGenerationParams()
	if cfg.Generation.Model == "" {
		cfg.Generation.Model = defaults.Model
	}
	if cfg.Generation.AspectRatio == "" {
		cfg.Generation.AspectRatio = string(defaults.AspectRatio)
	}
	if cfg.Generation.OutputMIMEType == "" {
		cfg.Generation.OutputMIMEType = defaults.OutputMIMEType
	}
	if cfg.Generation.NumberOfImages == 0 {
		cfg.Generation.NumberOfImages = defaults.NumberOfImages
	}
}

// GlobalConfigPath returns the path to the global configuration file.
func GlobalConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, configFileName)
}
