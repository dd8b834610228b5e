//nolint:goconst // Test file uses repeated string literals for clarity.
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/guilhermegouw/atelier/internal/conversation"
)

// Note: Load() and GlobalConfigPath() use xdg paths which are cached at init
// time. The tests exercise LoadFromFile and the helpers directly.

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), configFileName)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "from-env")

	cfg, err := LoadFromFile(writeConfig(t, `{}`))
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.Store.Driver != "sqlite" {
		t.Errorf("Store.Driver = %q, want sqlite", cfg.Store.Driver)
	}
	if cfg.Gateway.APIKey != "$GEMINI_API_KEY" {
		t.Errorf("Gateway.APIKey = %q, want the env reference", cfg.Gateway.APIKey)
	}
	if cfg.APIKey() != "from-env" {
		t.Errorf("APIKey() = %q, want from-env", cfg.APIKey())
	}
	if cfg.Gateway.ChatModel != conversation.DefaultChatModel {
		t.Errorf("Gateway.ChatModel = %q", cfg.Gateway.ChatModel)
	}
	if got := cfg.GenerationParams(); got != conversation.DefaultGenerationParams() {
		t.Errorf("GenerationParams() = %+v", got)
	}
	if cfg.DataDir() == "" {
		t.Error("DataDir() is empty")
	}
}

func TestLoadFromFile_Values(t *testing.T) {
	path := writeConfig(t, `{
		"gateway": {"api_key": "literal", "chat_model": "gemini-2.5-pro"},
		"generation": {"aspect_ratio": "16:9", "number_of_images": 3},
		"store": {"driver": "bolt"},
		"options": {"data_directory": "/tmp/atelier-data", "debug": true}
	}`)

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.APIKey() != "literal" {
		t.Errorf("APIKey() = %q, want literal", cfg.APIKey())
	}
	if cfg.Gateway.ChatModel != "gemini-2.5-pro" {
		t.Errorf("Gateway.ChatModel = %q", cfg.Gateway.ChatModel)
	}
	params := cfg.GenerationParams()
	if params.AspectRatio != conversation.AspectWidescreen || params.NumberOfImages != 3 {
		t.Errorf("GenerationParams() = %+v", params)
	}
	if params.Model != conversation.DefaultImageModel {
		t.Errorf("GenerationParams().Model = %q, want default", params.Model)
	}
	if cfg.Store.Driver != "bolt" {
		t.Errorf("Store.Driver = %q", cfg.Store.Driver)
	}
	if cfg.DataDir() != "/tmp/atelier-data" {
		t.Errorf("DataDir() = %q", cfg.DataDir())
	}
	if cfg.DebugLogPath() != filepath.Join("/tmp/atelier-data", "debug.log") {
		t.Errorf("DebugLogPath() = %q", cfg.DebugLogPath())
	}
	if !cfg.Options.Debug {
		t.Error("Options.Debug = false")
	}
}

func TestLoadFromFile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"store":`},
		{name: "unknown driver", body: `{"store": {"driver": "postgres"}}`},
		{name: "bad base url", body: `{"gateway": {"base_url": "not a url"}}`},
		{name: "bad aspect ratio", body: `{"generation": {"aspect_ratio": "2:1"}}`},
		{name: "too many images", body: `{"generation": {"number_of_images": 9}}`},
		{name: "bad env reference", body: `{"gateway": {"api_key": "${GEMINI_API_KEY"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadFromFile(writeConfig(t, tt.body)); err == nil {
				t.Error("LoadFromFile succeeded, want error")
			}
		})
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.json"))
	if !os.IsNotExist(err) {
		t.Errorf("err = %v, want not exist", err)
	}
}

func TestMergeConfig(t *testing.T) {
	dst := &Config{
		Gateway:    Gateway{APIKey: "global", ChatModel: "global-model"},
		Generation: Generation{NumberOfImages: 2},
		Store:      Store{Driver: "sqlite"},
	}
	src := &Config{
		Gateway:    Gateway{ChatModel: "project-model"},
		Generation: Generation{AspectRatio: "1:1"},
		Options:    &Options{Debug: true},
	}

	mergeConfig(dst, src)

	if dst.Gateway.APIKey != "global" {
		t.Errorf("APIKey = %q, want global kept", dst.Gateway.APIKey)
	}
	if dst.Gateway.ChatModel != "project-model" {
		t.Errorf("ChatModel = %q, want project override", dst.Gateway.ChatModel)
	}
	if dst.Generation.NumberOfImages != 2 || dst.Generation.AspectRatio != "1:1" {
		t.Errorf("Generation = %+v", dst.Generation)
	}
	if dst.Store.Driver != "sqlite" {
		t.Errorf("Store.Driver = %q", dst.Store.Driver)
	}
	if dst.Options == nil || !dst.Options.Debug {
		t.Error("Options.Debug not merged")
	}
}

func TestResolver(t *testing.T) {
	env := map[string]string{"KEY": "secret", "PADDED": "  spaced  "}
	r := &Resolver{lookup: func(name string) (string, bool) {
		v, ok := env[name]
		return v, ok
	}}

	//nolint:govet // Field order optimized for test readability.
	tests := []struct {
		name    string
		value   string
		want    string
		wantErr bool
	}{
		{name: "literal", value: "abc", want: "abc"},
		{name: "empty", value: "", want: ""},
		{name: "plain reference", value: "$KEY", want: "secret"},
		{name: "braced reference", value: "${KEY}", want: "secret"},
		{name: "trimmed", value: "$PADDED", want: "spaced"},
		{name: "unset", value: "$MISSING", want: ""},
		{name: "bare dollar", value: "$", wantErr: true},
		{name: "unterminated", value: "${KEY", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Resolve(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestSetField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", configFileName)

	if err := setField(path, "generation.aspect_ratio", "9:16"); err != nil {
		t.Fatalf("setField on missing file: %v", err)
	}
	if err := setField(path, "store.driver", "bolt"); err != nil {
		t.Fatalf("setField: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading config: %v", err)
	}
	if got := gjson.GetBytes(data, "generation.aspect_ratio").String(); got != "9:16" {
		t.Errorf("generation.aspect_ratio = %q", got)
	}
	if got := gjson.GetBytes(data, "store.driver").String(); got != "bolt" {
		t.Errorf("store.driver = %q", got)
	}
}

func TestSaveToFile_KeepsReference(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "resolved")

	cfg, err := LoadFromFile(writeConfig(t, `{}`))
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	out := filepath.Join(t.TempDir(), "out", configFileName)
	if err := SaveToFile(cfg, out); err != nil {
		t.Fatalf("SaveToFile: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading saved config: %v", err)
	}
	if got := gjson.GetBytes(data, "gateway.api_key").String(); got != "$GEMINI_API_KEY" {
		t.Errorf("saved api_key = %q, want the reference", got)
	}

	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("permissions = %o, want 600", perm)
	}
}

func TestNeedsSetup(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
		want bool
	}{
		{name: "nil config", cfg: nil, want: true},
		{name: "no key", cfg: &Config{}, want: true},
		{name: "resolved key", cfg: &Config{apiKey: "k"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NeedsSetup(tt.cfg); got != tt.want {
				t.Errorf("NeedsSetup() = %v, want %v", got, tt.want)
			}
		})
	}
}
