// Package config handles loading and managing writewise configuration.
//
// Configuration comes from two layers, applied in order:
//   - an optional TOML file following the XDG Base Directory specification
//     ($XDG_CONFIG_HOME/writewise/config.toml);
//   - the process environment (and a .env file in the working directory),
//     which always wins over the file.
//
// The credential pool of the active provider is fixed once the configuration is
// loaded; it is never reloaded for the lifetime of the process.
//
// Example TOML configuration:
//
//	default_provider = "gemini"
//	request_timeout_seconds = 60
//	log_level = "info"
//
//	[llms.gemini]
//	api_keys = ["first-key", "second-key"]
//	model = "gemini-2.0-flash"
//	json_response = true
//
//	[llms.ollama]
//	base_url = "http://localhost:11434"
//	model = "gemma:2b"
//
// Environment variables:
//
//	WRITEWISE_PROVIDER         overrides default_provider
//	WRITEWISE_MODEL            overrides the active provider's model
//	WRITEWISE_BASE_URL         overrides the active provider's base_url
//	WRITEWISE_TIMEOUT_SECONDS  overrides request_timeout_seconds
//	WRITEWISE_LOG_LEVEL        overrides log_level
//	WRITEWISE_API_KEYS         comma-separated keys appended to the active provider
//	GEMINI_API_KEY_1..N        numbered keys appended to [llms.gemini]
//	GROQ_API_KEY_1..N          numbered keys appended to [llms.groq]
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	appName         = "writewise"
	configFileName  = "config.toml"
	envPrefix       = "WRITEWISE"
	DefaultDirPerm  = 0750 // rwxr-x---
	DefaultFilePerm = 0600 // rw------- (contains secrets)

	// DefaultTimeoutSeconds is used when request_timeout_seconds is unset or not positive.
	DefaultTimeoutSeconds = 60
)

// Provider names understood by the factory.
const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
	ProviderOllama = "ollama"
)

// ErrNoCredentials is returned by Validate when a key-based provider has an empty pool.
var ErrNoCredentials = errors.New("no API keys configured")

// Config holds the application's configuration.
type Config struct {
	// DefaultProvider selects the model service. Must match a key in LLMs.
	DefaultProvider string `toml:"default_provider" validate:"required,oneof=gemini groq ollama"`

	// RequestTimeoutSeconds bounds a single model call. 0 selects DefaultTimeoutSeconds;
	// negative values are rejected by Validate.
	RequestTimeoutSeconds int `toml:"request_timeout_seconds" validate:"gte=0"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`

	// LLMs contains provider-specific configurations keyed by provider name.
	LLMs map[string]LLMConfig `toml:"llms" validate:"dive"`

	// UnknownKeys lists TOML keys that did not map onto any field.
	UnknownKeys []string `toml:"-"`
}

// LLMConfig holds configuration specific to an LLM provider.
//
// Gemini and Groq need at least one entry in APIKeys; Ollama needs BaseURL and may
// run without keys.
type LLMConfig struct {
	// BaseURL is the base URL for the API. Required for Ollama, optional override for Groq.
	BaseURL string `toml:"base_url,omitempty" validate:"omitempty,url"`

	// APIKeys is the credential pool, in rotation order.
	APIKeys []string `toml:"api_keys,omitempty"`

	// Model is an optional model name override for the provider.
	Model string `toml:"model,omitempty"`

	// JSONResponse asks providers that support it to return application/json.
	JSONResponse bool `toml:"json_response,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func defaultConfig() Config {
	return Config{
		DefaultProvider:       ProviderGemini,
		RequestTimeoutSeconds: DefaultTimeoutSeconds,
		LogLevel:              "info",
		LLMs: map[string]LLMConfig{
			ProviderGemini: {},
			ProviderGroq:   {},
			ProviderOllama: {BaseURL: "http://localhost:11434"},
		},
	}
}

// GetConfigFilePath determines the configuration file path based on XDG specs:
// $XDG_CONFIG_HOME/writewise/config.toml, falling back to $HOME/.config.
//
// The returned path may not exist.
func GetConfigFilePath() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not determine user home directory: %w", err)
		}
		configHome = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configHome, appName, configFileName), nil
}

// Load builds the runtime configuration: defaults, then the TOML file, then the
// environment. An empty path means the XDG default, which may be absent; an
// explicit path must exist.
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		defaultPath, err := GetConfigFilePath()
		if err == nil {
			if _, statErr := os.Stat(defaultPath); statErr == nil {
				path = defaultPath
			}
		}
	}

	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a specific file path without consulting
// the environment. The file must exist.
func LoadFromFile(filePath string) (Config, error) {
	cfg := defaultConfig()
	if err := decodeFile(filePath, &cfg); err != nil {
		return Config{}, err
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func decodeFile(filePath string, cfg *Config) error {
	_, err := os.Stat(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("configuration file not found at %s", filePath)
		}
		return fmt.Errorf("failed to access config file %s: %w", filePath, err)
	}

	meta, err := toml.DecodeFile(filePath, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML config file %s: %w", filePath, err)
	}
	for _, key := range meta.Undecoded() {
		cfg.UnknownKeys = append(cfg.UnknownKeys, key.String())
	}

	return nil
}

// applyEnv overlays WRITEWISE_* variables and numbered provider keys. A .env file in
// the working directory is loaded first; it never overrides variables already set.
func applyEnv(cfg *Config) error {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if provider := strings.TrimSpace(v.GetString("provider")); provider != "" {
		cfg.DefaultProvider = strings.ToLower(provider)
	}
	if level := strings.TrimSpace(v.GetString("log_level")); level != "" {
		cfg.LogLevel = strings.ToLower(level)
	}
	if raw := strings.TrimSpace(v.GetString("timeout_seconds")); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid %s_TIMEOUT_SECONDS %q: %w", envPrefix, raw, err)
		}
		cfg.RequestTimeoutSeconds = seconds
	}

	if cfg.LLMs == nil {
		cfg.LLMs = make(map[string]LLMConfig)
	}

	active := cfg.LLMs[cfg.DefaultProvider]
	if model := strings.TrimSpace(v.GetString("model")); model != "" {
		active.Model = model
	}
	if baseURL := strings.TrimSpace(v.GetString("base_url")); baseURL != "" {
		active.BaseURL = baseURL
	}
	if keys := v.GetString("api_keys"); keys != "" {
		active.APIKeys = append(active.APIKeys, strings.Split(keys, ",")...)
	}
	cfg.LLMs[cfg.DefaultProvider] = active

	for _, provider := range []string{ProviderGemini, ProviderGroq} {
		numbered := numberedKeys(strings.ToUpper(provider) + "_API_KEY_")
		if len(numbered) == 0 {
			continue
		}
		llmCfg := cfg.LLMs[provider]
		llmCfg.APIKeys = append(llmCfg.APIKeys, numbered...)
		cfg.LLMs[provider] = llmCfg
	}

	return nil
}

// numberedKeys reads PREFIX1, PREFIX2, ... until the first unset index.
func numberedKeys(prefix string) []string {
	var keys []string
	for i := 1; ; i++ {
		value, ok := os.LookupEnv(prefix + strconv.Itoa(i))
		if !ok {
			return keys
		}
		keys = append(keys, value)
	}
}

// normalize trims keys, drops empty ones and removes duplicates while keeping
// the first occurrence, so rotation order is the order of appearance.
func (c *Config) normalize() {
	c.DefaultProvider = strings.ToLower(strings.TrimSpace(c.DefaultProvider))
	for name, llmCfg := range c.LLMs {
		keys := make([]string, 0, len(llmCfg.APIKeys))
		seen := make(map[string]struct{}, len(llmCfg.APIKeys))
		for _, key := range llmCfg.APIKeys {
			trimmed := strings.TrimSpace(key)
			if trimmed == "" {
				continue
			}
			if _, ok := seen[trimmed]; ok {
				continue
			}
			seen[trimmed] = struct{}{}
			keys = append(keys, trimmed)
		}
		llmCfg.APIKeys = keys
		llmCfg.BaseURL = strings.TrimSpace(llmCfg.BaseURL)
		llmCfg.Model = strings.TrimSpace(llmCfg.Model)
		c.LLMs[name] = llmCfg
	}
}

// Validate checks field constraints and that the default provider is usable.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	llmCfg, exists := c.LLMs[c.DefaultProvider]
	if !exists {
		return fmt.Errorf("default provider '%s' is specified but has no configuration section in [llms]", c.DefaultProvider)
	}

	switch c.DefaultProvider {
	case ProviderOllama:
		if llmCfg.BaseURL == "" {
			return fmt.Errorf("base URL for Ollama not found in configuration")
		}
	default:
		if len(llmCfg.APIKeys) == 0 {
			return fmt.Errorf("provider '%s': %w", c.DefaultProvider, ErrNoCredentials)
		}
	}

	return nil
}

// GetLLMConfig retrieves the specific configuration for a given provider.
func (c *Config) GetLLMConfig(provider string) (LLMConfig, bool) {
	llmCfg, exists := c.LLMs[provider]
	return llmCfg, exists
}

// ActiveLLM returns the configuration of the default provider.
func (c *Config) ActiveLLM() LLMConfig {
	return c.LLMs[c.DefaultProvider]
}

// RequestTimeout returns the per-call timeout in seconds, applying the default.
func (c *Config) RequestTimeout() int {
	if c.RequestTimeoutSeconds <= 0 {
		return DefaultTimeoutSeconds
	}
	return c.RequestTimeoutSeconds
}

// CredentialPool returns the default provider's keys in rotation order. Ollama
// without keys gets a single anonymous slot so rotation stays uniform.
func (c *Config) CredentialPool() []string {
	keys := append([]string(nil), c.ActiveLLM().APIKeys...)
	if len(keys) == 0 && c.DefaultProvider == ProviderOllama {
		return []string{""}
	}
	return keys
}

// NewConfig creates a configuration programmatically, without file I/O or the
// environment. Useful for library usage and tests.
func NewConfig(defaultProvider string, timeoutSeconds int, providers map[string]LLMConfig) Config {
	return Config{
		DefaultProvider:       defaultProvider,
		RequestTimeoutSeconds: timeoutSeconds,
		LLMs:                  providers,
	}
}

// Save writes cfg as TOML to filePath, creating parent directories. The file is
// created with DefaultFilePerm because it may contain API keys.
func Save(cfg Config, filePath string) error {
	configDir := filepath.Dir(filePath)
	if err := os.MkdirAll(configDir, DefaultDirPerm); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", configDir, err)
	}

	file, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, DefaultFilePerm)
	if err != nil {
		return fmt.Errorf("failed to create config file %s: %w", filePath, err)
	}
	defer file.Close()

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode configuration to TOML: %w", err)
	}

	return nil
}

// Template returns the default configuration used by Save when bootstrapping a
// new config file.
func Template() Config {
	return defaultConfig()
}
