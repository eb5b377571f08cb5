// Package config loads service settings from defaults, an optional config
// file, a local .env file and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const dotEnvFile = ".env"

var envKeyReplacer = strings.NewReplacer(".", "_", "-", "_")

// Config holds every setting the service reads at startup.
type Config struct {
	GeminiAPIKey string
	ClaudeAPIKey string

	GamesDir string
	Host     string
	Port     int

	GeminiModel   string
	GeminiBaseURL string
	ClaudeModel   string
	ClaudeBaseURL string

	GenerateMaxTokens int
	UpdateMaxTokens   int
	Temperature       float64
	ProviderTimeout   time.Duration

	CORSOrigins string

	LogLevel  string
	LogFormat string
	LogFile   string
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	var missing []string
	if c.GeminiAPIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	if c.ClaudeAPIKey == "" {
		missing = append(missing, "CLAUDE_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("API keys must be set as environment variables: %s", strings.Join(missing, ", "))
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if strings.TrimSpace(c.GamesDir) == "" {
		return errors.New("games_dir cannot be empty")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("claude_api_key", "")
	v.SetDefault("games_dir", "games")
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("port", 5000)
	v.SetDefault("gemini_model", "gemini-3-flash-preview")
	v.SetDefault("gemini_base_url", "")
	v.SetDefault("claude_model", "claude-sonnet-4-20250514")
	v.SetDefault("claude_base_url", "https://api.anthropic.com/v1")
	v.SetDefault("generate_max_tokens", 20000)
	v.SetDefault("update_max_tokens", 32000)
	v.SetDefault("temperature", 0.7)
	v.SetDefault("provider_timeout", time.Duration(0))
	v.SetDefault("cors_origins", "*")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
}

// New returns a viper instance with defaults and environment binding. The
// optional file at path is merged first, then the .env file in the working
// directory when there is one, so the local .env wins over path.
func New(path string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	if path != "" {
		if err := mergeFile(v, path, ""); err != nil {
			return nil, err
		}
	}
	if _, err := os.Stat(dotEnvFile); err == nil {
		if err := mergeFile(v, dotEnvFile, "env"); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Load builds the Config. path is an optional YAML, JSON or .env file.
func Load(path string) (*Config, error) {
	v, err := New(path)
	if err != nil {
		return nil, err
	}
	return FromViper(v), nil
}

// FromViper reads a Config out of v.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		GeminiAPIKey:      v.GetString("gemini_api_key"),
		ClaudeAPIKey:      v.GetString("claude_api_key"),
		GamesDir:          v.GetString("games_dir"),
		Host:              v.GetString("host"),
		Port:              v.GetInt("port"),
		GeminiModel:       v.GetString("gemini_model"),
		GeminiBaseURL:     v.GetString("gemini_base_url"),
		ClaudeModel:       v.GetString("claude_model"),
		ClaudeBaseURL:     v.GetString("claude_base_url"),
		GenerateMaxTokens: v.GetInt("generate_max_tokens"),
		UpdateMaxTokens:   v.GetInt("update_max_tokens"),
		Temperature:       v.GetFloat64("temperature"),
		ProviderTimeout:   v.GetDuration("provider_timeout"),
		CORSOrigins:       v.GetString("cors_origins"),
		LogLevel:          v.GetString("log.level"),
		LogFormat:         v.GetString("log.format"),
		LogFile:           v.GetString("log.file"),
	}
}

// mergeFile reads a file into its own viper instance and merges it as
// config-layer settings, so environment variables still take precedence.
func mergeFile(v *viper.Viper, path, configType string) error {
	fv := viper.New()
	fv.SetConfigFile(path)
	if configType != "" {
		fv.SetConfigType(configType)
	}
	if err := fv.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if configType == "env" || strings.HasSuffix(path, dotEnvFile) {
		return v.MergeConfigMap(envFileSettings(fv, v.AllKeys()))
	}
	return v.MergeConfigMap(fv.AllSettings())
}

// envFileSettings maps the flat NAME=value pairs of a .env file onto the
// known keys, e.g. LOG_LEVEL onto log.level.
func envFileSettings(fv *viper.Viper, keys []string) map[string]any {
	settings := map[string]any{}
	for _, key := range keys {
		name := strings.ToLower(envKeyReplacer.Replace(key))
		if !fv.IsSet(name) {
			continue
		}
		node := settings
		parts := strings.Split(key, ".")
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = fv.Get(name)
	}
	return settings
}
