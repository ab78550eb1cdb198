// Package config loads settings from defaults, an optional YAML file, AGT_*
// environment variables and bound command-line flags, in increasing order of
// precedence.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/petasbytes/frontogether/internal/provider"
	"github.com/petasbytes/frontogether/tools"
)

// EnvPrefix is prepended to every environment variable.
const EnvPrefix = "AGT"

// DefaultOpenAIModel is used when provider=openai and no model is set.
const DefaultOpenAIModel = "gpt-4o"

type Config struct {
	Provider     string   `mapstructure:"provider"`
	Model        string   `mapstructure:"model"`
	APIKey       string   `mapstructure:"api_key"`
	BaseURL      string   `mapstructure:"base_url"`
	MaxTokens    int      `mapstructure:"max_tokens"`
	MaxRetries   int      `mapstructure:"max_retries"`
	MaxDepth     int      `mapstructure:"max_depth"`
	TokenBudget  int      `mapstructure:"token_budget"`
	ToolErrors   string   `mapstructure:"tool_errors"` // abort or feedback
	Workdir      string   `mapstructure:"workdir"`
	SystemPrompt string   `mapstructure:"system_prompt"`
	Tools        []string `mapstructure:"tools"`
	PricingFile  string   `mapstructure:"pricing_file"`
	LogLevel     string   `mapstructure:"log_level"`

	Prompt    PromptConfig    `mapstructure:"prompt"`
	Session   SessionConfig   `mapstructure:"session"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`

	// File is the absolute path of the config file read, if any.
	File string `mapstructure:"-"`
}

type PromptConfig struct {
	IncludeFiles bool  `mapstructure:"include_files"`
	MaxFileBytes int64 `mapstructure:"max_file_bytes"`
}

type SessionConfig struct {
	Store string `mapstructure:"store"` // none, json or sqlite
	Path  string `mapstructure:"path"`
	ID    string `mapstructure:"id"`
}

type TelemetryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

// envAliases binds keys to legacy variable names in addition to AGT_<KEY>.
var envAliases = map[string][]string{
	"token_budget":      {"AGT_TOKEN_BUDGET"},
	"telemetry.enabled": {"AGT_TELEMETRY_ENABLED", "AGT_OBSERVE_JSON"},
	"workdir":           {"AGT_WORKDIR", "AGT_WRITE_ROOT"},
}

// SetDefaults registers every key with its default so environment variables
// reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("provider", "openai")
	v.SetDefault("model", "")
	v.SetDefault("api_key", "")
	v.SetDefault("base_url", "")
	v.SetDefault("max_tokens", 4096)
	v.SetDefault("max_retries", 2)
	v.SetDefault("max_depth", 20)
	v.SetDefault("token_budget", 0)
	v.SetDefault("tool_errors", "abort")
	v.SetDefault("workdir", "")
	v.SetDefault("system_prompt", "")
	v.SetDefault("tools", tools.DefaultNames)
	v.SetDefault("pricing_file", "")
	v.SetDefault("log_level", "warn")
	v.SetDefault("prompt.include_files", true)
	v.SetDefault("prompt.max_file_bytes", 64<<10)
	v.SetDefault("session.store", "none")
	v.SetDefault("session.path", "")
	v.SetDefault("session.id", "default")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.dir", ".agent")
}

// Load fills a Config from v. file names an explicit config file; when empty,
// frontogether.yaml is looked up in the working directory and then in the
// user config directory, and a missing file is not an error.
func Load(v *viper.Viper, file string) (Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range envAliases {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("frontogether")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "frontogether"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || file != "" {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if used := v.ConfigFileUsed(); used != "" {
		if abs, err := filepath.Abs(used); err == nil {
			cfg.File = abs
		}
	}
	cfg.applyDerived()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDerived() {
	if c.Model == "" {
		switch c.Provider {
		case "anthropic":
			c.Model = provider.DefaultAnthropicModel
		default:
			c.Model = DefaultOpenAIModel
		}
	}
	if c.Session.Path == "" {
		switch c.Session.Store {
		case "json":
			c.Session.Path = filepath.Join(c.Telemetry.Dir, "sessions", c.Session.ID+".json")
		case "sqlite":
			c.Session.Path = filepath.Join(c.Telemetry.Dir, "frontogether.db")
		}
	}
}

// Validate rejects values the rest of the program cannot act on.
func (c Config) Validate() error {
	switch c.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("config: unknown provider %q (want openai or anthropic)", c.Provider)
	}
	switch c.ToolErrors {
	case "abort", "feedback":
	default:
		return fmt.Errorf("config: tool_errors must be abort or feedback, got %q", c.ToolErrors)
	}
	switch c.Session.Store {
	case "none", "json", "sqlite":
	default:
		return fmt.Errorf("config: unknown session.store %q (want none, json or sqlite)", c.Session.Store)
	}
	if c.MaxDepth <= 0 {
		return fmt.Errorf("config: max_depth must be positive, got %d", c.MaxDepth)
	}
	if c.TokenBudget < 0 {
		return fmt.Errorf("config: token_budget must not be negative, got %d", c.TokenBudget)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("config: max_tokens must be positive, got %d", c.MaxTokens)
	}
	if c.Prompt.MaxFileBytes < 0 {
		return fmt.Errorf("config: prompt.max_file_bytes must not be negative")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	known := map[string]bool{}
	for _, n := range tools.BuiltinNames() {
		known[n] = true
	}
	for _, n := range c.Tools {
		if !known[n] {
			return fmt.Errorf("config: unknown tool %q", n)
		}
	}
	return nil
}

// FeedbackToolErrors reports whether tool failures go back to the model.
func (c Config) FeedbackToolErrors() bool { return c.ToolErrors == "feedback" }

// ParseLevel maps a log_level value to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("config: unknown log_level %q", s)
}

// SlogLevel returns the configured level, falling back to warn.
func (c Config) SlogLevel() slog.Level {
	l, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelWarn
	}
	return l
}
