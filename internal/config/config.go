package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Supported upstream providers and storage backends.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"

	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

type Config struct {
	AppPort      int    `mapstructure:"APP_PORT" validate:"min=1,max=65535"`
	DatabasePath string `mapstructure:"DATABASE_PATH" validate:"required"`
	LogLevel     string `mapstructure:"LOG_LEVEL" validate:"oneof=DEBUG INFO WARN ERROR debug info warn error"`

	UpstreamProvider string `mapstructure:"UPSTREAM_PROVIDER" validate:"oneof=openai anthropic"`
	OpenAIBaseURL    string `mapstructure:"OPENAI_BASE_URL" validate:"required,url"`
	AnthropicBaseURL string `mapstructure:"ANTHROPIC_BASE_URL" validate:"required,url"`
	DefaultModel     string `mapstructure:"DEFAULT_MODEL"`

	Temperature  float64       `mapstructure:"TEMPERATURE" validate:"gte=0,lte=2"`
	MaxTokens    int           `mapstructure:"MAX_TOKENS" validate:"min=1"`
	HistoryLimit int           `mapstructure:"HISTORY_LIMIT" validate:"min=2"`
	RelayTimeout time.Duration `mapstructure:"RELAY_TIMEOUT" validate:"gt=0"`

	CredentialBackend string `mapstructure:"CREDENTIAL_BACKEND" validate:"oneof=sqlite file"`
	CredentialFile    string `mapstructure:"CREDENTIAL_FILE" validate:"required_if=CredentialBackend file"`
	RepositoryBackend string `mapstructure:"REPOSITORY_BACKEND" validate:"oneof=sqlite redis"`
	RedisAddr         string `mapstructure:"REDIS_ADDR" validate:"required_if=RepositoryBackend redis"`
}

// DefaultModelFor returns the configured default model, falling back to a
// sensible per-provider model.
func (c *Config) DefaultModelFor() string {
	if c.DefaultModel != "" {
		return c.DefaultModel
	}
	if c.UpstreamProvider == ProviderAnthropic {
		return "claude-3-5-sonnet-latest"
	}
	return "gpt-4o"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", 8000)
	v.SetDefault("DATABASE_PATH", "/data/cosmic.db")
	v.SetDefault("LOG_LEVEL", "INFO")
	v.SetDefault("UPSTREAM_PROVIDER", ProviderOpenAI)
	v.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("ANTHROPIC_BASE_URL", "https://api.anthropic.com")
	v.SetDefault("DEFAULT_MODEL", "")
	v.SetDefault("TEMPERATURE", 0.7)
	v.SetDefault("MAX_TOKENS", 2000)
	v.SetDefault("HISTORY_LIMIT", 20)
	v.SetDefault("RELAY_TIMEOUT", 30*time.Second)
	v.SetDefault("CREDENTIAL_BACKEND", BackendSQLite)
	v.SetDefault("CREDENTIAL_FILE", "/data/credential.json")
	v.SetDefault("REPOSITORY_BACKEND", BackendSQLite)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
}

// LoadConfig reads configuration from defaults, an optional .env file and the
// environment, in increasing order of precedence. configFile, when non-empty,
// replaces the .env lookup.
func LoadConfig(configFile string) (*Config, error) {
	return load(viper.GetViper(), configFile)
}

func load(v *viper.Viper, configFile string) (*Config, error) {
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(".env")
		v.SetConfigType("env")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the struct tags on Config.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Watch re-reads the config file whenever it changes and hands the new,
// validated config to onChange. Invalid edits are logged and ignored.
func Watch(onChange func(*Config)) {
	v := viper.GetViper()
	if v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := decode(v)
		if err != nil {
			slog.Warn("Ignoring invalid configuration change", "file", e.Name, "error", err)
			return
		}
		slog.Info("Configuration file changed", "file", e.Name)
		onChange(cfg)
	})
	v.WatchConfig()
}
