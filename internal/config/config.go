package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string        `mapstructure:"PORT"`
	Env            string        `mapstructure:"ENV"`
	DatabaseURL    string        `mapstructure:"DATABASE_URL"`
	DBMaxConns     int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns     int32         `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins    []string      `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int           `mapstructure:"RATE_LIMIT_BURST"`
	MaxUploadBytes int64         `mapstructure:"MAX_UPLOAD_BYTES"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`

	HederaNetwork    string        `mapstructure:"HEDERA_NETWORK"`
	HederaAccountID  string        `mapstructure:"HEDERA_ACCOUNT_ID"`
	HederaPrivateKey string        `mapstructure:"HEDERA_PRIVATE_KEY"`
	HederaTopicID    string        `mapstructure:"HEDERA_TOPIC_ID"`
	LedgerTimeout    time.Duration `mapstructure:"LEDGER_TIMEOUT"`

	LLMAPIKey      string        `mapstructure:"LLM_API_KEY"`
	LLMBaseURL     string        `mapstructure:"LLM_BASE_URL"`
	LLMModel       string        `mapstructure:"LLM_MODEL"`
	ExtractTimeout time.Duration `mapstructure:"EXTRACT_TIMEOUT"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "3000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("RATE_LIMIT_RPS", 50)
	v.SetDefault("RATE_LIMIT_BURST", 100)
	v.SetDefault("MAX_UPLOAD_BYTES", 100*1024*1024)
	v.SetDefault("REQUEST_TIMEOUT", "2m")
	v.SetDefault("HEDERA_NETWORK", "testnet")
	v.SetDefault("LEDGER_TIMEOUT", "30s")
	v.SetDefault("LLM_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("LLM_MODEL", "gpt-4o-mini")
	v.SetDefault("EXTRACT_TIMEOUT", "60s")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("MAX_UPLOAD_BYTES")
	v.BindEnv("REQUEST_TIMEOUT")
	v.BindEnv("HEDERA_NETWORK")
	v.BindEnv("HEDERA_ACCOUNT_ID")
	v.BindEnv("HEDERA_PRIVATE_KEY")
	v.BindEnv("HEDERA_TOPIC_ID")
	v.BindEnv("LEDGER_TIMEOUT")
	v.BindEnv("LLM_API_KEY")
	v.BindEnv("LLM_BASE_URL")
	v.BindEnv("LLM_MODEL")
	v.BindEnv("EXTRACT_TIMEOUT")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.CORSOrigins) <= 1 {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// NotarizationEnabled reports whether a ledger topic is configured. Absence
// of a topic means notarization is skipped, not failed.
func (c *Config) NotarizationEnabled() bool {
	return c.HederaTopicID != ""
}

// Validate checks that every reachable pipeline stage has its required
// credentials, so a broken deployment fails at startup rather than after a
// document has already been uploaded.
func (c *Config) Validate() error {
	if c.NotarizationEnabled() && (c.HederaAccountID == "" || c.HederaPrivateKey == "") {
		return fmt.Errorf(
			"HEDERA_TOPIC_ID is set (%s) but HEDERA_ACCOUNT_ID / HEDERA_PRIVATE_KEY are not. "+
				"Unset the topic to skip notarization, or provide operator credentials", c.HederaTopicID)
	}
	if c.LLMAPIKey == "" {
		return fmt.Errorf("LLM_API_KEY is required: every upload reaches the extraction stage")
	}
	if c.LedgerTimeout <= 0 || c.ExtractTimeout <= 0 {
		return fmt.Errorf("LEDGER_TIMEOUT and EXTRACT_TIMEOUT must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}
