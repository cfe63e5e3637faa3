// Package config provides application configuration.
package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAskURL    = "http://192.168.18.116:5678/webhook/ask-question"
	defaultReportURL = "http://192.168.18.116:5678/webhook/send-averia"
)

// Config holds all application configuration.
type Config struct {
	AskURL         string
	ReportURL      string
	RequestTimeout time.Duration
	Accounts       []string
	DefaultAccount string
	LogFile        string
	LogLevel       slog.Level
	// ParamPrefix enables loading webhook URLs from SSM Parameter Store.
	ParamPrefix string
}

// ParamsGetter fetches named parameters; unknown names are omitted.
type ParamsGetter interface {
	GetParameters(ctx context.Context, names []string) (map[string]string, error)
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	accounts := getEnvList("ACCOUNTS", []string{"0001", "0002", "0003", "0004", "0005"})

	cfg := &Config{
		AskURL:         getEnv("ASK_WEBHOOK_URL", defaultAskURL),
		ReportURL:      getEnv("REPORT_WEBHOOK_URL", defaultReportURL),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		Accounts:       accounts,
		DefaultAccount: getEnv("DEFAULT_ACCOUNT", firstOr(accounts, "0001")),
		LogFile:        getEnv("LOG_FILE", "account-assistant.log"),
		LogLevel:       getEnvLevel("LOG_LEVEL", slog.LevelInfo),
		ParamPrefix:    strings.TrimRight(strings.TrimSpace(getEnv("PARAM_PREFIX", "")), "/"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.AskURL) == "" {
		return fmt.Errorf("ASK_WEBHOOK_URL cannot be empty")
	}
	if strings.TrimSpace(c.ReportURL) == "" {
		return fmt.Errorf("REPORT_WEBHOOK_URL cannot be empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be > 0")
	}
	if strings.TrimSpace(c.DefaultAccount) == "" {
		return fmt.Errorf("DEFAULT_ACCOUNT cannot be empty")
	}
	if len(c.Accounts) > 0 && !slices.Contains(c.Accounts, c.DefaultAccount) {
		return fmt.Errorf("DEFAULT_ACCOUNT %q is not listed in ACCOUNTS", c.DefaultAccount)
	}
	if c.LogFile == "" {
		return fmt.Errorf("LOG_FILE cannot be empty")
	}
	return nil
}

// AskURLParam and ReportURLParam are the parameter names read under ParamPrefix.
func (c *Config) AskURLParam() string    { return c.ParamPrefix + "/webhook/ask_url" }
func (c *Config) ReportURLParam() string { return c.ParamPrefix + "/webhook/report_url" }

// ApplyParams overrides the webhook URLs with values found in the parameter
// store. Parameters that are absent or blank keep the environment value.
func (c *Config) ApplyParams(ctx context.Context, p ParamsGetter) error {
	if c.ParamPrefix == "" {
		return nil
	}
	values, err := p.GetParameters(ctx, []string{c.AskURLParam(), c.ReportURLParam()})
	if err != nil {
		return fmt.Errorf("config: load webhook parameters: %w", err)
	}
	if v := strings.TrimSpace(values[c.AskURLParam()]); v != "" {
		c.AskURL = v
	}
	if v := strings.TrimSpace(values[c.ReportURLParam()]); v != "" {
		c.ReportURL = v
	}
	return c.Validate()
}

func firstOr(list []string, fallback string) string {
	if len(list) > 0 {
		return list[0]
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	// Plain integers are seconds.
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

// getEnvList splits a comma-separated value. An explicitly empty value yields
// an empty list, which switches account selection to free-form.
func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvLevel(key string, fallback slog.Level) slog.Level {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return fallback
	}
	return level
}
