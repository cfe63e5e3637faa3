package config

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"ASK_WEBHOOK_URL", "REPORT_WEBHOOK_URL", "REQUEST_TIMEOUT", "ACCOUNTS", "DEFAULT_ACCOUNT", "LOG_FILE", "LOG_LEVEL", "PARAM_PREFIX"} {
		unsetEnv(t, key)
	}

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, defaultAskURL, cfg.AskURL)
	require.Equal(t, defaultReportURL, cfg.ReportURL)
	require.Equal(t, 30*time.Second, cfg.RequestTimeout)
	require.Equal(t, []string{"0001", "0002", "0003", "0004", "0005"}, cfg.Accounts)
	require.Equal(t, "0001", cfg.DefaultAccount)
	require.Equal(t, slog.LevelInfo, cfg.LogLevel)
	require.Empty(t, cfg.ParamPrefix)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("ASK_WEBHOOK_URL", "https://hooks.example.com/ask")
	t.Setenv("REPORT_WEBHOOK_URL", "https://hooks.example.com/report")
	t.Setenv("REQUEST_TIMEOUT", "45")
	t.Setenv("ACCOUNTS", " 1001, ,1002 ")
	t.Setenv("DEFAULT_ACCOUNT", "1002")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PARAM_PREFIX", "/account-assistant/")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://hooks.example.com/ask", cfg.AskURL)
	require.Equal(t, 45*time.Second, cfg.RequestTimeout)
	require.Equal(t, []string{"1001", "1002"}, cfg.Accounts)
	require.Equal(t, "1002", cfg.DefaultAccount)
	require.Equal(t, slog.LevelDebug, cfg.LogLevel)
	require.Equal(t, "/account-assistant", cfg.ParamPrefix)
	require.Equal(t, "/account-assistant/webhook/ask_url", cfg.AskURLParam())
}

func TestLoad_EmptyAccountsIsFreeForm(t *testing.T) {
	t.Setenv("ACCOUNTS", "")
	t.Setenv("DEFAULT_ACCOUNT", "ACC-9")

	cfg, err := Load()
	require.NoError(t, err)
	require.Empty(t, cfg.Accounts)
	require.Equal(t, "ACC-9", cfg.DefaultAccount)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("ACCOUNTS", "0001,0002")
	t.Setenv("DEFAULT_ACCOUNT", "9999")
	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "DEFAULT_ACCOUNT")
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("X_TIMEOUT", "1m30s")
	require.Equal(t, 90*time.Second, getEnvDuration("X_TIMEOUT", time.Second))
	t.Setenv("X_TIMEOUT", "soon")
	require.Equal(t, time.Second, getEnvDuration("X_TIMEOUT", time.Second))
}

type fakeParams struct {
	values map[string]string
	err    error
	names  []string
}

func (f *fakeParams) GetParameters(_ context.Context, names []string) (map[string]string, error) {
	f.names = names
	return f.values, f.err
}

func TestApplyParams_OverridesPresentValues(t *testing.T) {
	cfg := &Config{
		AskURL:         "http://env/ask",
		ReportURL:      "http://env/report",
		RequestTimeout: time.Second,
		DefaultAccount: "0001",
		LogFile:        "x.log",
		ParamPrefix:    "/aa",
	}
	p := &fakeParams{values: map[string]string{"/aa/webhook/ask_url": "https://ssm/ask"}}

	require.NoError(t, cfg.ApplyParams(context.Background(), p))
	require.Equal(t, []string{"/aa/webhook/ask_url", "/aa/webhook/report_url"}, p.names)
	require.Equal(t, "https://ssm/ask", cfg.AskURL)
	require.Equal(t, "http://env/report", cfg.ReportURL)
}

func TestApplyParams_NoPrefixSkipsLookup(t *testing.T) {
	cfg := &Config{AskURL: "http://env/ask"}
	p := &fakeParams{err: errors.New("must not be called")}
	require.NoError(t, cfg.ApplyParams(context.Background(), p))
	require.Nil(t, p.names)
}

func TestApplyParams_Error(t *testing.T) {
	cfg := &Config{ParamPrefix: "/aa"}
	err := cfg.ApplyParams(context.Background(), &fakeParams{err: errors.New("AccessDenied")})
	require.Error(t, err)
	require.Contains(t, err.Error(), "AccessDenied")
}

// unsetEnv removes key for the duration of the test.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}
