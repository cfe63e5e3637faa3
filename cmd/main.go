package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"account-assistant/internal/config"
	"account-assistant/internal/integrations/paramstore"
	"account-assistant/internal/integrations/webhook"
	"account-assistant/internal/tui"
	"account-assistant/internal/usecase"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Configuration (read only here) ----
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI, so logs go to a file.
	logFile, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		slog.Error("failed to open log file", "path", cfg.LogFile, "err", err)
		os.Exit(1)
	}
	defer func() { _ = logFile.Close() }()

	logger := slog.New(slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	if envErr != nil {
		slog.Info("no .env file found, using environment variables")
	}

	// ---- Remote configuration (optional) ----
	if cfg.ParamPrefix != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			slog.Error("failed to load AWS config", "err", err)
			os.Exit(1)
		}
		params, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
		if err != nil {
			slog.Error("failed to create SSM client", "err", err)
			os.Exit(1)
		}
		if err := cfg.ApplyParams(ctx, params); err != nil {
			slog.Error("failed to load webhook parameters", "prefix", cfg.ParamPrefix, "err", err)
			os.Exit(1)
		}
	}

	// ---- Clients ----
	client, err := webhook.NewClient(cfg.AskURL, cfg.ReportURL, webhook.WithLogger(logger))
	if err != nil {
		slog.Error("failed to create webhook client", "err", err)
		os.Exit(1)
	}

	session, err := usecase.NewSession(client, usecase.SessionConfig{
		Accounts:       cfg.Accounts,
		DefaultAccount: cfg.DefaultAccount,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         logger,
	})
	if err != nil {
		slog.Error("failed to create session", "err", err)
		os.Exit(1)
	}

	slog.Info("starting account assistant",
		"ask_url", cfg.AskURL,
		"report_url", cfg.ReportURL,
		"account", session.Account(),
		"timeout", cfg.RequestTimeout,
	)

	// ---- UI ----
	p := tea.NewProgram(tui.New(ctx, session), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		slog.Error("terminal UI stopped", "err", err)
		os.Exit(1)
	}
}
