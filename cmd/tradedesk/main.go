package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"tradedesk/internal/api"
	"tradedesk/internal/auth"
	"tradedesk/internal/config"
	"tradedesk/internal/dashboard"
	"tradedesk/internal/feed"
	"tradedesk/internal/portfolio"
	"tradedesk/internal/trade"
	"tradedesk/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/tradedesk.local.yaml", "path to config file")
	instrument := flag.String("instrument", "", "instrument to stream (overrides config default)")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting tradedesk",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load .env before config so ${VAR} expansion in the config file
	// sees locally provided values.
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file, using system environment")
	}

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"api_url", cfg.API.BaseURL,
		"feed_url", cfg.Feed.URL,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	tokens := tokenSource(cfg.Auth)

	client := api.NewClient(
		cfg.API.BaseURL,
		tokens,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
	)

	store := portfolio.New(client, logger)
	executor := trade.New(client, logger)

	feedCfg := feed.Config{
		URL:              cfg.Feed.URL,
		HandshakeTimeout: cfg.Feed.HandshakeTimeout,
		PingTimeout:      cfg.Feed.PingTimeout,
		WriteTimeout:     cfg.Feed.WriteTimeout,
	}

	ctrl := dashboard.New(client, store, executor, dashboard.FeedOpener(feedCfg, logger), logger)
	defer ctrl.Close()

	updates := ctrl.Subscribe()

	if err := ctrl.Start(ctx); err != nil {
		logger.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}

	symbol := cfg.Dashboard.DefaultInstrument
	if *instrument != "" {
		symbol = *instrument
	}
	ctrl.SelectInstrument(ctx, symbol)

	logger.Info("tradedesk running", "instrument", symbol)

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down...")
			return
		case <-updates:
			logState(logger, ctrl.Snapshot())
		}
	}
}

// tokenSource picks the bearer token source from config. An inline
// token wins over a token file; with neither set, requests go out
// unauthenticated.
func tokenSource(cfg config.AuthConfig) auth.TokenSource {
	switch {
	case cfg.Token != "":
		return auth.Static(cfg.Token)
	case cfg.TokenFile != "":
		return auth.File(cfg.TokenFile)
	default:
		return auth.Env("TRADEDESK_TOKEN")
	}
}

// logState prints a one-line view of the dashboard on each update.
func logState(logger *slog.Logger, snap dashboard.Snapshot) {
	attrs := []any{
		"conn", snap.Conn,
		"instrument", snap.Instrument,
		"holdings", len(snap.Holdings),
	}
	if snap.Latest != nil {
		attrs = append(attrs,
			"price", snap.Latest.Price,
			"change_pct", snap.Latest.ChangePercent,
			"window", len(snap.Window),
		)
	}
	if snap.ConnErr != nil {
		attrs = append(attrs, "conn_error", snap.ConnErr)
	}
	logger.Info("dashboard", attrs...)
}
