// Command server runs the CodeFix API: code execution, AI diagnosis,
// and run history.
//
// Configuration is taken from the environment (a .env file is loaded
// if present):
//
//	PORT            HTTP port (default 8080)
//	DB_PATH         SQLite database file (default data/codefix.db)
//	AI_API_KEY      completion API key; diagnosis is disabled when unset
//	AI_BASE_URL     completion API base URL (optional override)
//	AI_MODEL        completion model name (optional override)
//	AUTH_SECRET     bearer-token secret for /api/history; public when unset
//	ALLOWED_ORIGINS comma-separated CORS allowlist
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"github.com/tahmid/codefix/internal/ai"
	"github.com/tahmid/codefix/internal/server"
	"github.com/tahmid/codefix/internal/service"
)

func main() {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: slog.LevelDebug,
	}))

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	dbPath := "data/codefix.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(dbPath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	var completer service.Completer
	if apiKey := os.Getenv("AI_API_KEY"); apiKey != "" {
		cfg := ai.DefaultConfig()
		cfg.APIKey = apiKey
		if baseURL := os.Getenv("AI_BASE_URL"); baseURL != "" {
			cfg.BaseURL = baseURL
		}
		if model := os.Getenv("AI_MODEL"); model != "" {
			cfg.Model = model
		}

		client, err := ai.NewClient(cfg, logger)
		if err != nil {
			logger.Error("failed to create AI client", slog.String("error", err.Error()))
			os.Exit(1)
		}
		completer = client
		logger.Info("AI diagnosis enabled", slog.String("model", cfg.Model))
	} else {
		logger.Warn("AI_API_KEY not set, diagnosis endpoints will report unavailable")
	}

	authSecret := os.Getenv("AUTH_SECRET")
	if authSecret == "" {
		logger.Warn("AUTH_SECRET not set, /api/history is public")
	}

	var origins []string
	if raw := os.Getenv("ALLOWED_ORIGINS"); raw != "" {
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	cfg := server.Config{
		Port:           port,
		DBPath:         dbPath,
		AuthSecret:     authSecret,
		AllowedOrigins: origins,
	}

	srv, err := server.New(cfg, logger, completer)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
