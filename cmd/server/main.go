// Package main is the entry point for the DevBoards API server.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"devboards/internal/config"
	"devboards/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	cfg := config.Load()

	if cfg.JWTSecret == config.DefaultJWTSecret {
		logger.Warn("JWT_SECRET not set, using the development default")
	}

	// The SQLite file lives under a data directory that may not exist yet.
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", dbDir),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
