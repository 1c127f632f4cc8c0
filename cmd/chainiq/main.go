package main

import (
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/vedant461/Eurekathon-ChainIQ/internal/config"
	"github.com/vedant461/Eurekathon-ChainIQ/internal/infra/db"
	httpinfra "github.com/vedant461/Eurekathon-ChainIQ/internal/infra/http"
)

func main() {
	cfg := config.FromEnv()
	setupLogging(cfg.LogLevel)

	store, err := db.NewStore(cfg)
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}

	srv := httpinfra.NewServer(cfg, store)
	if err := srv.Run(); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}
