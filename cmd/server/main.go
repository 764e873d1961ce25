// Package main provides the entry point for the hypertrophy tracker server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sxroads/hypertrophy/internal/config"
	"github.com/sxroads/hypertrophy/internal/database"
	"github.com/sxroads/hypertrophy/internal/logging"
	"github.com/sxroads/hypertrophy/internal/server"
)

func main() {
	cfg := config.Load()

	var logger *logging.Logger
	var err error
	if cfg.IsDevelopment() {
		logger, err = logging.NewDevelopment()
	} else {
		logger, err = logging.New()
	}
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(database.Config{
		Path:           cfg.DBPath,
		MigrationsPath: cfg.MigrationsPath,
	})
	if err != nil {
		logger.Errorw("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	srv := server.New(server.Config{
		Port:   cfg.Port,
		DB:     db,
		Logger: logger,
	})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Infow("shutting down server")
		_ = srv.Stop(context.Background())
	}()

	logger.Infow("starting server", "port", cfg.Port)
	if err := srv.Start(); err != nil {
		logger.Errorw("server error", "error", err)
		os.Exit(1)
	}
}
