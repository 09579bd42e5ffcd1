package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stravadash/internal/config"
	"stravadash/internal/database"
	"stravadash/internal/logger"
	"stravadash/internal/server"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := logger.New(os.Stderr, cfg.Env, cfg.LogLevel)
	slog.SetDefault(log)
	log.Info("starting stravadash web", "env", cfg.Env,
		"direct", cfg.Strava.DirectTokenEnabled(), "oauth", cfg.Strava.OAuthEnabled())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg.DB.URL)
	if err != nil {
		log.Error("error opening database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	srv := server.NewServer(cfg, db, log)

	serveErr := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			log.Error("http server failed", "err", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown incomplete", "err", err)
	}
}
