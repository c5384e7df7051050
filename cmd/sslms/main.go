package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tishanW98/Sinhala-Sign-Language-LMS/internal/app"
	"github.com/tishanW98/Sinhala-Sign-Language-LMS/internal/config"
	"github.com/tishanW98/Sinhala-Sign-Language-LMS/internal/logging"
	"github.com/tishanW98/Sinhala-Sign-Language-LMS/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New(logging.Config{}).Fatalf("Failed to load configuration: %v", err)
	}

	log := logging.New(logging.Config{Level: cfg.LogLevel, File: cfg.LogFile})

	application, err := app.New(cfg, log)
	if err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
	defer application.Close()

	srv := server.New(server.Config{
		StaticDir:   cfg.StaticDir,
		Store:       application.Store(),
		Registry:    application.Registry(),
		Log:         log,
		IdleTimeout: cfg.IdleTimeout,
	})

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.WithField("addr", cfg.Addr).Info("starting sign recognition server")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}

	log.Info("server stopped")
}
