package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"safehaven/internal/app"
	"safehaven/internal/config"
	"safehaven/internal/logger"
	"safehaven/internal/transport/rest"
)

// @title SafeHaven Survey Gateway
// @version 1.0
// @description Survey-taking workflow for the SafeHaven front end
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Error("startup failed", nil)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.HTTP.Port,
		Handler: rest.NewRouter(a.Handler),
	}

	go func() {
		log.Info("server starting", map[string]interface{}{
			"port":    cfg.HTTP.Port,
			"env":     cfg.Env,
			"backend": cfg.Backend.BaseURL,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("listen failed", nil)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server", nil)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown", nil)
	}
	a.Close(shutdownCtx)

	log.Info("server exited", nil)
}
