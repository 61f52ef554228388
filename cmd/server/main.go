package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"

	"waste_tracker/internal/config"
	"waste_tracker/internal/logger"
	"waste_tracker/internal/routes"
)

func main() {
	settings, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	// Initialize structured logging to file
	logWriter := logger.Setup(logger.Options{
		Level:      settings.Log.Level,
		Format:     settings.Log.Format,
		File:       settings.Log.File,
		MaxSizeMB:  settings.Log.MaxSizeMB,
		MaxBackups: settings.Log.MaxBackups,
		MaxAgeDays: settings.Log.MaxAgeDays,
	})

	if settings.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to the database
	if err := config.InitDB(settings); err != nil {
		logrus.WithError(err).Fatal("database setup failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := config.InitStorage(ctx, settings); err != nil {
		logrus.WithError(err).Fatal("photo storage setup failed")
	}

	r, err := routes.SetupRouter(logWriter)
	if err != nil {
		logrus.WithError(err).Fatal("router setup failed")
	}

	srv := &http.Server{
		Addr:         "0.0.0.0:" + settings.Port,
		Handler:      r,
		ReadTimeout:  settings.ReadTimeout,
		WriteTimeout: settings.WriteTimeout,
		IdleTimeout:  settings.IdleTimeout,
	}

	go func() {
		logrus.WithField("addr", srv.Addr).Info("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server stopped")
		}
	}()

	<-ctx.Done()
	logrus.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("graceful shutdown failed")
	}
	if sqlDB, err := config.GetDB().DB(); err == nil {
		_ = sqlDB.Close()
	}
}
