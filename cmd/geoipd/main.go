package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oschwald/maxminddb-golang"
	"golang.org/x/sync/errgroup"

	"github.com/TomasB/geolookup/internal/config"
	"github.com/TomasB/geolookup/internal/data"
	grpchandler "github.com/TomasB/geolookup/internal/handler/grpc"
	"github.com/TomasB/geolookup/internal/handler/health"
	"github.com/TomasB/geolookup/internal/handler/lookup"
	"github.com/TomasB/geolookup/internal/metrics"
	"github.com/TomasB/geolookup/pkg/geoip/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	slog.Info("service starting", "log_level", cfg.SlogLevel().String())

	if err := run(cfg, logger); err != nil {
		slog.Error("service failed", "error", err)
		os.Exit(1)
	}

	slog.Info("service stopped")
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	var updater *data.Updater
	if cfg.Update.Enabled() {
		updater = data.NewUpdater(cfg.Update, cfg.MMDBPath, logger)
		if err := updater.EnsureExists(); err != nil {
			return err
		}
	}

	// Load MaxMind MMDB
	reader, err := data.NewMmdbReader(cfg.MMDBPath, logger,
		database.WithLocales(cfg.Locales),
		database.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to open MMDB %s: %w", cfg.MMDBPath, err)
	}
	defer reader.Close()

	reader.OnReload = func(metadata maxminddb.Metadata, err error) {
		m.ObserveReload(metadata.BuildEpoch, err)
	}
	metadata := reader.Metadata()
	m.ObserveReload(metadata.BuildEpoch, nil)

	slog.Info("MMDB loaded",
		"path", cfg.MMDBPath,
		"database_type", metadata.DatabaseType,
		"locales", cfg.Locales,
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(cfg, logger, reader, m),
		ReadHeaderTimeout: 10 * time.Second,
	}
	grpcServer := grpchandler.NewServer(grpchandler.NewHandler(reader, m), logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("http server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
		slog.Info("grpc server started", "port", cfg.GRPCPort)
		return grpcServer.Serve(lis)
	})

	if cfg.WatchMMDB {
		g.Go(func() error {
			return reader.Watch(gctx)
		})
	}

	if updater != nil && cfg.Update.Interval > 0 {
		g.Go(func() error {
			// The watcher picks up downloads on its own.
			var onUpdate func() error
			if !cfg.WatchMMDB {
				onUpdate = reader.Reload
			}
			updater.Run(gctx, cfg.Update.Interval, onUpdate)
			return nil
		})
	}

	// Wait for interrupt signal or a failing server, then shut down gracefully
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("service shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		grpcServer.GracefulStop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func newRouter(cfg config.Config, logger *slog.Logger, reader *data.MmdbReader, m *metrics.Metrics) *gin.Engine {
	// Set Gin mode based on log level
	if cfg.SlogLevel() == slog.LevelDebug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(ginLogger(logger))
	router.Use(gin.Recovery())

	healthHandler := health.NewHandler(reader)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	lookupHandler := lookup.NewHandler(reader, m)
	api := router.Group("/api/v1")
	{
		api.GET("/lookup/:kind/:ip", lookupHandler.Lookup)
	}

	return router
}

// ginLogger creates a Gin middleware that logs using slog
func ginLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		statusCode := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"route", c.FullPath(),
			"path", path,
			"status", statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
		}

		switch {
		case len(c.Errors) > 0:
			logger.Error("request completed with errors", append(attrs, "errors", c.Errors.String())...)
		case statusCode >= 500:
			logger.Error("request completed", attrs...)
		case statusCode >= 400:
			logger.Warn("request completed", attrs...)
		case c.FullPath() == "/health" || c.FullPath() == "/ready" || c.FullPath() == "/metrics":
			logger.Debug("request completed", attrs...)
		default:
			logger.Info("request completed", attrs...)
		}
	}
}
