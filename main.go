package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"medwaste/pkg/api"
	"medwaste/pkg/config"
	"medwaste/pkg/health"
	"medwaste/pkg/logger"
	"medwaste/pkg/metrics"
	"medwaste/pkg/services"
	"medwaste/pkg/storage"
	"medwaste/pkg/validation"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file loaded")
	}

	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	zlog, err := logger.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer zlog.Sync()

	if cfg.ConfigFile == "" {
		zlog.Info("No config file found, using environment variables only")
	} else {
		zlog.Info("Loaded config file", zap.String("path", cfg.ConfigFile))
	}

	m := metrics.NewMetrics(prometheus.DefaultRegisterer)

	store, err := openStore(cfg, zlog)
	if err != nil {
		zlog.Fatal("Error opening store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer store.Close()
	observed := storage.WithObserver(store, m.ObserveStore)

	loc, err := cfg.Location()
	if err != nil {
		zlog.Fatal("Error loading time zone", zap.Error(err))
	}

	// Initialize services
	v := validation.New()
	identities := services.NewIdentityService(observed, v, cfg.SessionTTL, zlog, m)
	bookings := services.NewBookingService(observed, identities, v, loc, zlog, m)
	dashboard := services.NewDashboardService(identities, bookings)

	monitor := health.NewMonitor(observed, cfg.StoreDriver, zlog)
	if err := monitor.Start(cfg.HealthCheckInterval); err != nil {
		zlog.Fatal("Error starting health monitor", zap.Error(err))
	}
	defer monitor.Stop()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize handlers and routes
	handlers := api.NewHandlers(identities, bookings, dashboard, monitor, m, zlog, cfg.RedirectDelay)
	router, err := api.NewRouter(handlers, api.RouterConfig{
		CORSOrigins:       cfg.CORSOrigins,
		MaxRequestsPerMin: cfg.MaxRequestsPerMin,
		TrustedProxies:    cfg.TrustedProxies,
		SessionTTL:        cfg.SessionTTL,
		Gatherer:          prometheus.DefaultGatherer,
		Logger:            zlog,
	})
	if err != nil {
		zlog.Fatal("Error building router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: router,
	}

	go func() {
		zlog.Info("Server starting", zap.String("addr", srv.Addr), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("Error starting server", zap.Error(err))
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zlog.Error("Server forced to shutdown", zap.Error(err))
	}
	zlog.Info("Server stopped")
}

func openStore(cfg *config.Config, logger *zap.Logger) (storage.Store, error) {
	switch cfg.StoreDriver {
	case "memory":
		return storage.NewMemoryStore(), nil
	case "sqlite":
		return storage.NewSQLiteStore(cfg.SQLitePath, logger)
	case "redis":
		client := storage.NewRedisClient(storage.RedisConfig{
			Address:  cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store := storage.NewRedisStore(client)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
