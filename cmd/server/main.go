package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	httpapi "github.com/barterhub/barterhub/internal/api/http"
	"github.com/barterhub/barterhub/internal/application/auth"
	"github.com/barterhub/barterhub/internal/application/item"
	"github.com/barterhub/barterhub/internal/application/location"
	"github.com/barterhub/barterhub/internal/application/trade"
	"github.com/barterhub/barterhub/internal/application/user"
	"github.com/barterhub/barterhub/internal/config"
	"github.com/barterhub/barterhub/internal/infrastructure/events"
	"github.com/barterhub/barterhub/internal/infrastructure/metrics"
	"github.com/barterhub/barterhub/internal/infrastructure/postgres"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db error: %v", err)
	}
	defer pool.Close()

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	// repositories
	userRepo := postgres.NewUserRepository(pool)
	sessionRepo := postgres.NewSessionRepository(pool)
	itemRepo := postgres.NewItemRepository(pool)
	locationRepo := postgres.NewLocationRepository(pool)
	tradeRepo := postgres.NewTradeRepository(pool)

	// infrastructure
	tradeMetrics := metrics.NewTradeMetrics()
	publisher := events.NewKafkaPublisher(cfg.Brokers(), cfg.KafkaTopic, logger)
	defer publisher.Close()

	// services
	userSvc := user.NewService(userRepo, logger)
	authSvc := auth.NewService(userRepo, sessionRepo, cfg.SessionTTL, logger)
	itemSvc := item.NewService(itemRepo, locationRepo, logger)
	locationSvc := location.NewService(locationRepo, logger)
	tradeSvc := trade.NewService(tradeRepo, tradeRepo, tradeRepo, itemRepo, userRepo, locationRepo, publisher, tradeMetrics, logger)

	// API server
	apiServer := httpapi.NewServer(tradeSvc, authSvc, userSvc, itemSvc, locationSvc, cfg.SessionCookieName, cfg.SessionCookieSecure)

	httpServer := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      apiServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// session cleanup loop
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if n, err := sessionRepo.DeleteExpired(context.Background()); err == nil && n > 0 {
				logger.Info().Int("count", n).Msg("expired sessions removed")
			}
		}
	}()

	// start server
	go func() {
		logger.Info().Str("addr", cfg.ServerAddr).Msg("http server started")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctxShutdown)
}
