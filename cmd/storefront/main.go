package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/storefront-go/storefront/internal/cart"
	"github.com/storefront-go/storefront/internal/catalog"
	"github.com/storefront-go/storefront/internal/config"
	"github.com/storefront-go/storefront/internal/httpx"
	"github.com/storefront-go/storefront/internal/notification"
	"github.com/storefront-go/storefront/internal/order"
	"github.com/storefront-go/storefront/internal/postgres"
	"github.com/storefront-go/storefront/internal/redisx"
	"github.com/storefront-go/storefront/internal/review"
	"github.com/storefront-go/storefront/internal/user"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "storefront").Logger()

	log.Info().Msg("Storefront starting...")

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	if err := postgres.ApplyMigrations(cfg.Postgres); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pg, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		cancel()
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	rdb, err := redisx.New(ctx, cfg.Redis.Addr)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to redis")
	}
	defer pg.Close()

	catalogRepo := catalog.NewRepository(pg.Pool)
	catalogSvc := catalog.NewService(catalogRepo)

	userRepo := user.NewRepository(pg.Pool)
	userSvc := user.NewService(userRepo)
	sessions := user.NewSessionStore(rdb, cfg.Session.TTL)

	carts := cart.NewStore(rdb)

	notificationRepo := notification.NewRepository(pg.Pool)
	notifier := notification.NewNotifier(notificationRepo)

	orderRepo := order.NewRepository(pg.Pool)
	orderSvc := order.NewService(orderRepo, catalogSvc, userSvc, carts, notifier, order.DeliveryOptions{
		Charge:            cfg.Delivery.Charge,
		FreeDeliveryAbove: cfg.Delivery.FreeDeliveryAbove,
	})

	reviewSvc := review.NewService(review.NewRepository(pg.Pool), catalogSvc, notifier)

	auth := httpx.NewAuthMiddleware(sessions)
	router := httpx.NewRouter(httpx.Handlers{
		Users:         httpx.NewUserHandler(userSvc, sessions),
		Orders:        httpx.NewOrderHandler(orderSvc, catalogSvc),
		Carts:         httpx.NewCartHandler(carts),
		Catalog:       httpx.NewCatalogHandler(catalogSvc),
		Notifications: httpx.NewNotificationHandler(notificationRepo),
		Reviews:       httpx.NewReviewHandler(reviewSvc, userSvc),
		Auth:          auth,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("Shutting down...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Shutdown failed")
	}

	if err := rdb.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close redis client")
	}

	log.Info().Msg("Storefront stopped gracefully")
}
