package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/mateovidal/tradewind-backend/api/routes"
	authsvc "github.com/mateovidal/tradewind-backend/internal/auth"
	listingsvc "github.com/mateovidal/tradewind-backend/internal/listings"
	messagesvc "github.com/mateovidal/tradewind-backend/internal/messages"
	ordersvc "github.com/mateovidal/tradewind-backend/internal/orders"
	paymentsvc "github.com/mateovidal/tradewind-backend/internal/payments"
	reviewsvc "github.com/mateovidal/tradewind-backend/internal/reviews"
	"github.com/mateovidal/tradewind-backend/internal/users"
	stripewebhook "github.com/mateovidal/tradewind-backend/internal/webhooks/stripe"
	wishlistsvc "github.com/mateovidal/tradewind-backend/internal/wishlist"
	"github.com/mateovidal/tradewind-backend/pkg/config"
	"github.com/mateovidal/tradewind-backend/pkg/db"
	"github.com/mateovidal/tradewind-backend/pkg/logger"
	"github.com/mateovidal/tradewind-backend/pkg/metrics"
	"github.com/mateovidal/tradewind-backend/pkg/migrate"
	"github.com/mateovidal/tradewind-backend/pkg/redis"
	"github.com/mateovidal/tradewind-backend/pkg/stripe"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	paymentMetrics := metrics.NewPaymentMetrics(registry)

	userRepo := users.NewRepository(dbClient.DB())
	listingRepo := listingsvc.NewRepository(dbClient.DB())
	orderRepo := ordersvc.NewRepository(dbClient.DB())

	authService, err := authsvc.NewService(authsvc.ServiceParams{
		UserRepo:    userRepo,
		JWTConfig:   cfg.JWT,
		PasswordCfg: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	listingService, err := listingsvc.NewService(listingsvc.ServiceParams{ListingRepo: listingRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create listing service", err)
		os.Exit(1)
	}

	reviewService, err := reviewsvc.NewService(reviewsvc.ServiceParams{
		DB:          dbClient,
		ReviewRepo:  reviewsvc.NewRepository(dbClient.DB()),
		ListingRepo: listingRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create review service", err)
		os.Exit(1)
	}

	orderService, err := ordersvc.NewService(ordersvc.ServiceParams{
		OrderRepo:   orderRepo,
		ListingRepo: listingRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	messageService, err := messagesvc.NewService(messagesvc.ServiceParams{
		MessageRepo: messagesvc.NewRepository(dbClient.DB()),
		UserRepo:    userRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create message service", err)
		os.Exit(1)
	}

	wishlistService, err := wishlistsvc.NewService(wishlistsvc.ServiceParams{
		WishlistRepo: wishlistsvc.NewRepository(dbClient.DB()),
		ListingRepo:  listingRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create wishlist service", err)
		os.Exit(1)
	}

	paymentService, err := paymentsvc.NewService(paymentsvc.ServiceParams{
		DB:        dbClient,
		TxRepo:    paymentsvc.NewRepository(dbClient.DB()),
		OrderRepo: orderRepo,
		Checkout:  stripeClient,
		StripeCfg: cfg.Stripe,
		Metrics:   paymentMetrics,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payment service", err)
		os.Exit(1)
	}

	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		Payments: paymentService,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	webhookDedup, err := stripewebhook.NewEventDedup(redisClient, 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook dedup", err)
		os.Exit(1)
	}

	handler := routes.NewRouter(routes.Deps{
		Config:               cfg,
		Logger:               logg,
		Registry:             registry,
		DBPinger:             dbClient,
		RedisPinger:          redisClient,
		Users:                userRepo,
		RateStore:            redisClient,
		Auth:                 authService,
		Listings:             listingService,
		Reviews:              reviewService,
		Orders:               orderService,
		Messages:             messageService,
		Wishlist:             wishlistService,
		Payments:             paymentService,
		StripeWebhookService: webhookService,
		StripeWebhookDedup:   webhookDedup,
		StripeSigning:        stripeClient,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stop:
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}

	closeErr := multierr.Combine(redisClient.Close(), dbClient.Close())
	if closeErr != nil {
		logg.Error(ctx, "error closing clients", closeErr)
	}
	logg.Info(ctx, "api server stopped")
}
