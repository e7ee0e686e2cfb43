// README: Entry point; loads config, wires services, starts the HTTP server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ridenow/internal/auth"
	"ridenow/internal/config"
	httptransport "ridenow/internal/http"
	"ridenow/internal/infra"
	"ridenow/internal/maps"
	"ridenow/internal/modules/identity"
	"ridenow/internal/modules/matching"
	"ridenow/internal/modules/payment"
	"ridenow/internal/modules/pricing"
	"ridenow/internal/modules/rating"
	"ridenow/internal/modules/ride"
	"ridenow/internal/modules/wallet"
	"ridenow/internal/notify"
)

func main() {
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := infra.Migrate(ctx, dbPool); err != nil {
		log.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	defer redisClient.Close()

	var events ride.EventPublisher = notify.NopPublisher{}
	if cfg.AMQP.URL != "" {
		conn, err := infra.NewRabbitMQ(cfg.AMQP.URL)
		if err != nil {
			log.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer conn.Close()

		pub, err := notify.NewPublisher(conn)
		if err != nil {
			log.Error("failed to open rabbitmq channel", "error", err)
			os.Exit(1)
		}
		defer pub.Close()
		events = pub
	}

	var distancer pricing.Distancer = pricing.Haversine{}
	if cfg.Maps.APIKey != "" {
		ds, err := maps.NewDistanceService(cfg.Maps.APIKey)
		if err != nil {
			log.Error("failed to init maps client", "error", err)
			os.Exit(1)
		}
		distancer = ds
	}
	fareStrategy := pricing.NewDefaultFare(distancer)

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)

	walletStore := wallet.NewStore(dbPool)
	walletSvc := wallet.NewService(walletStore)

	identityStore := identity.NewStore(dbPool)
	identitySvc := identity.NewService(identityStore, tokens, walletSvc)

	paymentStore := payment.NewStore(dbPool)
	paymentSvc := payment.NewService(paymentStore, walletSvc)

	matchingStore := matching.NewStore(dbPool, redisClient)
	strategy, err := matching.NewStrategy(cfg.Matching, matchingStore)
	if err != nil {
		log.Error("failed to build matching strategy", "error", err)
		os.Exit(1)
	}
	matchingSvc := matching.NewService(matchingStore, strategy)

	rideStore := ride.NewStore(dbPool)
	rideSvc := ride.NewService(rideStore, matchingSvc, matchingSvc, identitySvc, identitySvc, fareStrategy, paymentSvc, events, log)

	ratingStore := rating.NewStore(dbPool)
	ratingSvc := rating.NewService(ratingStore, rideSvc, identitySvc)

	handler := httptransport.NewServer(httptransport.ServerDeps{
		Identity: identitySvc,
		Rides:    rideSvc,
		Matching: matchingSvc,
		Wallets:  walletSvc,
		Ratings:  ratingSvc,
		Verifier: tokens,
		Logger:   log,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler.Routes()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown error", "error", err)
		}
	}()

	log.Info("listening", "addr", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
