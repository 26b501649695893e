package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/todaybook/gateway/adapters/events"
	"github.com/todaybook/gateway/adapters/hasher"
	"github.com/todaybook/gateway/adapters/identity"
	"github.com/todaybook/gateway/adapters/signer"
	"github.com/todaybook/gateway/adapters/store"
	"github.com/todaybook/gateway/config"
	"github.com/todaybook/gateway/ports"
	"github.com/todaybook/gateway/service"
	transport "github.com/todaybook/gateway/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer func() { _ = redisClient.Close() }()

	tokenSigner, err := signer.New(cfg.AccessTokenSecret, cfg.AccessTokenTTL)
	if err != nil {
		logger.Fatal("init signer", zap.Error(err))
	}
	tokenHasher, err := hasher.New(cfg.RefreshHashSecret)
	if err != nil {
		logger.Fatal("init hasher", zap.Error(err))
	}

	tokens, err := service.NewTokenService(
		store.NewRedisRefreshStore(redisClient),
		tokenHasher,
		tokenSigner,
		cfg.RefreshTokenTTL,
		logger,
	)
	if err != nil {
		logger.Fatal("init token service", zap.Error(err))
	}

	resolver := identity.NewHTTPResolver(cfg.UserServiceURL, &http.Client{
		Timeout: cfg.RequestTimeout,
	})

	var publisher ports.EventPublisher
	if cfg.EventsEnabled {
		wm, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: redisClient},
			watermill.NewStdLogger(false, false),
		)
		if err != nil {
			logger.Fatal("init event publisher", zap.Error(err))
		}
		defer func() { _ = wm.Close() }()
		publisher = events.NewWatermillPublisher(wm)
	}

	auth := service.NewAuthService(
		store.NewRedisExchangeStore(redisClient),
		resolver,
		tokens,
		publisher,
		logger,
	)

	handlers := transport.NewAuthHandlers(auth, tokens.RefreshTTL(), logger)
	router, err := transport.NewRouter(handlers, transport.RouterConfig{
		TrustBoundary: transport.TrustBoundary(tokenSigner, transport.NewPublicMatcher(cfg.PublicPaths), logger),
		RateLimit:     transport.RateLimit(cfg.RateLimitRPM, logger),
		DownstreamURL: cfg.DownstreamURL,
	}, logger)
	if err != nil {
		logger.Fatal("init router", zap.Error(err))
	}

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: cfg.RequestTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("gateway listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("serve", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.Environment == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
