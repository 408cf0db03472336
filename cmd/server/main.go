package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/cuepoint/internal/auth"
	"github.com/Nixie-Tech-LLC/cuepoint/internal/config"
	"github.com/Nixie-Tech-LLC/cuepoint/internal/db"
	"github.com/Nixie-Tech-LLC/cuepoint/internal/model"
	"github.com/Nixie-Tech-LLC/cuepoint/internal/mqtt"
	"github.com/Nixie-Tech-LLC/cuepoint/internal/redis"
)

func main() {
	loadDotEnv()

	// load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogging(cfg.LogLevel, cfg.IsDevelopment())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// open the database and create tables if absent
	conn, err := db.Open(ctx, cfg.DatabaseURL, db.DefaultOptions)
	if err != nil {
		log.Fatal().Err(err).Msg("db init")
	}
	store := db.NewStore(conn)
	defer store.Close()

	users, err := auth.NewInMemoryUserStore(
		auth.UserSeed{Username: cfg.AdminUsername, Password: cfg.AdminPassword, Role: model.RoleAdmin},
		auth.UserSeed{Username: cfg.UserUsername, Password: cfg.UserPassword, Role: model.RoleUser},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("seed users")
	}
	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTAlgorithm)
	if err != nil {
		log.Fatal().Err(err).Msg("token service")
	}

	deps := Dependencies{
		Store:         store,
		Authenticator: auth.NewAuthenticator(users),
		Tokens:        tokens,
		Cache:         redis.NoopCache{},
		Events:        mqtt.NoopPublisher{},
	}

	if cfg.RedisAddress != "" {
		rdb := redis.NewClient(cfg.RedisAddress, cfg.RedisUsername, cfg.RedisPassword)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis unreachable, cache will miss until it recovers")
		}
		deps.Cache = redis.NewCache(rdb, cfg.CacheTTL)
		log.Info().Str("addr", cfg.RedisAddress).Msg("media cache enabled")
	}

	if cfg.MQTTBrokerURL != "" {
		notifier, err := mqtt.Connect(cfg.MQTTBrokerURL, cfg.MQTTClientID, cfg.MQTTTopicPrefix)
		if err != nil {
			log.Fatal().Err(err).Msg("mqtt connect")
		}
		defer notifier.Close()
		deps.Events = notifier
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	RegisterRoutes(r, cfg, deps)

	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.ServerAddress).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
