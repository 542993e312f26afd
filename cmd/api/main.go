// Command api serves the payments portal HTTP API.
//
// @title           International Payments Portal API
// @version         1.0
// @description     Customer registration, login and role-gated access for the payments portal.
// @BasePath        /api
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/intlpay/payments-portal/internal/api"
	"github.com/intlpay/payments-portal/internal/api/handler"
	"github.com/intlpay/payments-portal/internal/core/service"
	"github.com/intlpay/payments-portal/internal/core/token"
	"github.com/intlpay/payments-portal/internal/infrastructure/config"
	mongostore "github.com/intlpay/payments-portal/internal/infrastructure/db/mongo"
	redisstore "github.com/intlpay/payments-portal/internal/infrastructure/db/redis"
	"github.com/intlpay/payments-portal/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		l := logger.Get()
		l.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Init(logger.Options{Service: "payments-portal"})
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "payments-portal",
		Caller:  !cfg.IsProduction(),
	})

	mongoClient, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()
	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close")
		}
	}()

	tokens, err := token.NewManager(cfg.Auth.JWTSecret, token.DefaultTTL, token.WithIssuer(cfg.Auth.Issuer))
	if err != nil {
		return err
	}

	users := mongostore.NewUserRepository(db)
	payments := mongostore.NewPaymentRepository(db)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	e := api.NewRouter(api.Deps{
		Logger:         log,
		Auth:           service.NewAuthService(users, tokens, cfg.Auth.BcryptCost, log),
		Users:          service.NewUserService(users),
		Payments:       service.NewPaymentService(payments, log),
		Tokens:         tokens,
		RateLimitStore: redisstore.NewRateLimiter(rdb, cfg.RateLimit.Max, cfg.RateLimit.Window, log),
		Checks: map[string]handler.Pinger{
			"mongodb": handler.PingFunc(func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }),
			"redis":   handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
		},
		Registry:       reg,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Production:     cfg.IsProduction(),
		BodyLimit:      cfg.HTTP.BodyLimit,
	})
	e.Server.ReadHeaderTimeout = 10 * time.Second
	e.Server.IdleTimeout = 2 * time.Minute

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		if cfg.TLSEnabled() {
			log.Info().Str("addr", addr).Msg("listening (https)")
			errCh <- e.StartTLS(addr, cfg.HTTP.TLSCertFile, cfg.HTTP.TLSKeyFile)
			return
		}
		log.Warn().Str("addr", addr).Msg("listening (http, TLS disabled)")
		errCh <- e.Start(addr)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
