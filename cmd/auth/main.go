package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhttp "github.com/AlibekovAA/inference-auth/internal/auth/http"
	"github.com/AlibekovAA/inference-auth/internal/auth/service"
	"github.com/AlibekovAA/inference-auth/internal/common/bootstrap"
	commoncrypto "github.com/AlibekovAA/inference-auth/internal/common/crypto"
	commonhttp "github.com/AlibekovAA/inference-auth/internal/common/http"
	srv "github.com/AlibekovAA/inference-auth/internal/common/server"
)

func main() {
	app, err := bootstrap.NewAuthApp(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start auth service: %v\n", err)
		os.Exit(1)
	}

	cfg := app.Config
	log := app.Log

	authService := service.NewAuthService(
		service.AuthServiceDeps{
			Repo:   app.Repo,
			Hasher: commoncrypto.NewBcryptHasher(cfg.BcryptCost),
			Clock:  app.Clock,
			Log:    log,
		},
		service.AuthServiceConfig{
			JWTSecret:               cfg.JWTSecret,
			JWTPreviousSecret:       cfg.JWTPreviousSecret,
			AccessTokenTTL:          cfg.AccessTokenTTL,
			CircuitBreakerThreshold: cfg.CircuitBreakerThreshold,
			CircuitBreakerTimeout:   cfg.CircuitBreakerTimeout,
			CircuitBreakerReset:     cfg.CircuitBreakerReset,
		},
	)

	rateLimiter := commonhttp.NewStrictRateLimiter()
	app.AddShutdownHook(func(ctx context.Context) error {
		log.Infof("auth service: stopping rate limiters")
		rateLimiter.Stop()
		return nil
	})

	handler := authhttp.NewHandler(authService, authhttp.Options{
		RequestTimeout: cfg.RequestTimeout,
		RateLimiter:    rateLimiter,
		Store:          app.Store,
	}, log)

	mux := http.NewServeMux()
	mux.Handle("/", handler)
	mux.Handle("/metrics", promhttp.Handler())

	baseHandler := commonhttp.BuildBaseHandler("auth", log, mux)

	serverConfig := srv.DefaultServerConfig(cfg.HTTPPort)
	server := srv.NewServer(serverConfig, baseHandler, log)

	srv.StartWithGracefulShutdownAndHooks(server, log, "auth", app.ShutdownHooks())
}
