package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LavaJover/shvark-settlement-service/internal/app"
	"github.com/LavaJover/shvark-settlement-service/internal/app/background"
	"github.com/LavaJover/shvark-settlement-service/internal/app/setup"
	"github.com/LavaJover/shvark-settlement-service/internal/config"
	"github.com/LavaJover/shvark-settlement-service/internal/delivery/consumer"
	"github.com/LavaJover/shvark-settlement-service/internal/delivery/grpcapi"
	httpdelivery "github.com/LavaJover/shvark-settlement-service/internal/delivery/http"
	"github.com/LavaJover/shvark-settlement-service/internal/delivery/http/handlers"
	"github.com/LavaJover/shvark-settlement-service/internal/infrastructure/logger"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()
	logger.Setup(cfg.LogConfig, cfg.Env)

	if err := run(cfg); err != nil {
		slog.Error("settlement service stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("settlement service stopped")
}

func run(cfg *config.SettlementConfig) error {
	deps, err := setup.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("init dependencies: %w", err)
	}
	defer deps.Close()

	uc, err := setup.InitializeUseCases(deps)
	if err != nil {
		return fmt.Errorf("init usecases: %w", err)
	}

	// HTTP API
	h := handlers.NewHandler(uc.Order, uc.Wallet, uc.Ledger)
	limiter := httpdelivery.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	router := httpdelivery.NewRouter(h, limiter, prometheus.DefaultGatherer)
	httpServer := httpdelivery.NewServer(
		net.JoinHostPort(cfg.HTTPServer.Host, cfg.HTTPServer.Port),
		router,
		cfg.HTTPServer.ReadTimeout,
		cfg.HTTPServer.WriteTimeout,
	)

	servers := []app.Server{
		httpServer,
		grpcapi.NewServer(net.JoinHostPort(cfg.GRPCServer.Host, cfg.GRPCServer.Port)),
		background.NewBackgroundTasks(uc.Wallet, cfg.Wallet.EscalationInterval, cfg.Wallet.DispatchInterval),
	}
	if deps.Subscriber != nil {
		servers = append(servers, consumer.NewRailConsumer(deps.Subscriber, uc.Wallet))
	} else {
		slog.Warn("no events subscriber configured, rail confirmations are accepted over HTTP only")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("settlement service starting", "env", cfg.Env, "broker", cfg.Events.Broker, "locks", cfg.Locks.Backend)
	return app.NewApp(shutdownTimeout, servers...).Run(ctx)
}
