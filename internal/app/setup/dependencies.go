package setup

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/LavaJover/shvark-settlement-service/internal/config"
	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	publisher "github.com/LavaJover/shvark-settlement-service/internal/infrastructure/kafka"
	"github.com/LavaJover/shvark-settlement-service/internal/infrastructure/locker"
	"github.com/LavaJover/shvark-settlement-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-settlement-service/internal/infrastructure/migrate"
	natsbus "github.com/LavaJover/shvark-settlement-service/internal/infrastructure/nats"
	"github.com/LavaJover/shvark-settlement-service/internal/infrastructure/postgres"
	"github.com/LavaJover/shvark-settlement-service/internal/infrastructure/postgres/repository"
	"github.com/LavaJover/shvark-settlement-service/internal/usecase/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Dependencies struct {
	Config       *config.SettlementConfig
	DB           *gorm.DB
	Locker       domain.Locker
	Transactor   *repository.DefaultTransactor
	Publisher    domain.PublisherPort
	Subscriber   domain.SubscriberPort
	Metrics      *metrics.SettlementMetrics
	Repositories *Repositories

	closers []func() error
}

type Repositories struct {
	LedgerRepo     domain.LedgerRepository
	OrderRepo      domain.OrderRepository
	EscrowRepo     domain.EscrowRepository
	SettlementRepo domain.SettlementRepository
	DepositRepo    domain.DepositRepository
	WithdrawalRepo domain.WithdrawalRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		LedgerRepo:     repository.NewDefaultLedgerRepository(db),
		OrderRepo:      repository.NewDefaultOrderRepository(db),
		EscrowRepo:     repository.NewDefaultEscrowRepository(db),
		SettlementRepo: repository.NewDefaultSettlementRepository(db),
		DepositRepo:    repository.NewDefaultDepositRepository(db),
		WithdrawalRepo: repository.NewDefaultWithdrawalRepository(db),
	}
}

func InitializeDependencies(cfg *config.SettlementConfig) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		Metrics: metrics.NewSettlementMetrics(prometheus.DefaultRegisterer),
	}

	deps.DB = postgres.MustInitDB(cfg)
	if sqlDB, err := deps.DB.DB(); err == nil {
		deps.closers = append(deps.closers, sqlDB.Close)
	}
	if !cfg.SettlementDB.AutoMigrate && cfg.SettlementDB.Driver != "sqlite" {
		if err := migrate.RunMigrations(deps.DB, cfg.SettlementDB.MigrationsPath); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}

	lk, err := initLocker(deps, cfg)
	if err != nil {
		return nil, fmt.Errorf("locker: %w", err)
	}
	deps.Locker = lk
	deps.Transactor = repository.NewDefaultTransactor(deps.DB, lk, cfg.Locks.AcquireTimeout)

	if err := initBroker(deps, cfg); err != nil {
		return nil, fmt.Errorf("events broker: %w", err)
	}

	deps.Repositories = NewRepositories(deps.DB)
	return deps, nil
}

func initLocker(deps *Dependencies, cfg *config.SettlementConfig) (domain.Locker, error) {
	switch cfg.Locks.Backend {
	case "", "local":
		return locker.NewLocalLocker(), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Locks.AcquireTimeout)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("ping redis %s: %w", cfg.Redis.Addr, err)
		}
		deps.closers = append(deps.closers, client.Close)
		return locker.NewRedisLocker(client, "settlement:lock:", cfg.Locks.TTL), nil
	default:
		return nil, fmt.Errorf("unsupported lock backend %q", cfg.Locks.Backend)
	}
}

func initBroker(deps *Dependencies, cfg *config.SettlementConfig) error {
	switch cfg.Events.Broker {
	case "", "kafka":
		if len(cfg.Events.KafkaBrokers) == 0 {
			return fmt.Errorf("events.kafka_brokers is empty")
		}
		pub := publisher.NewDefaultKafkaPublisher(cfg.Events.KafkaBrokers)
		deps.closers = append(deps.closers, pub.Close)
		deps.Publisher = pub
		deps.Subscriber = publisher.NewDefaultKafkaSubscriber(cfg.Events.KafkaBrokers)
	case "nats":
		nc, err := natsbus.Connect(cfg.Events.NatsURL)
		if err != nil {
			return err
		}
		deps.closers = append(deps.closers, func() error {
			nc.Close()
			return nil
		})
		bus := natsbus.NewBus(nc)
		deps.Publisher = bus
		deps.Subscriber = bus
	case "none":
		slog.Warn("events broker disabled, events are only logged")
		deps.Publisher = events.NewLogPublisher(slog.Default())
	default:
		return fmt.Errorf("unsupported events broker %q", cfg.Events.Broker)
	}
	return nil
}

// Close releases external connections in reverse order of creation.
func (d *Dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			slog.Warn("failed to close dependency", "error", err)
		}
	}
}
