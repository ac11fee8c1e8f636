package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/shopspring/decimal"
)

type SettlementConfig struct {
	Env          string           `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer   `yaml:"http_server"`
	GRPCServer   `yaml:"grpc_server"`
	SettlementDB `yaml:"settlement_db"`
	LogConfig    `yaml:"log_config"`
	Locks        `yaml:"locks"`
	Redis        `yaml:"redis"`
	Events       `yaml:"events"`
	Fees         `yaml:"fees"`
	Wallet       `yaml:"wallet"`
	RateLimit    `yaml:"rate_limit"`
	Tokens       map[string]int32 `yaml:"tokens"`
}

type HTTPServer struct {
	Host         string        `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port         string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env-default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env-default:"15s"`
}

type GRPCServer struct {
	Host string `yaml:"host" env:"GRPC_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"GRPC_PORT" env-default:"50051"`
}

type SettlementDB struct {
	// Driver is postgres or sqlite.
	Driver         string `yaml:"driver" env:"DB_DRIVER" env-default:"postgres"`
	Dsn            string `yaml:"dsn" env:"DB_DSN"`
	AutoMigrate    bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE"`
	MigrationsPath string `yaml:"migrations_path" env:"DB_MIGRATIONS_PATH" env-default:"migrations"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT" env-default:"json"`
	// LogOutput is stdout, stderr or a file path.
	LogOutput  string `yaml:"log_output" env:"LOG_OUTPUT" env-default:"stdout"`
	MaxSizeMB  int    `yaml:"max_size_mb" env-default:"100"`
	MaxBackups int    `yaml:"max_backups" env-default:"5"`
	MaxAgeDays int    `yaml:"max_age_days" env-default:"14"`
}

type Locks struct {
	// Backend is local or redis.
	Backend        string        `yaml:"backend" env:"LOCKS_BACKEND" env-default:"local"`
	AcquireTimeout time.Duration `yaml:"acquire_timeout" env-default:"2s"`
	TTL            time.Duration `yaml:"ttl" env-default:"30s"`
}

type Redis struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

type Events struct {
	// Broker is kafka, nats or none.
	Broker       string   `yaml:"broker" env:"EVENTS_BROKER" env-default:"kafka"`
	KafkaBrokers []string `yaml:"kafka_brokers" env:"KAFKA_BROKERS" env-separator:","`
	NatsURL      string   `yaml:"nats_url" env:"NATS_URL" env-default:"nats://localhost:4222"`
}

type Fees struct {
	PlatformAccount string            `yaml:"platform_account" env:"PLATFORM_ACCOUNT" env-default:"platform"`
	SellerPercent   string            `yaml:"seller_percent" env:"SELLER_FEE_PERCENT" env-default:"2"`
	TokenOverrides  map[string]string `yaml:"token_overrides"`
}

type Wallet struct {
	RailURL           string        `yaml:"rail_url" env:"RAIL_URL"`
	RailTimeout       time.Duration `yaml:"rail_timeout" env-default:"10s"`
	WithdrawalTimeout time.Duration `yaml:"withdrawal_timeout" env-default:"30m"`
	// EscalationInterval is how often stuck withdrawals are swept.
	EscalationInterval time.Duration `yaml:"escalation_interval" env-default:"1m"`
	DispatchInterval   time.Duration `yaml:"dispatch_interval" env-default:"30s"`
}

type RateLimit struct {
	RPS   float64 `yaml:"rps" env:"RATE_LIMIT_RPS" env-default:"50"`
	Burst int     `yaml:"burst" env:"RATE_LIMIT_BURST" env-default:"100"`
}

// SellerFeePercents parses the configured fee percentages.
func (f Fees) SellerFeePercents() (decimal.Decimal, map[string]decimal.Decimal, error) {
	base, err := decimal.NewFromString(f.SellerPercent)
	if err != nil {
		return decimal.Zero, nil, fmt.Errorf("fees.seller_percent: %w", err)
	}
	overrides := make(map[string]decimal.Decimal, len(f.TokenOverrides))
	for token, raw := range f.TokenOverrides {
		pct, err := decimal.NewFromString(raw)
		if err != nil {
			return decimal.Zero, nil, fmt.Errorf("fees.token_overrides.%s: %w", token, err)
		}
		overrides[token] = pct
	}
	return base, overrides, nil
}

func Load(configPath string) (*SettlementConfig, error) {
	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	var cfg SettlementConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if _, _, err := cfg.Fees.SellerFeePercents(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func MustLoad() *SettlementConfig {
	configPath := os.Getenv("SETTLEMENT_CONFIG_PATH")
	if configPath == "" {
		log.Fatalf("SETTLEMENT_CONFIG_PATH was not found\n")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("%v\n", err)
	}
	return cfg
}
