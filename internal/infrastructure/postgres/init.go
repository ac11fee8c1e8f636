package postgres

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/LavaJover/shvark-settlement-service/internal/config"
	"github.com/LavaJover/shvark-settlement-service/internal/infrastructure/postgres/models"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured database. The sqlite driver is meant for
// local runs; it is limited to one connection so transactions serialise.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "", "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: newGormLogger(os.Stderr)})
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// newGormLogger reports slow queries and failures. Lookups that find no
// row are ordinary control flow and stay silent.
func newGormLogger(w io.Writer) logger.Interface {
	return logger.New(log.New(w, "gorm: ", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}

func MustInitDB(cfg *config.SettlementConfig) *gorm.DB {
	db, err := Open(cfg.SettlementDB.Driver, cfg.SettlementDB.Dsn)
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	if cfg.SettlementDB.AutoMigrate || cfg.SettlementDB.Driver == "sqlite" {
		if err := AutoMigrate(db); err != nil {
			log.Fatalf("failed to migrate db: %v\n", err.Error())
		}
	}
	return db
}
