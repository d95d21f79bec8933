package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	config "github.com/Keoroanthony/go-ecommerce-api/configs"
	"github.com/Keoroanthony/go-ecommerce-api/internal/models"
)

// Open connects to the configured store. It never changes the schema; see
// AutoMigrate, Reset and Migrate for that.
func Open(cfg config.DatabaseConfig, log *logrus.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN())
	case "sqlite":
		dialector = sqlite.Open(SQLiteDSN(cfg.SQLitePath))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	gdb, err := gorm.Open(dialector, GormConfig(log))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}

	log.WithField("driver", cfg.Driver).Info("Database connected")
	return gdb, nil
}

// GormConfig is shared by Open and the tests so both translate driver errors
// the same way.
func GormConfig(log *logrus.Logger) *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger: logger.New(log, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}
}

// SQLiteDSN turns foreign key enforcement on for the given path.
func SQLiteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on"
}

func AutoMigrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// Reset drops every table, join table first, and recreates the schema.
func Reset(gdb *gorm.DB) error {
	tables := []any{&models.OrderProduct{}}
	all := models.All()
	for i := len(all) - 1; i >= 0; i-- {
		tables = append(tables, all[i])
	}

	if err := gdb.Migrator().DropTable(tables...); err != nil {
		return fmt.Errorf("failed to drop tables: %w", err)
	}
	return AutoMigrate(gdb)
}
