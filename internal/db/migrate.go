package db

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	config "github.com/Keoroanthony/go-ecommerce-api/configs"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const (
	MigrateUp    = "up"
	MigrateDown  = "down"
	MigrateReset = "reset"
)

// Migrate runs one explicit schema action. Postgres goes through the SQL
// migrations under migrations/, sqlite through gorm AutoMigrate.
func Migrate(cfg config.DatabaseConfig, gdb *gorm.DB, action string, log *logrus.Logger) error {
	entry := log.WithFields(logrus.Fields{"driver": cfg.Driver, "action": action})

	if cfg.Driver == "sqlite" {
		var err error
		switch action {
		case MigrateUp:
			err = AutoMigrate(gdb)
		case MigrateDown:
			err = gdb.Migrator().DropTable("order_products", "orders", "products", "customer_accounts", "customers")
		case MigrateReset:
			err = Reset(gdb)
		default:
			return fmt.Errorf("unknown migrate action %q", action)
		}
		if err != nil {
			return err
		}
		entry.Info("Schema migrated")
		return nil
	}

	m, err := newMigrator(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	switch action {
	case MigrateUp:
		err = ignoreNoChange(m.Up())
	case MigrateDown:
		err = ignoreNoChange(m.Down())
	case MigrateReset:
		entry.Warn("Dropping and recreating the schema")
		if err = ignoreNoChange(m.Down()); err == nil {
			err = ignoreNoChange(m.Up())
		}
	default:
		return fmt.Errorf("unknown migrate action %q", action)
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", action, err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", verr)
	}
	entry.WithFields(logrus.Fields{"version": version, "dirty": dirty}).Info("Schema migrated")
	return nil
}

func newMigrator(cfg config.DatabaseConfig) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("load migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, cfg.MigrateURL())
	if err != nil {
		return nil, fmt.Errorf("init migrations: %w", err)
	}
	return m, nil
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
