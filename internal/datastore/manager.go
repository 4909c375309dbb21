// Package datastore opens the forum database and provides repositories over
// the bbcodes, config and migrations tables.
package datastore

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/vse/abbc3-migrate/internal/conf"
	"github.com/vse/abbc3-migrate/internal/errors"
	"github.com/vse/abbc3-migrate/internal/logger"
)

// Manager owns one database connection.
type Manager interface {
	// DB returns the underlying GORM database.
	DB() *gorm.DB
	// Dialect returns the driver name: sqlite, mysql or postgres.
	Dialect() string
	// TablePrefix returns the forum table prefix, e.g. "phpbb_".
	TablePrefix() string
	// Path returns the database location for display (file path or host/db).
	Path() string
	// Close closes the database connection.
	Close() error
}

// Open connects to the database selected by settings.Database.Driver.
func Open(settings *conf.Settings, log logger.Logger) (Manager, error) {
	if settings == nil {
		return nil, errors.Newf("datastore: nil settings").
			Component("datastore").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if log == nil {
		log = logger.Global().Module("datastore")
	}

	db := settings.Database
	switch db.Driver {
	case conf.DriverSQLite:
		return NewSQLiteManager(&db, log)
	case conf.DriverMySQL:
		return NewMySQLManager(&db, log)
	case conf.DriverPostgres:
		return NewPostgresManager(&db, log)
	default:
		return nil, errors.Newf("unsupported database driver %q", db.Driver).
			Component("datastore").
			Category(errors.CategoryConfiguration).
			Context("driver", db.Driver).
			Build()
	}
}

// gormConfig returns the GORM configuration shared by all managers.
func gormConfig(cfg *conf.DatabaseSettings, log logger.Logger) *gorm.Config {
	return &gorm.Config{
		Logger:                 logger.NewGormLoggerAdapter(log, cfg.SlowQuery),
		SkipDefaultTransaction: true,
	}
}

// closeDB closes the connection pool behind db.
func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying database: %w", err)
	}
	return sqlDB.Close()
}

func openError(err error, driver, location string) error {
	return errors.New(fmt.Errorf("failed to open %s database: %w", driver, err)).
		Component("datastore").
		Category(errors.CategoryDatabase).
		Context("driver", driver).
		Context("location", location).
		Build()
}
