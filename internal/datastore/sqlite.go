package datastore

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vse/abbc3-migrate/internal/conf"
	"github.com/vse/abbc3-migrate/internal/logger"
)

// SQLiteManager handles a forum database stored in a SQLite file.
type SQLiteManager struct {
	db     *gorm.DB
	dbPath string
	prefix string
}

// NewSQLiteManager opens (creating if needed) the SQLite file at cfg.SQLite.Path.
func NewSQLiteManager(cfg *conf.DatabaseSettings, log logger.Logger) (*SQLiteManager, error) {
	dbPath := cfg.SQLite.Path
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, openError(err, conf.DriverSQLite, dbPath)
		}
	}

	db, err := gorm.Open(sqlite.Open(sqliteDSN(dbPath)), gormConfig(cfg, log))
	if err != nil {
		return nil, openError(err, conf.DriverSQLite, dbPath)
	}

	log.Debug("opened sqlite database", logger.String("path", dbPath))

	return &SQLiteManager{
		db:     db,
		dbPath: dbPath,
		prefix: cfg.TablePrefix,
	}, nil
}

// sqliteDSN builds the DSN with the pragmas used for every connection.
func sqliteDSN(path string) string {
	return fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000", path)
}

// DB returns the underlying GORM database.
func (m *SQLiteManager) DB() *gorm.DB {
	return m.db
}

// Dialect returns "sqlite".
func (m *SQLiteManager) Dialect() string {
	return conf.DriverSQLite
}

// TablePrefix returns the forum table prefix.
func (m *SQLiteManager) TablePrefix() string {
	return m.prefix
}

// Path returns the database file path.
func (m *SQLiteManager) Path() string {
	return m.dbPath
}

// Close closes the database connection.
func (m *SQLiteManager) Close() error {
	return closeDB(m.db)
}
