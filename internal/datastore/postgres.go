package datastore

import (
	"database/sql"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/vse/abbc3-migrate/internal/conf"
	"github.com/vse/abbc3-migrate/internal/logger"
)

// PostgresManager handles a forum database on a PostgreSQL server.
// Connections go through lib/pq; GORM only supplies the dialect.
type PostgresManager struct {
	db       *gorm.DB
	location string
	prefix   string
}

// NewPostgresManager connects to the server described by cfg.Postgres.
func NewPostgresManager(cfg *conf.DatabaseSettings, log logger.Logger) (*PostgresManager, error) {
	location := cfg.Postgres.Host + ":" + cfg.Postgres.Port + "/" + cfg.Postgres.Database

	connector, err := pq.NewConnector(postgresDSN(&cfg.Postgres))
	if err != nil {
		return nil, openError(err, conf.DriverPostgres, location)
	}
	sqlDB := sql.OpenDB(connector)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetMaxOpenConns(4)
	sqlDB.SetConnMaxLifetime(time.Hour)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormConfig(cfg, log))
	if err != nil {
		_ = sqlDB.Close()
		return nil, openError(err, conf.DriverPostgres, location)
	}

	log.Debug("connected to postgres", logger.String("location", location))

	return &PostgresManager{
		db:       db,
		location: location,
		prefix:   cfg.TablePrefix,
	}, nil
}

// postgresDSN builds a libpq key/value connection string.
func postgresDSN(cfg *conf.PostgresSettings) string {
	pairs := []struct{ key, value string }{
		{"host", cfg.Host},
		{"port", cfg.Port},
		{"user", cfg.Username},
		{"password", cfg.Password},
		{"dbname", cfg.Database},
		{"sslmode", cfg.SSLMode},
	}

	var b strings.Builder
	for _, p := range pairs {
		if p.value == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(p.key)
		b.WriteByte('=')
		b.WriteString(quoteConnValue(p.value))
	}
	return b.String()
}

// quoteConnValue single-quotes v when it holds spaces, quotes or backslashes.
func quoteConnValue(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}

// DB returns the underlying GORM database.
func (m *PostgresManager) DB() *gorm.DB {
	return m.db
}

// Dialect returns "postgres".
func (m *PostgresManager) Dialect() string {
	return conf.DriverPostgres
}

// TablePrefix returns the forum table prefix.
func (m *PostgresManager) TablePrefix() string {
	return m.prefix
}

// Path returns host:port/database.
func (m *PostgresManager) Path() string {
	return m.location
}

// Close closes the database connection.
func (m *PostgresManager) Close() error {
	return closeDB(m.db)
}
