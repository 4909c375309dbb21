package datastore

import (
	"context"

	"gorm.io/gorm"

	"github.com/vse/abbc3-migrate/internal/errors"
)

// Base table names; the forum prefix is prepended.
const (
	tableBBCodes    = "bbcodes"
	tableConfig     = "config"
	tableMigrations = "abbc3_migrations" // kept apart from the host's own migrations table
)

// Tables resolves prefixed table names.
type Tables struct {
	Prefix string
}

// BBCodes returns the prefixed bbcodes table name.
func (t Tables) BBCodes() string { return t.Prefix + tableBBCodes }

// Config returns the prefixed config table name.
func (t Tables) Config() string { return t.Prefix + tableConfig }

// Migrations returns the prefixed migrations table name.
func (t Tables) Migrations() string { return t.Prefix + tableMigrations }

// EnsureSchema creates the bbcodes and config tables when missing. On
// existing tables only missing columns are added; existing columns keep their
// definitions.
func EnsureSchema(ctx context.Context, db *gorm.DB, tables Tables) error {
	if err := ensureTable(ctx, db, tables.BBCodes(), &BBCode{}); err != nil {
		return err
	}
	return ensureTable(ctx, db, tables.Config(), &ConfigEntry{})
}

// SchemaExists reports whether both the bbcodes and config tables exist.
func SchemaExists(ctx context.Context, db *gorm.DB, tables Tables) bool {
	m := db.WithContext(ctx).Migrator()
	return m.HasTable(tables.BBCodes()) && m.HasTable(tables.Config())
}

// EnsureMigrationsTable creates the migrations bookkeeping table when missing.
func EnsureMigrationsTable(ctx context.Context, db *gorm.DB, tables Tables) error {
	return ensureTable(ctx, db, tables.Migrations(), &MigrationRecord{})
}

func ensureTable(ctx context.Context, db *gorm.DB, table string, model any) error {
	tx := db.WithContext(ctx).Table(table)
	m := tx.Migrator()

	if !m.HasTable(table) {
		if err := m.CreateTable(model); err != nil {
			return errors.DatabaseError(err, "create_table", table)
		}
		return nil
	}

	stmt := &gorm.Statement{DB: tx}
	if err := stmt.Parse(model); err != nil {
		return errors.DatabaseError(err, "parse_model", table)
	}
	for _, column := range stmt.Schema.DBNames {
		if m.HasColumn(model, column) {
			continue
		}
		if err := m.AddColumn(model, column); err != nil {
			return errors.DatabaseError(err, "add_column", table)
		}
	}
	return nil
}
