package datastore

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vse/abbc3-migrate/internal/errors"
)

// MigrationRepository tracks applied migrations.
type MigrationRepository struct {
	db     *gorm.DB
	tables Tables
}

// NewMigrationRepository creates a repository over tables.Migrations().
func NewMigrationRepository(db *gorm.DB, tables Tables) *MigrationRepository {
	return &MigrationRepository{
		db:     db,
		tables: tables,
	}
}

// EnsureTable creates the migrations table when missing.
func (r *MigrationRepository) EnsureTable(ctx context.Context) error {
	return EnsureMigrationsTable(ctx, r.db, r.tables)
}

// IsDone reports whether name has been recorded. A missing table means
// nothing has been applied yet.
func (r *MigrationRepository) IsDone(ctx context.Context, name string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Table(r.tables.Migrations()).
		Where("migration_name = ?", name).
		Count(&n).Error
	switch {
	case err == nil:
		return n > 0, nil
	case isMissingTable(err):
		return false, nil
	default:
		return false, errors.DatabaseError(err, "check_migration", r.tables.Migrations())
	}
}

// MarkDone records rec, replacing an earlier record with the same name.
func (r *MigrationRepository) MarkDone(ctx context.Context, rec *MigrationRecord) error {
	err := r.db.WithContext(ctx).Table(r.tables.Migrations()).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "migration_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"migration_depends_on", "migration_start_time", "migration_end_time"}),
		}).
		Create(rec).Error
	if err != nil {
		return errors.DatabaseError(err, "mark_migration", r.tables.Migrations())
	}
	return nil
}

// GetAll returns every recorded migration ordered by end time.
func (r *MigrationRepository) GetAll(ctx context.Context) ([]MigrationRecord, error) {
	var rows []MigrationRecord
	err := r.db.WithContext(ctx).Table(r.tables.Migrations()).
		Order("migration_end_time, migration_name").
		Find(&rows).Error
	switch {
	case err == nil:
		return rows, nil
	case isMissingTable(err):
		return nil, nil
	default:
		return nil, errors.DatabaseError(err, "list_migrations", r.tables.Migrations())
	}
}
