package datastore

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vse/abbc3-migrate/internal/errors"
)

// ConfigRepository reads and writes forum config keys.
type ConfigRepository struct {
	db    *gorm.DB
	table string
}

// NewConfigRepository creates a repository over tables.Config().
func NewConfigRepository(db *gorm.DB, tables Tables) *ConfigRepository {
	return &ConfigRepository{
		db:    db,
		table: tables.Config(),
	}
}

// Get returns the value of name. A missing key, or a missing config table on
// a fresh database, yields ErrConfigNotFound.
func (r *ConfigRepository) Get(ctx context.Context, name string) (string, error) {
	var entry ConfigEntry
	err := r.db.WithContext(ctx).Table(r.table).
		Where("config_name = ?", name).
		Take(&entry).Error
	switch {
	case err == nil:
		return entry.Value, nil
	case errors.Is(err, gorm.ErrRecordNotFound), isMissingTable(err):
		return "", notFound(ErrConfigNotFound, r.table, name)
	default:
		return "", errors.DatabaseError(err, "get_config", r.table)
	}
}

// Set creates or overwrites name.
func (r *ConfigRepository) Set(ctx context.Context, name, value string) error {
	entry := ConfigEntry{Name: name, Value: value}
	err := r.db.WithContext(ctx).Table(r.table).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "config_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"config_value"}),
		}).
		Create(&entry).Error
	if err != nil {
		return errors.DatabaseError(err, "set_config", r.table)
	}
	return nil
}
