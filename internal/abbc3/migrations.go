// Package abbc3 holds the migrations that install the Advanced BBCode Box 3
// tag catalog: one creating the tables, one seeding the catalog and
// recording the version marker.
package abbc3

import (
	"context"

	"gorm.io/gorm"

	"github.com/vse/abbc3-migrate/internal/bbcode"
	"github.com/vse/abbc3-migrate/internal/datastore"
	"github.com/vse/abbc3-migrate/internal/errors"
	"github.com/vse/abbc3-migrate/internal/logger"
	"github.com/vse/abbc3-migrate/internal/migration"
	"github.com/vse/abbc3-migrate/internal/observability/metrics"
	"github.com/vse/abbc3-migrate/internal/seeder"
)

// Version marker written once the catalog is installed.
const (
	VersionKey = "abbc3_version"
	Version    = "3.1.0"
)

// Migration names.
const (
	SchemaMigrationName = "v310_update_schema"
	DataMigrationName   = "v310_update_data"
)

// ConfigStore reads and writes forum config keys.
type ConfigStore interface {
	// Get returns datastore.ErrConfigNotFound for unset keys.
	Get(ctx context.Context, name string) (string, error)
	Set(ctx context.Context, name, value string) error
}

// SeedRecorder receives per-action counts of a seeding run.
type SeedRecorder interface {
	RecordBBCodes(action string, n int)
}

// Deps are the collaborators shared by the migrations.
type Deps struct {
	DB       *gorm.DB
	Tables   datastore.Tables
	Catalog  []bbcode.Definition
	Compiler seeder.Compiler
	Limits   seeder.Limits
	Recorder SeedRecorder // optional
	Log      logger.Logger
}

// Migrations returns the schema and data migrations wired to deps.
func Migrations(deps *Deps) []migration.Migration {
	if deps.Log == nil {
		deps.Log = logger.Global().Module("abbc3")
	}
	bbcodes := datastore.NewBBCodeRepository(deps.DB, deps.Tables)
	return []migration.Migration{
		NewSchemaMigration(deps.DB, deps.Tables),
		NewDataMigration(
			seeder.New(bbcodes, deps.Compiler, deps.Limits, deps.Log.Module("seeder")),
			datastore.NewConfigRepository(deps.DB, deps.Tables),
			deps.Catalog,
			deps.Recorder,
			deps.Log,
		),
	}
}

// SchemaMigration creates the bbcodes and config tables.
type SchemaMigration struct {
	db     *gorm.DB
	tables datastore.Tables
}

// NewSchemaMigration creates the schema step.
func NewSchemaMigration(db *gorm.DB, tables datastore.Tables) *SchemaMigration {
	return &SchemaMigration{db: db, tables: tables}
}

func (m *SchemaMigration) Name() string        { return SchemaMigrationName }
func (m *SchemaMigration) DependsOn() []string { return nil }

// EffectivelyInstalled reports whether both tables exist.
func (m *SchemaMigration) EffectivelyInstalled(ctx context.Context) (bool, error) {
	return datastore.SchemaExists(ctx, m.db, m.tables), nil
}

// Apply creates missing tables and columns.
func (m *SchemaMigration) Apply(ctx context.Context, alreadyApplied bool) error {
	if alreadyApplied {
		return nil
	}
	return datastore.EnsureSchema(ctx, m.db, m.tables)
}

// DataMigration seeds the catalog and sets the version marker.
type DataMigration struct {
	upserter *seeder.Upserter
	config   ConfigStore
	catalog  []bbcode.Definition
	recorder SeedRecorder
	log      logger.Logger
}

// NewDataMigration creates the data step. recorder may be nil.
func NewDataMigration(upserter *seeder.Upserter, config ConfigStore, catalog []bbcode.Definition, recorder SeedRecorder, log logger.Logger) *DataMigration {
	if log == nil {
		log = logger.Global().Module("abbc3")
	}
	return &DataMigration{
		upserter: upserter,
		config:   config,
		catalog:  catalog,
		recorder: recorder,
		log:      log,
	}
}

func (m *DataMigration) Name() string        { return DataMigrationName }
func (m *DataMigration) DependsOn() []string { return []string{SchemaMigrationName} }

// EffectivelyInstalled reports whether the version marker is at least Version.
func (m *DataMigration) EffectivelyInstalled(ctx context.Context) (bool, error) {
	current, err := m.config.Get(ctx, VersionKey)
	if errors.Is(err, datastore.ErrConfigNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return migration.VersionAtLeast(current, Version), nil
}

// Apply seeds the catalog unless alreadyApplied, then records Version.
func (m *DataMigration) Apply(ctx context.Context, alreadyApplied bool) error {
	result, err := m.upserter.Run(ctx, m.catalog, alreadyApplied)
	if result != nil && m.recorder != nil {
		m.recorder.RecordBBCodes(metrics.ActionInserted, len(result.Inserted))
		m.recorder.RecordBBCodes(metrics.ActionUpdated, len(result.Updated))
		m.recorder.RecordBBCodes(metrics.ActionSkipped, len(result.Skipped))
	}
	if err != nil {
		return err
	}
	if alreadyApplied {
		m.log.Info("abbc3 already installed", logger.String("required", Version))
		return nil
	}

	return m.config.Set(ctx, VersionKey, Version)
}
