// Package app implements the abbc3-migrate commands on top of the datastore,
// migration and seeding packages.
package app

import (
	"context"
	"time"

	"github.com/vse/abbc3-migrate/internal/abbc3"
	"github.com/vse/abbc3-migrate/internal/bbcode"
	"github.com/vse/abbc3-migrate/internal/conf"
	"github.com/vse/abbc3-migrate/internal/datastore"
	"github.com/vse/abbc3-migrate/internal/lock"
	"github.com/vse/abbc3-migrate/internal/logger"
	"github.com/vse/abbc3-migrate/internal/migration"
	"github.com/vse/abbc3-migrate/internal/observability"
	"github.com/vse/abbc3-migrate/internal/observability/metrics"
	"github.com/vse/abbc3-migrate/internal/seeder"
)

const pushTimeout = 10 * time.Second

// MigrateSummary describes the outcome of Migrate.
type MigrateSummary struct {
	DryRun   bool
	Plan     []migration.Step  // set for dry runs
	Report   *migration.Report // set for real runs
	Inserted int
	Updated  int
	Skipped  int
}

// tally counts seeded tags for the summary and forwards them to metrics.
type tally struct {
	summary *MigrateSummary
	next    abbc3.SeedRecorder
}

func (t *tally) RecordBBCodes(action string, n int) {
	switch action {
	case metrics.ActionInserted:
		t.summary.Inserted += n
	case metrics.ActionUpdated:
		t.summary.Updated += n
	case metrics.ActionSkipped:
		t.summary.Skipped += n
	}
	if t.next != nil {
		t.next.RecordBBCodes(action, n)
	}
}

// Migrate applies the schema and data migrations to the configured forum
// database. A dry run compiles the catalog and reports the plan without
// writing anything.
func Migrate(ctx context.Context, settings *conf.Settings, dryRun bool) (*MigrateSummary, error) {
	log := logger.Global().Module("app")

	catalog, err := bbcode.Catalog()
	if err != nil {
		return nil, err
	}
	compiler := bbcode.NewCompiler()

	if dryRun {
		for i := range catalog {
			if _, err := compiler.Compile(catalog[i].Match, catalog[i].Template); err != nil {
				return nil, err
			}
		}
	}

	store, err := datastore.Open(settings, logger.Global().Module("datastore"))
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("failed to close database", logger.Error(err))
		}
	}()

	tables := datastore.Tables{Prefix: store.TablePrefix()}
	summary := &MigrateSummary{DryRun: dryRun}
	deps := &abbc3.Deps{
		DB:       store.DB(),
		Tables:   tables,
		Catalog:  catalog,
		Compiler: compiler,
		Limits: seeder.Limits{
			CoreReserved: settings.BBCode.CoreReserved,
			IDCeiling:    settings.BBCode.IDCeiling,
		},
		Log: logger.Global().Module("abbc3"),
	}
	tracker := datastore.NewMigrationRepository(store.DB(), tables)

	if dryRun {
		summary.Plan, err = migration.NewRunner(tracker, log).Plan(ctx, abbc3.Migrations(deps))
		return summary, err
	}

	locker := lock.New(&settings.Lock)
	defer func() { _ = locker.Close() }()
	release, err := locker.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			log.Warn("failed to release run lock", logger.Error(err))
		}
	}()

	reg, err := observability.NewMetrics()
	if err != nil {
		return nil, err
	}
	deps.Recorder = &tally{summary: summary, next: reg.Seeder}

	runner := migration.NewRunner(tracker, log, migration.WithObserver(reg.Seeder))
	summary.Report, err = runner.Run(ctx, abbc3.Migrations(deps))
	reg.Seeder.RecordRun(err == nil, time.Now())

	if settings.Metrics.Pushgateway != "" {
		pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
		defer cancel()
		if pushErr := reg.Push(pushCtx, settings.Metrics.Pushgateway, settings.Metrics.Job); pushErr != nil {
			log.Warn("failed to push run metrics", logger.Error(pushErr))
		}
	}

	if err != nil {
		return summary, err
	}

	log.Info("migrations complete",
		logger.Int("applied", len(summary.Report.Applied)),
		logger.Int("inserted", summary.Inserted),
		logger.Int("updated", summary.Updated),
		logger.Int("skipped", summary.Skipped))
	return summary, nil
}
