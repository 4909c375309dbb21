// Package migration runs dependency-ordered migrations against the forum
// database and records each applied step in the migrations table.
package migration

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vse/abbc3-migrate/internal/datastore"
	"github.com/vse/abbc3-migrate/internal/logger"
)

// Migration is one named step.
type Migration interface {
	Name() string
	// DependsOn lists migrations that must be applied first.
	DependsOn() []string
	// EffectivelyInstalled reports whether the changes are already present,
	// for example because an earlier install made them without recording
	// the step.
	EffectivelyInstalled(ctx context.Context) (bool, error)
	// Apply makes the changes. alreadyApplied carries the result of
	// EffectivelyInstalled.
	Apply(ctx context.Context, alreadyApplied bool) error
}

// Tracker persists which migrations have been applied.
type Tracker interface {
	EnsureTable(ctx context.Context) error
	IsDone(ctx context.Context, name string) (bool, error)
	MarkDone(ctx context.Context, rec *datastore.MigrationRecord) error
}

// Observer receives the outcome of each applied migration.
type Observer interface {
	ObserveMigration(name string, duration time.Duration, err error)
}

// Step is one entry of a migration plan.
type Step struct {
	Name      string
	DependsOn []string
	Done      bool // recorded in the migrations table
	Installed bool // EffectivelyInstalled reported true
}

// Report summarises a Run.
type Report struct {
	Applied  []string // Apply was called
	Recorded []string // already recorded, not run again
}

// Runner applies migrations in dependency order.
type Runner struct {
	tracker  Tracker
	observer Observer
	log      logger.Logger
	now      func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithObserver reports migration timings and failures to o.
func WithObserver(o Observer) Option {
	return func(r *Runner) { r.observer = o }
}

// WithClock replaces time.Now for start and end times.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// NewRunner creates a Runner recording progress in tracker.
func NewRunner(tracker Tracker, log logger.Logger, opts ...Option) *Runner {
	if log == nil {
		log = logger.Global().Module("migration")
	}
	r := &Runner{
		tracker: tracker,
		log:     log,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Plan orders migrations and reports the state of each without changing
// anything.
func (r *Runner) Plan(ctx context.Context, migrations []Migration) ([]Step, error) {
	ordered, err := Order(migrations)
	if err != nil {
		return nil, err
	}

	steps := make([]Step, 0, len(ordered))
	for _, m := range ordered {
		done, err := r.tracker.IsDone(ctx, m.Name())
		if err != nil {
			return nil, err
		}
		installed, err := m.EffectivelyInstalled(ctx)
		if err != nil {
			return nil, err
		}
		steps = append(steps, Step{
			Name:      m.Name(),
			DependsOn: m.DependsOn(),
			Done:      done,
			Installed: installed,
		})
	}
	return steps, nil
}

// Run applies every migration not yet recorded. The first failure stops the
// run; steps recorded before it stay recorded.
func (r *Runner) Run(ctx context.Context, migrations []Migration) (*Report, error) {
	ordered, err := Order(migrations)
	if err != nil {
		return nil, err
	}
	if err := r.tracker.EnsureTable(ctx); err != nil {
		return nil, err
	}

	report := &Report{}
	for _, m := range ordered {
		log := r.log.With(logger.String("migration", m.Name()))

		done, err := r.tracker.IsDone(ctx, m.Name())
		if err != nil {
			return report, err
		}
		if done {
			log.Debug("migration already recorded")
			report.Recorded = append(report.Recorded, m.Name())
			continue
		}

		if err := r.apply(ctx, m, log); err != nil {
			return report, err
		}
		report.Applied = append(report.Applied, m.Name())
	}
	return report, nil
}

func (r *Runner) apply(ctx context.Context, m Migration, log logger.Logger) error {
	start := r.now()

	installed, err := m.EffectivelyInstalled(ctx)
	if err == nil {
		log.Info("applying migration", logger.Bool("effectively_installed", installed))
		err = m.Apply(ctx, installed)
	}

	end := r.now()
	if r.observer != nil {
		r.observer.ObserveMigration(m.Name(), end.Sub(start), err)
	}
	if err != nil {
		log.Error("migration failed", logger.Error(err))
		return fmt.Errorf("migration %s: %w", m.Name(), err)
	}

	return r.tracker.MarkDone(ctx, &datastore.MigrationRecord{
		Name:      m.Name(),
		DependsOn: strings.Join(m.DependsOn(), ","),
		StartTime: start.Unix(),
		EndTime:   end.Unix(),
	})
}
