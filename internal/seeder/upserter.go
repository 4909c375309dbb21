// Package seeder writes the BBCode catalog into the bbcodes table.
//
// Each definition is compiled, matched against existing rows by tag
// (ignoring case) and either updated in place or inserted with the next free
// id above the core-reserved range. Entries that would need an id above the
// ceiling are skipped. A compile or data-access error aborts the run; rows
// written before it stay committed.
package seeder

import (
	"context"
	"fmt"
	"time"

	"github.com/vse/abbc3-migrate/internal/bbcode"
	"github.com/vse/abbc3-migrate/internal/datastore"
	"github.com/vse/abbc3-migrate/internal/errors"
	"github.com/vse/abbc3-migrate/internal/logger"
)

// Store is the subset of the bbcodes table the upserter needs.
type Store interface {
	// FindByNameOrTag returns datastore.ErrBBCodeNotFound when nothing matches.
	FindByNameOrTag(ctx context.Context, name, tag string) (*datastore.BBCode, error)
	// MaxID returns 0 for an empty table.
	MaxID(ctx context.Context) (int, error)
	Insert(ctx context.Context, rec *datastore.BBCode) error
	Update(ctx context.Context, rec *datastore.BBCode) error
}

// Compiler turns a match pattern and template into stored rewrite rules.
type Compiler interface {
	Compile(match, template string) (bbcode.CompiledTag, error)
}

// Limits bounds the ids given to new rows: CoreReserved < id <= IDCeiling.
type Limits struct {
	CoreReserved int
	IDCeiling    int
}

// Result lists the catalog names handled by one run, in catalog order.
type Result struct {
	Inserted []string
	Updated  []string
	Skipped  []string // no free id at or below the ceiling
}

// Upserter seeds catalog definitions into a Store.
type Upserter struct {
	store    Store
	compiler Compiler
	limits   Limits
	log      logger.Logger
}

// New creates an Upserter.
func New(store Store, compiler Compiler, limits Limits, log logger.Logger) *Upserter {
	if log == nil {
		log = logger.Global().Module("seeder")
	}
	return &Upserter{
		store:    store,
		compiler: compiler,
		limits:   limits,
		log:      log,
	}
}

// Run processes defs in order. When alreadyApplied is true the store is not
// touched and an empty Result is returned.
func (u *Upserter) Run(ctx context.Context, defs []bbcode.Definition, alreadyApplied bool) (*Result, error) {
	result := &Result{}
	if alreadyApplied {
		u.log.Debug("catalog already applied, nothing to do")
		return result, nil
	}

	start := time.Now()
	for i := range defs {
		def := &defs[i]

		compiled, err := u.compiler.Compile(def.Match, def.Template)
		if err != nil {
			return result, fmt.Errorf("compile bbcode %q: %w", def.Name, err)
		}

		rec := record(def, &compiled)

		existing, err := u.store.FindByNameOrTag(ctx, def.Name, compiled.Tag)
		switch {
		case err == nil:
			rec.ID = existing.ID
			if err := u.store.Update(ctx, rec); err != nil {
				return result, err
			}
			result.Updated = append(result.Updated, def.Name)
			u.log.Debug("updated bbcode", logger.String("bbcode", def.Name), logger.Int("id", rec.ID))

		case errors.Is(err, datastore.ErrBBCodeNotFound):
			id, err := u.nextID(ctx)
			if err != nil {
				return result, err
			}
			if id > u.limits.IDCeiling {
				result.Skipped = append(result.Skipped, def.Name)
				continue
			}
			rec.ID = id
			rec.DisplayOnPosting = true
			if err := u.store.Insert(ctx, rec); err != nil {
				return result, err
			}
			result.Inserted = append(result.Inserted, def.Name)
			u.log.Debug("inserted bbcode", logger.String("bbcode", def.Name), logger.Int("id", id))

		default:
			return result, err
		}
	}

	u.log.Info("bbcode catalog seeded",
		logger.Int("inserted", len(result.Inserted)),
		logger.Int("updated", len(result.Updated)),
		logger.Duration("elapsed", time.Since(start)))

	return result, nil
}

// nextID returns max(id)+1, raised to CoreReserved+1 when it falls in the
// reserved range. An empty table reads as max 0.
func (u *Upserter) nextID(ctx context.Context) (int, error) {
	maxID, err := u.store.MaxID(ctx)
	if err != nil {
		return 0, err
	}
	id := maxID + 1
	if id <= u.limits.CoreReserved {
		id = u.limits.CoreReserved + 1
	}
	return id, nil
}

func record(def *bbcode.Definition, c *bbcode.CompiledTag) *datastore.BBCode {
	return &datastore.BBCode{
		Tag:               c.Tag,
		Helpline:          def.Helpline,
		Match:             def.Match,
		Template:          def.Template,
		FirstPassMatch:    c.FirstPassMatch,
		FirstPassReplace:  c.FirstPassReplace,
		SecondPassMatch:   c.SecondPassMatch,
		SecondPassReplace: c.SecondPassReplace,
	}
}
