package app

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/vse/abbc3-migrate/internal/abbc3"
	"github.com/vse/abbc3-migrate/internal/bbcode"
	"github.com/vse/abbc3-migrate/internal/conf"
	"github.com/vse/abbc3-migrate/internal/datastore"
	"github.com/vse/abbc3-migrate/internal/errors"
	"github.com/vse/abbc3-migrate/internal/logger"
	"github.com/vse/abbc3-migrate/internal/migration"
)

// StatusReport is the install state of a forum database.
type StatusReport struct {
	Marker     string // stored abbc3_version, empty when unset
	Installed  bool   // Marker is at least abbc3.Version
	Schema     bool   // bbcodes and config tables exist
	BBCodes    int64
	Migrations []datastore.MigrationRecord
}

// Status reads the version marker, recorded migrations and tag count.
func Status(ctx context.Context, settings *conf.Settings) (*StatusReport, error) {
	store, err := datastore.Open(settings, logger.Global().Module("datastore"))
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()

	return readStatus(ctx, store.DB(), datastore.Tables{Prefix: store.TablePrefix()})
}

func readStatus(ctx context.Context, db *gorm.DB, tables datastore.Tables) (*StatusReport, error) {
	report := &StatusReport{Schema: datastore.SchemaExists(ctx, db, tables)}
	migrator := db.WithContext(ctx).Migrator()

	if migrator.HasTable(tables.Config()) {
		marker, err := datastore.NewConfigRepository(db, tables).Get(ctx, abbc3.VersionKey)
		switch {
		case errors.Is(err, datastore.ErrConfigNotFound):
		case err != nil:
			return nil, err
		default:
			report.Marker = marker
			report.Installed = migration.VersionAtLeast(marker, abbc3.Version)
		}
	}

	var err error
	if report.Schema {
		if report.BBCodes, err = datastore.NewBBCodeRepository(db, tables).Count(ctx); err != nil {
			return nil, err
		}
	}

	if migrator.HasTable(tables.Migrations()) {
		if report.Migrations, err = datastore.NewMigrationRepository(db, tables).GetAll(ctx); err != nil {
			return nil, err
		}
	}
	return report, nil
}

// ListStored returns the rows of the bbcodes table ordered by id.
func ListStored(ctx context.Context, settings *conf.Settings) ([]datastore.BBCode, error) {
	store, err := datastore.Open(settings, logger.Global().Module("datastore"))
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()

	tables := datastore.Tables{Prefix: store.TablePrefix()}
	if !datastore.SchemaExists(ctx, store.DB(), tables) {
		return nil, nil
	}
	return datastore.NewBBCodeRepository(store.DB(), tables).GetAll(ctx)
}

// PreviewUID is the bbcode uid used when rendering previews.
const PreviewUID = "preview"

// Preview renders text through the catalog tag identified by a catalog name
// or an opening tag, e.g. "font=" or "align=center".
func Preview(name, text string, lang map[string]string) (string, error) {
	catalog, err := bbcode.Catalog()
	if err != nil {
		return "", err
	}
	compiler := bbcode.NewCompiler()

	want := strings.ToLower(name)
	var fallback *bbcode.Definition
	var fallbackTag bbcode.CompiledTag
	for i := range catalog {
		def := &catalog[i]
		compiled, err := compiler.Compile(def.Match, def.Template)
		if err != nil {
			return "", err
		}
		if strings.ToLower(def.Name) == want {
			return bbcode.NewRenderer(lang).Apply(compiled, def.Template, text, PreviewUID)
		}
		if fallback == nil && compiled.Tag == want {
			fallback, fallbackTag = def, compiled
		}
	}
	if fallback != nil {
		return bbcode.NewRenderer(lang).Apply(fallbackTag, fallback.Template, text, PreviewUID)
	}

	return "", errors.Newf("no catalog tag named %q", name).
		Component("app").
		Category(errors.CategoryNotFound).
		Build()
}
