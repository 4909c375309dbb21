package datastore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vse/abbc3-migrate/internal/conf"
	"github.com/vse/abbc3-migrate/internal/errors"
	"github.com/vse/abbc3-migrate/internal/logger"
)

var testTables = Tables{Prefix: "phpbb_"}

// setupSQLite opens a schema-initialised SQLite database in a temp dir.
func setupSQLite(t *testing.T) *SQLiteManager {
	t.Helper()

	cfg := &conf.DatabaseSettings{
		Driver:      conf.DriverSQLite,
		TablePrefix: testTables.Prefix,
		SQLite:      conf.SQLiteSettings{Path: filepath.Join(t.TempDir(), "forum.db")},
	}
	mgr, err := NewSQLiteManager(cfg, logger.NewSlogLogger(nil, logger.LogLevelInfo, nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Close() })

	require.NoError(t, EnsureSchema(context.Background(), mgr.DB(), testTables))
	return mgr
}

func TestOpenSelectsDriver(t *testing.T) {
	t.Parallel()

	settings := &conf.Settings{Database: conf.DatabaseSettings{
		Driver:      conf.DriverSQLite,
		TablePrefix: "forum_",
		SQLite:      conf.SQLiteSettings{Path: filepath.Join(t.TempDir(), "nested", "forum.db")},
	}}

	mgr, err := Open(settings, logger.NewSlogLogger(nil, logger.LogLevelInfo, nil))
	require.NoError(t, err)
	defer func() { _ = mgr.Close() }()

	assert.Equal(t, conf.DriverSQLite, mgr.Dialect())
	assert.Equal(t, "forum_", mgr.TablePrefix())
	assert.Equal(t, settings.Database.SQLite.Path, mgr.Path())
	assert.FileExists(t, mgr.Path())
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	t.Parallel()

	_, err := Open(&conf.Settings{Database: conf.DatabaseSettings{Driver: "oracle"}}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))

	_, err = Open(nil, nil)
	require.Error(t, err)
}

func TestSchemaLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mgr := setupSQLite(t)

	assert.True(t, SchemaExists(ctx, mgr.DB(), testTables))
	assert.False(t, SchemaExists(ctx, mgr.DB(), Tables{Prefix: "other_"}))

	// Rerunning on an existing schema is a no-op.
	require.NoError(t, EnsureSchema(ctx, mgr.DB(), testTables))
	assert.False(t, mgr.DB().Migrator().HasTable(testTables.Migrations()))

	require.NoError(t, EnsureMigrationsTable(ctx, mgr.DB(), testTables))
	assert.True(t, mgr.DB().Migrator().HasTable(testTables.Migrations()))
}

func TestEnsureSchemaKeepsExistingColumns(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := &conf.DatabaseSettings{
		Driver:      conf.DriverSQLite,
		TablePrefix: testTables.Prefix,
		SQLite:      conf.SQLiteSettings{Path: filepath.Join(t.TempDir(), "forum.db")},
	}
	mgr, err := NewSQLiteManager(cfg, logger.NewSlogLogger(nil, logger.LogLevelInfo, nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Close() })
	db := mgr.DB()

	// A host table with a wider tag column and no helpline column.
	require.NoError(t, db.Exec(`CREATE TABLE phpbb_bbcodes (
		bbcode_id integer NOT NULL PRIMARY KEY,
		bbcode_tag varchar(255) NOT NULL DEFAULT '',
		display_on_posting integer NOT NULL DEFAULT 0,
		bbcode_match text NOT NULL,
		bbcode_tpl text NOT NULL,
		first_pass_match text NOT NULL,
		first_pass_replace text NOT NULL,
		second_pass_match text NOT NULL,
		second_pass_replace text NOT NULL
	)`).Error)

	require.NoError(t, EnsureSchema(ctx, db, testTables))
	assert.True(t, db.Table(testTables.BBCodes()).Migrator().HasColumn(&BBCode{}, "bbcode_helpline"))

	var ddl string
	require.NoError(t, db.Raw("SELECT sql FROM sqlite_master WHERE name = ?", testTables.BBCodes()).Scan(&ddl).Error)
	assert.Contains(t, ddl, "bbcode_tag varchar(255)")
	assert.Contains(t, ddl, "display_on_posting integer")
}

func TestMigrationsTableLeavesHostTableAlone(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mgr := setupSQLite(t)
	db := mgr.DB()

	require.NoError(t, db.Exec(`CREATE TABLE phpbb_migrations (
		migration_name varchar(255) NOT NULL PRIMARY KEY,
		migration_depends_on text NOT NULL,
		migration_schema_done integer NOT NULL DEFAULT 0,
		migration_data_done integer NOT NULL DEFAULT 0
	)`).Error)

	repo := NewMigrationRepository(db, testTables)
	require.NoError(t, repo.EnsureTable(ctx))
	require.NoError(t, repo.MarkDone(ctx, &MigrationRecord{Name: "v310_update_schema"}))

	var hostRows int64
	require.NoError(t, db.Table("phpbb_migrations").Count(&hostRows).Error)
	assert.Zero(t, hostRows)
	assert.False(t, db.Table("phpbb_migrations").Migrator().HasColumn(&MigrationRecord{}, "migration_start_time"))

	done, err := repo.IsDone(ctx, "v310_update_schema")
	require.NoError(t, err)
	assert.True(t, done)
}

func TestTables(t *testing.T) {
	t.Parallel()

	tables := Tables{Prefix: "phpbb_"}
	assert.Equal(t, "phpbb_bbcodes", tables.BBCodes())
	assert.Equal(t, "phpbb_config", tables.Config())
	assert.Equal(t, "phpbb_abbc3_migrations", tables.Migrations())
	assert.Equal(t, "bbcodes", Tables{}.BBCodes())
}

func TestMySQLDSN(t *testing.T) {
	t.Parallel()

	dsn := mysqlDSN(&conf.MySQLSettings{
		Username: "forum",
		Password: "secret",
		Host:     "db.internal",
		Port:     "3307",
		Database: "phpbb",
	})

	assert.Contains(t, dsn, "forum:secret@tcp(db.internal:3307)/phpbb?")
	assert.Contains(t, dsn, "charset=utf8mb4")
	assert.Contains(t, dsn, "parseTime=true")
}

func TestPostgresDSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  conf.PostgresSettings
		want string
	}{
		{
			name: "plain",
			cfg:  conf.PostgresSettings{Host: "db", Port: "5432", Username: "forum", Password: "pw", Database: "phpbb", SSLMode: "disable"},
			want: "host=db port=5432 user=forum password=pw dbname=phpbb sslmode=disable",
		},
		{
			name: "quoted password",
			cfg:  conf.PostgresSettings{Host: "db", Username: "forum", Password: `it's a \secret`, Database: "phpbb"},
			want: `host=db user=forum password='it\'s a \\secret' dbname=phpbb`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, postgresDSN(&tt.cfg))
		})
	}
}
