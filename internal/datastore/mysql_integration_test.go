//go:build integration

// MySQL integration tests. Run with: go test -tags=integration ./internal/datastore/...
// Requires a Docker daemon for testcontainers.
package datastore

import (
	"context"
	"net"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"

	"github.com/vse/abbc3-migrate/internal/conf"
	"github.com/vse/abbc3-migrate/internal/logger"
)

func startMySQL(t *testing.T) *MySQLManager {
	t.Helper()
	ctx := context.Background()

	ctr, err := tcmysql.Run(ctx, "mysql:8.0",
		tcmysql.WithDatabase("phpbb"),
		tcmysql.WithUsername("forum"),
		tcmysql.WithPassword("forum"),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	connStr, err := ctr.ConnectionString(ctx)
	require.NoError(t, err)
	parsed, err := mysql.ParseDSN(connStr)
	require.NoError(t, err)
	host, port, err := net.SplitHostPort(parsed.Addr)
	require.NoError(t, err)

	mgr, err := NewMySQLManager(&conf.DatabaseSettings{
		Driver:      conf.DriverMySQL,
		TablePrefix: testTables.Prefix,
		MySQL: conf.MySQLSettings{
			Username: parsed.User,
			Password: parsed.Passwd,
			Host:     host,
			Port:     port,
			Database: parsed.DBName,
		},
	}, logger.NewSlogLogger(nil, logger.LogLevelInfo, nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Close() })

	require.NoError(t, EnsureSchema(ctx, mgr.DB(), testTables))
	return mgr
}

func TestMySQLRepositories(t *testing.T) {
	ctx := context.Background()
	mgr := startMySQL(t)
	assert.Equal(t, conf.DriverMySQL, mgr.Dialect())

	bbcodes := NewBBCodeRepository(mgr.DB(), testTables)
	require.NoError(t, bbcodes.Insert(ctx, sampleBBCode(13, "Font=")))

	rec, err := bbcodes.FindByNameOrTag(ctx, "font=", "font=")
	require.NoError(t, err)
	assert.Equal(t, 13, rec.ID)

	maxID, err := bbcodes.MaxID(ctx)
	require.NoError(t, err)
	assert.Equal(t, 13, maxID)

	configs := NewConfigRepository(mgr.DB(), testTables)
	require.NoError(t, configs.Set(ctx, "abbc3_version", "3.1.0"))
	require.NoError(t, configs.Set(ctx, "abbc3_version", "3.1.1"))
	v, err := configs.Get(ctx, "abbc3_version")
	require.NoError(t, err)
	assert.Equal(t, "3.1.1", v)

	missing := NewMigrationRepository(mgr.DB(), Tables{Prefix: "none_"})
	done, err := missing.IsDone(ctx, "v310_update_schema")
	require.NoError(t, err, "error 1146 means nothing applied yet")
	assert.False(t, done)
}
