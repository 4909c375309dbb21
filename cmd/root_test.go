package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vse/abbc3-migrate/internal/buildinfo"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	color.NoColor = true

	root := RootCommand(buildinfo.NewContext("1.4.0", "2026-10-01"))
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	require.NoError(t, root.ExecuteContext(context.Background()), out.String())
	return out.String()
}

func TestVersionCommand(t *testing.T) {
	out := run(t, "version")
	assert.Equal(t, "abbc3-migrate 1.4.0 (built 2026-10-01), installs ABBC3 3.1.0\n", out)
}

func TestPreviewCommand(t *testing.T) {
	out := run(t, "preview", "sup", "x[sup]2[/sup]")
	assert.Equal(t, "x<sup>2</sup>\n", out)
}

func TestListCatalog(t *testing.T) {
	db := filepath.Join(t.TempDir(), "forum.db")
	out := run(t, "--sqlite-path", db, "list", "--catalog")
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "[font={INTTEXT}]{TEXT}[/font]")
	assert.Contains(t, out, "youtube")
}

func TestMigrateStatusList(t *testing.T) {
	db := filepath.Join(t.TempDir(), "forum.db")

	out := run(t, "--sqlite-path", db, "status")
	assert.Contains(t, out, "ABBC3 version: not installed")
	assert.Contains(t, out, "none recorded")

	out = run(t, "--sqlite-path", db, "migrate", "--dry-run")
	assert.Contains(t, out, "Migration plan:")
	assert.Contains(t, out, "v310_update_schema: pending")
	assert.Contains(t, out, "v310_update_data (after v310_update_schema): pending")

	out = run(t, "--sqlite-path", db, "migrate")
	assert.Contains(t, out, "applied v310_update_schema")
	assert.Contains(t, out, "applied v310_update_data")
	assert.Contains(t, out, "BBCodes: 22 inserted, 0 updated")

	out = run(t, "--sqlite-path", db, "migrate")
	assert.Contains(t, out, "Nothing to do")

	out = run(t, "--sqlite-path", db, "status")
	assert.Contains(t, out, "ABBC3 version: 3.1.0")
	assert.Contains(t, out, "BBCodes:       22")
	assert.Contains(t, out, "v310_update_data")

	out = run(t, "--sqlite-path", db, "list")
	assert.Contains(t, out, "ON POSTING")
	assert.Regexp(t, `13\s+font=\s+yes`, out)
}

func TestTablePrefixFlag(t *testing.T) {
	db := filepath.Join(t.TempDir(), "forum.db")

	run(t, "--sqlite-path", db, "--table-prefix", "board_", "migrate")

	out := run(t, "--sqlite-path", db, "status")
	assert.Contains(t, out, "not installed", "phpbb_ tables were never written")

	out = run(t, "--sqlite-path", db, "--table-prefix", "board_", "status")
	assert.Contains(t, out, "ABBC3 version: 3.1.0")
}
