package datastore

import (
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"

	"github.com/vse/abbc3-migrate/internal/errors"
)

// Sentinel errors for repository lookups. Callers match them with errors.Is.
var (
	// ErrBBCodeNotFound indicates no bbcodes row matched the lookup.
	ErrBBCodeNotFound = errors.NewStd("bbcode not found")

	// ErrConfigNotFound indicates the config key is not set.
	ErrConfigNotFound = errors.NewStd("config entry not found")
)

const (
	mysqlErrNoSuchTable = 1146
	pqErrUndefinedTable = "42P01"
)

// isMissingTable reports whether err is the driver's "table does not exist"
// error for any of the supported dialects.
func isMissingTable(err error) bool {
	if err == nil {
		return false
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlErrNoSuchTable
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqErrUndefinedTable
	}

	// sqlite3 only exposes a generic error code for this
	return strings.Contains(err.Error(), "no such table")
}

func notFound(sentinel error, table string, key any) error {
	return errors.New(sentinel).
		Component("datastore").
		Category(errors.CategoryNotFound).
		Context("table", table).
		Context("key", key).
		Build()
}
