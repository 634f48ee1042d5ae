package config

import (
	"net/url"
	"path/filepath"
	"strings"

	crerr "github.com/cockroachdb/errors"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	sqliteScheme = "sqlite://"
)

// Database is the SQL connection behind the postgres and sqlite snapshot
// backends.
type Database struct {
	Driver string
	DSN    string
	// Name is reported as db.name on query spans.
	Name string
}

// Database resolves the driver and DSN for the configured snapshot backend.
// The file backend has no database.
func (c Config) Database() (Database, error) {
	switch c.SnapshotBackend {
	case SnapshotBackendPostgres:
		dsn := c.DBURL
		if c.DBDisablePreparedBinary {
			dsn = withQueryDefault(dsn, "disable_prepared_binary_result", "yes")
		}
		return Database{Driver: DriverPostgres, DSN: dsn, Name: postgresName(dsn)}, nil

	case SnapshotBackendSQLite:
		path := strings.TrimPrefix(strings.TrimSpace(c.DBURL), sqliteScheme)
		if path == "" {
			return Database{}, crerr.New("sqlite snapshot backend needs DB_URL")
		}
		file, _, _ := strings.Cut(strings.TrimPrefix(path, "file:"), "?")
		return Database{Driver: DriverSQLite, DSN: path, Name: filepath.Base(file)}, nil

	default:
		return Database{}, crerr.Newf("SNAPSHOT_BACKEND=%s has no database", c.SnapshotBackend)
	}
}

// MigrationURL is the golang-migrate database URL for d.
func (d Database) MigrationURL() string {
	if d.Driver == DriverSQLite {
		return sqliteScheme + filepath.ToSlash(d.DSN)
	}
	return d.DSN
}

// withQueryDefault sets key on a URL-style DSN unless it is already present.
// Key/value DSNs are returned unchanged.
func withQueryDefault(dsn, key, value string) string {
	parsed, err := url.Parse(dsn)
	if err != nil || parsed.Scheme == "" {
		return dsn
	}
	query := parsed.Query()
	if query.Get(key) != "" {
		return dsn
	}
	query.Set(key, value)
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

func postgresName(dsn string) string {
	dsn = strings.TrimSpace(dsn)
	if parsed, err := url.Parse(dsn); err == nil && parsed.Scheme != "" {
		return strings.TrimPrefix(parsed.Path, "/")
	}
	for _, token := range strings.Fields(dsn) {
		if name, ok := strings.CutPrefix(token, "dbname="); ok {
			return strings.Trim(name, `"'`)
		}
	}
	return ""
}
