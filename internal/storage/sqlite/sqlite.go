// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// SQLite keeps the whole school in a single file on disk: no server
// process, nothing to install beyond the driver. The schema lives in
// migrations/ and is applied with golang-migrate on every start-up
// (a no-op once the database is current).
package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/mattn/go-sqlite3"

	"github.com/aanand-mishra/school-records/internal/config"
	"github.com/aanand-mishra/school-records/internal/types"
)

// driverName is go-sqlite3 with ulower registered on every connection.
// SQLite's own LOWER() folds ASCII only, so "Émile" would never match
// "émile".
const driverName = "sqlite3_school"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("ulower", strings.ToLower, true)
		},
	})
}

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLite is the concrete implementation of storage.Storage.
//
// Db is limited to a single open connection: the application is
// single-user, and one connection means statements never race each other
// for SQLite's write lock.
type SQLite struct {
	Db       *sql.DB
	migrator *migrate.Migrate
}

// New opens the SQLite database at cfg.StoragePath (creating the file and
// its directory if needed), enables foreign keys, applies the schema, and
// returns a ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	if dir := filepath.Dir(cfg.StoragePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite.New: create directory: %w", err)
		}
	}

	// _foreign_keys is applied by the driver to every connection it opens,
	// unlike a one-off PRAGMA which only affects the connection it ran on.
	db, err := sql.Open(driverName, dsn(cfg.StoragePath))
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: ping: %w", err)
	}

	m, err := newMigrator(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: migrate up: %w", err)
	}

	return &SQLite{Db: db, migrator: m}, nil
}

// Close releases the database. The migrator shares the same *sql.DB and is
// not closed separately.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

func dsn(path string) string {
	return path + "?_foreign_keys=on&_busy_timeout=5000"
}

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("migrations source: %w", err)
	}

	drv, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("migrations driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", drv)
	if err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return m, nil
}

// translate maps SQLite constraint violations onto the application's error
// taxonomy. Every other error is returned untouched and ends up reported
// as a storage failure.
func translate(err error) error {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return err
	}

	switch se.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return fmt.Errorf("%w: %s", types.ErrDuplicateKey, se.Error())
	case sqlite3.ErrConstraintForeignKey:
		return fmt.Errorf("%w: %s", types.ErrNotFound, se.Error())
	default:
		return err
	}
}

// likePattern turns a user filter into a case-insensitive LIKE pattern
// matching it as a literal substring. Use with ESCAPE '\'.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}

// where joins conditions with AND. An empty slice yields an empty clause.
func where(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

// anyLike builds "(ulower(a) LIKE ? ESCAPE '\' OR ulower(b) LIKE ? ...)" and
// the matching argument list. Columns must not be NULL.
func anyLike(value string, columns ...string) (string, []any) {
	parts := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns))
	pattern := likePattern(value)
	for _, col := range columns {
		parts = append(parts, "ulower("+col+`) LIKE ? ESCAPE '\'`)
		args = append(args, pattern)
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}
