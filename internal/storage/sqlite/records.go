package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/mattn/go-sqlite3"

	"github.com/aanand-mishra/school-records/internal/types"
)

// recordQueries produce the combined listing: students, then instructors,
// then courses. Courses have no age or email.
var recordQueries = []string{
	"SELECT 'Student', student_id, name, age, email FROM students ORDER BY id",
	"SELECT 'Instructor', instructor_id, name, age, email FROM instructors ORDER BY id",
	"SELECT 'Course', course_id, course_name, NULL, NULL FROM courses ORDER BY id",
}

// ListRecords returns one Record per stored student, instructor and course.
func (s *SQLite) ListRecords(ctx context.Context) ([]types.Record, error) {
	records := make([]types.Record, 0)

	for _, query := range recordQueries {
		rows, err := s.Db.QueryContext(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("ListRecords: query: %w", err)
		}

		for rows.Next() {
			var (
				r     types.Record
				age   sql.NullInt64
				email sql.NullString
			)
			if err := rows.Scan(&r.Type, &r.ID, &r.Name, &age, &email); err != nil {
				rows.Close()
				return nil, fmt.Errorf("ListRecords: scan row: %w", err)
			}
			if age.Valid {
				n := int(age.Int64)
				r.Age = &n
			}
			r.Email = email.String
			records = append(records, r)
		}

		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("ListRecords: rows iteration: %w", err)
		}
	}

	return records, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Backup copies the live database into dest using SQLite's online backup
// API. Unlike copying the file, this yields a consistent snapshot even
// while the source is open. An existing database at dest is overwritten.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) Backup(ctx context.Context, dest string) error {
	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("Backup: create directory: %w", err)
		}
	}

	destDB, err := sql.Open(driverName, dest)
	if err != nil {
		return fmt.Errorf("Backup: open destination: %w", err)
	}
	defer destDB.Close()

	destConn, err := destDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("Backup: destination conn: %w", err)
	}
	defer destConn.Close()

	srcConn, err := s.Db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("Backup: source conn: %w", err)
	}
	defer srcConn.Close()

	err = destConn.Raw(func(destRaw any) error {
		return srcConn.Raw(func(srcRaw any) error {
			destSQLite, ok := destRaw.(*sqlite3.SQLiteConn)
			if !ok {
				return errors.New("destination is not a sqlite3 connection")
			}
			srcSQLite, ok := srcRaw.(*sqlite3.SQLiteConn)
			if !ok {
				return errors.New("source is not a sqlite3 connection")
			}

			b, err := destSQLite.Backup("main", srcSQLite, "main")
			if err != nil {
				return err
			}

			// -1 copies every remaining page in one step.
			if _, err := b.Step(-1); err != nil {
				b.Close()
				return err
			}
			return b.Finish()
		})
	})
	if err != nil {
		return fmt.Errorf("Backup: %w", err)
	}

	return nil
}

// Clear drops all four tables and recreates them empty. The down migration
// drops child tables first so foreign keys never block it.
func (s *SQLite) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("Clear: %w", err)
	}

	if err := s.migrator.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("Clear: drop tables: %w", err)
	}

	if err := s.migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("Clear: recreate tables: %w", err)
	}

	return nil
}
