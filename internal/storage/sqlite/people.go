package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/aanand-mishra/school-records/internal/types"
)

// personTable describes where one kind of person is stored. Students and
// instructors have identical columns apart from the business key's name.
type personTable struct {
	name      string
	keyColumn string
}

func tableFor(kind types.PersonKind) (personTable, error) {
	switch kind {
	case types.KindStudent:
		return personTable{name: "students", keyColumn: "student_id"}, nil
	case types.KindInstructor:
		return personTable{name: "instructors", keyColumn: "instructor_id"}, nil
	default:
		return personTable{}, fmt.Errorf("%w: unknown person kind %q", types.ErrInvalidInput, kind)
	}
}

func (t personTable) columns() string {
	return "id, " + t.keyColumn + ", name, age, email"
}

// lookup is the WHERE clause resolving a person by business key or email.
// The key wins when one person's key equals another person's email.
// It takes the same value three times.
func (t personTable) lookup() string {
	return " WHERE " + t.keyColumn + " = ? OR email = ? ORDER BY (" + t.keyColumn + " = ?) DESC LIMIT 1"
}

// ─────────────────────────────────────────────────────────────────────────────
// CreatePerson inserts a new row into the students or instructors table.
// The ? placeholders keep user input out of the SQL text; only the table
// and column names (fixed by tableFor) are formatted in.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) CreatePerson(ctx context.Context, p types.Person) (int64, error) {
	t, err := tableFor(p.Kind)
	if err != nil {
		return 0, fmt.Errorf("CreatePerson: %w", err)
	}

	stmt, err := s.Db.PrepareContext(ctx,
		"INSERT INTO "+t.name+" ("+t.keyColumn+", name, age, email) VALUES (?, ?, ?, ?)",
	)
	if err != nil {
		return 0, fmt.Errorf("CreatePerson: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, p.Key, p.Name, p.Age, p.Email)
	if err != nil {
		return 0, fmt.Errorf("CreatePerson: exec: %w", translate(err))
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("CreatePerson: last insert id: %w", err)
	}

	return lastID, nil
}

// GetPerson fetches exactly one person matched by business key or email.
func (s *SQLite) GetPerson(ctx context.Context, kind types.PersonKind, key string) (types.Person, error) {
	t, err := tableFor(kind)
	if err != nil {
		return types.Person{}, fmt.Errorf("GetPerson: %w", err)
	}

	stmt, err := s.Db.PrepareContext(ctx, "SELECT "+t.columns()+" FROM "+t.name+t.lookup())
	if err != nil {
		return types.Person{}, fmt.Errorf("GetPerson: prepare: %w", err)
	}
	defer stmt.Close()

	p := types.Person{Kind: kind}
	err = stmt.QueryRowContext(ctx, key, key, key).Scan(&p.RowID, &p.Key, &p.Name, &p.Age, &p.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Person{}, &types.NotFoundError{Entity: string(kind), Key: key}
		}
		return types.Person{}, fmt.Errorf("GetPerson: scan: %w", err)
	}

	return p, nil
}

// ListPeople returns every person of the kind, oldest first.
func (s *SQLite) ListPeople(ctx context.Context, kind types.PersonKind) ([]types.Person, error) {
	return s.SearchPeople(ctx, kind, types.Filter{})
}

// SearchPeople applies f to the students or instructors table. Query
// matches name or business key; ID, Name and Age each constrain one column.
func (s *SQLite) SearchPeople(ctx context.Context, kind types.PersonKind, f types.Filter) ([]types.Person, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, fmt.Errorf("SearchPeople: %w", err)
	}

	var (
		conds []string
		args  []any
	)
	if f.Query != "" {
		cond, a := anyLike(f.Query, "name", t.keyColumn)
		conds, args = append(conds, cond), append(args, a...)
	}
	if f.ID != "" {
		cond, a := anyLike(f.ID, t.keyColumn)
		conds, args = append(conds, cond), append(args, a...)
	}
	if f.Name != "" {
		cond, a := anyLike(f.Name, "name")
		conds, args = append(conds, cond), append(args, a...)
	}
	if f.Age != "" {
		age, err := strconv.Atoi(f.Age)
		if err != nil {
			return nil, fmt.Errorf("SearchPeople: age filter: %w", types.ErrInvalidInput)
		}
		conds, args = append(conds, "age = ?"), append(args, age)
	}

	stmt, err := s.Db.PrepareContext(ctx,
		"SELECT "+t.columns()+" FROM "+t.name+where(conds)+" ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("SearchPeople: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("SearchPeople: query: %w", err)
	}
	defer rows.Close()

	people := make([]types.Person, 0)
	for rows.Next() {
		p := types.Person{Kind: kind}
		if err := rows.Scan(&p.RowID, &p.Key, &p.Name, &p.Age, &p.Email); err != nil {
			return nil, fmt.Errorf("SearchPeople: scan row: %w", err)
		}
		people = append(people, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("SearchPeople: rows iteration: %w", err)
	}

	return people, nil
}

// UpdatePerson replaces name, age and email. The business key itself is
// immutable. Returns the stored record.
func (s *SQLite) UpdatePerson(ctx context.Context, kind types.PersonKind, key string, p types.Person) (types.Person, error) {
	current, err := s.GetPerson(ctx, kind, key)
	if err != nil {
		return types.Person{}, err
	}

	t, _ := tableFor(kind)
	stmt, err := s.Db.PrepareContext(ctx,
		"UPDATE "+t.name+" SET name = ?, age = ?, email = ? WHERE id = ?",
	)
	if err != nil {
		return types.Person{}, fmt.Errorf("UpdatePerson: prepare: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, p.Name, p.Age, p.Email, current.RowID); err != nil {
		return types.Person{}, fmt.Errorf("UpdatePerson: exec: %w", translate(err))
	}

	// Re-fetch by the immutable key: the email used to find the row may
	// just have changed.
	return s.GetPerson(ctx, kind, current.Key)
}

// DeletePerson removes the one person found by business key or email.
// Registrations of a deleted student go with it (ON DELETE CASCADE); the
// courses of a deleted instructor become unassigned (ON DELETE SET NULL).
func (s *SQLite) DeletePerson(ctx context.Context, kind types.PersonKind, key string) error {
	t, err := tableFor(kind)
	if err != nil {
		return fmt.Errorf("DeletePerson: %w", err)
	}

	stmt, err := s.Db.PrepareContext(ctx,
		"DELETE FROM "+t.name+" WHERE id IN (SELECT id FROM "+t.name+t.lookup()+")",
	)
	if err != nil {
		return fmt.Errorf("DeletePerson: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, key, key, key)
	if err != nil {
		return fmt.Errorf("DeletePerson: exec: %w", translate(err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeletePerson: rows affected: %w", err)
	}
	if n == 0 {
		return &types.NotFoundError{Entity: string(kind), Key: key}
	}

	return nil
}

// personRowID resolves a business key (or email) to the surrogate key.
func (s *SQLite) personRowID(ctx context.Context, kind types.PersonKind, key string) (int64, error) {
	p, err := s.GetPerson(ctx, kind, key)
	if err != nil {
		return 0, err
	}
	return p.RowID, nil
}
