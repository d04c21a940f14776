package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aanand-mishra/school-records/internal/types"
)

// courseSelect joins the instructor so lists can show a name instead of a
// surrogate key. Unassigned courses come back with empty strings.
const courseSelect = `
	SELECT c.id, c.course_id, c.course_name,
	       COALESCE(i.instructor_id, ''), COALESCE(i.name, '')
	FROM courses c
	LEFT JOIN instructors i ON i.id = c.instructor_id`

func scanCourse(row interface{ Scan(...any) error }) (types.Course, error) {
	var c types.Course
	err := row.Scan(&c.RowID, &c.Key, &c.Name, &c.InstructorKey, &c.InstructorName)
	return c, err
}

// instructorRef resolves an optional instructor key to a nullable FK value.
func (s *SQLite) instructorRef(ctx context.Context, instructorKey string) (sql.NullInt64, error) {
	if instructorKey == "" {
		return sql.NullInt64{}, nil
	}
	id, err := s.personRowID(ctx, types.KindInstructor, instructorKey)
	if err != nil {
		return sql.NullInt64{}, err
	}
	return sql.NullInt64{Int64: id, Valid: true}, nil
}

// CreateCourse inserts a course. A non-empty InstructorKey must name an
// existing instructor, otherwise the course is not created.
func (s *SQLite) CreateCourse(ctx context.Context, c types.Course) (int64, error) {
	instructor, err := s.instructorRef(ctx, c.InstructorKey)
	if err != nil {
		return 0, fmt.Errorf("CreateCourse: %w", err)
	}

	stmt, err := s.Db.PrepareContext(ctx,
		"INSERT INTO courses (course_id, course_name, instructor_id) VALUES (?, ?, ?)",
	)
	if err != nil {
		return 0, fmt.Errorf("CreateCourse: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, c.Key, c.Name, instructor)
	if err != nil {
		return 0, fmt.Errorf("CreateCourse: exec: %w", translate(err))
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("CreateCourse: last insert id: %w", err)
	}

	return lastID, nil
}

func (s *SQLite) GetCourse(ctx context.Context, key string) (types.Course, error) {
	stmt, err := s.Db.PrepareContext(ctx, courseSelect+" WHERE c.course_id = ?")
	if err != nil {
		return types.Course{}, fmt.Errorf("GetCourse: prepare: %w", err)
	}
	defer stmt.Close()

	c, err := scanCourse(stmt.QueryRowContext(ctx, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Course{}, &types.NotFoundError{Entity: "course", Key: key}
		}
		return types.Course{}, fmt.Errorf("GetCourse: scan: %w", err)
	}

	return c, nil
}

func (s *SQLite) ListCourses(ctx context.Context) ([]types.Course, error) {
	return s.SearchCourses(ctx, types.Filter{})
}

// SearchCourses applies f. Query matches course name, course id or the
// instructor's name; Instructor matches the instructor's name or id.
func (s *SQLite) SearchCourses(ctx context.Context, f types.Filter) ([]types.Course, error) {
	var (
		conds []string
		args  []any
	)
	add := func(value string, columns ...string) {
		if value == "" {
			return
		}
		cond, a := anyLike(value, columns...)
		conds, args = append(conds, cond), append(args, a...)
	}
	add(f.Query, "c.course_name", "c.course_id", "COALESCE(i.name, '')")
	add(f.ID, "c.course_id")
	add(f.Name, "c.course_name")
	add(f.Instructor, "COALESCE(i.name, '')", "COALESCE(i.instructor_id, '')")

	stmt, err := s.Db.PrepareContext(ctx, courseSelect+where(conds)+" ORDER BY c.id")
	if err != nil {
		return nil, fmt.Errorf("SearchCourses: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("SearchCourses: query: %w", err)
	}
	defer rows.Close()

	courses := make([]types.Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("SearchCourses: scan row: %w", err)
		}
		courses = append(courses, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("SearchCourses: rows iteration: %w", err)
	}

	return courses, nil
}

// UpdateCourse overwrites the name and instructor of the course with the
// given key and returns the stored record.
func (s *SQLite) UpdateCourse(ctx context.Context, key string, c types.Course) (types.Course, error) {
	instructor, err := s.instructorRef(ctx, c.InstructorKey)
	if err != nil {
		return types.Course{}, fmt.Errorf("UpdateCourse: %w", err)
	}

	if err := s.execOne(ctx, "course", key,
		"UPDATE courses SET course_name = ?, instructor_id = ? WHERE course_id = ?",
		c.Name, instructor, key,
	); err != nil {
		return types.Course{}, fmt.Errorf("UpdateCourse: %w", err)
	}

	return s.GetCourse(ctx, key)
}

// DeleteCourse removes the course; its registrations cascade.
func (s *SQLite) DeleteCourse(ctx context.Context, key string) error {
	if err := s.execOne(ctx, "course", key, "DELETE FROM courses WHERE course_id = ?", key); err != nil {
		return fmt.Errorf("DeleteCourse: %w", err)
	}
	return nil
}

func (s *SQLite) AssignInstructor(ctx context.Context, courseKey, instructorKey string) error {
	instructor, err := s.instructorRef(ctx, instructorKey)
	if err != nil {
		return fmt.Errorf("AssignInstructor: %w", err)
	}

	if err := s.execOne(ctx, "course", courseKey,
		"UPDATE courses SET instructor_id = ? WHERE course_id = ?",
		instructor, courseKey,
	); err != nil {
		return fmt.Errorf("AssignInstructor: %w", err)
	}
	return nil
}

// execOne runs a statement that must touch exactly one row identified by
// key; zero affected rows is reported as NotFound for entity.
func (s *SQLite) execOne(ctx context.Context, entity, key, query string, args ...any) error {
	stmt, err := s.Db.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, args...)
	if err != nil {
		return fmt.Errorf("exec: %w", translate(err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return &types.NotFoundError{Entity: entity, Key: key}
	}
	return nil
}
