package sqlite

import (
	"context"
	"errors"
	"fmt"

	"github.com/aanand-mishra/school-records/internal/types"
)

// resolvePair turns a student key (id or email) and a course key into
// surrogate IDs, reporting whichever one is missing.
func (s *SQLite) resolvePair(ctx context.Context, studentKey, courseKey string) (int64, int64, error) {
	studentID, err := s.personRowID(ctx, types.KindStudent, studentKey)
	if err != nil {
		return 0, 0, err
	}

	course, err := s.GetCourse(ctx, courseKey)
	if err != nil {
		return 0, 0, err
	}

	return studentID, course.RowID, nil
}

// CreateRegistration registers a student to a course. Registering the same
// pair twice fails with ErrDuplicateRegistration.
func (s *SQLite) CreateRegistration(ctx context.Context, studentKey, courseKey string) error {
	studentID, courseID, err := s.resolvePair(ctx, studentKey, courseKey)
	if err != nil {
		return fmt.Errorf("CreateRegistration: %w", err)
	}

	stmt, err := s.Db.PrepareContext(ctx,
		"INSERT INTO registrations (student_id, course_id) VALUES (?, ?)",
	)
	if err != nil {
		return fmt.Errorf("CreateRegistration: prepare: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, studentID, courseID); err != nil {
		err = translate(err)
		if errors.Is(err, types.ErrDuplicateKey) {
			return fmt.Errorf("CreateRegistration: %w: %w", types.ErrDuplicateRegistration, err)
		}
		return fmt.Errorf("CreateRegistration: exec: %w", err)
	}

	return nil
}

// ListRegistrations returns registrations in the order they were made.
// Query matches student or course, by name or id; ID matches either id;
// Name matches either name.
func (s *SQLite) ListRegistrations(ctx context.Context, f types.Filter) ([]types.Registration, error) {
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
	add(f.Query, "s.name", "s.student_id", "c.course_name", "c.course_id")
	add(f.ID, "s.student_id", "c.course_id")
	add(f.Name, "s.name", "c.course_name")

	stmt, err := s.Db.PrepareContext(ctx, `
		SELECT s.student_id, s.name, c.course_id, c.course_name
		FROM registrations r
		JOIN students s ON s.id = r.student_id
		JOIN courses  c ON c.id = r.course_id`+where(conds)+`
		ORDER BY r.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("ListRegistrations: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("ListRegistrations: query: %w", err)
	}
	defer rows.Close()

	regs := make([]types.Registration, 0)
	for rows.Next() {
		var r types.Registration
		if err := rows.Scan(&r.StudentKey, &r.StudentName, &r.CourseKey, &r.CourseName); err != nil {
			return nil, fmt.Errorf("ListRegistrations: scan row: %w", err)
		}
		regs = append(regs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListRegistrations: rows iteration: %w", err)
	}

	return regs, nil
}

func (s *SQLite) DeleteRegistration(ctx context.Context, studentKey, courseKey string) error {
	studentID, courseID, err := s.resolvePair(ctx, studentKey, courseKey)
	if err != nil {
		return fmt.Errorf("DeleteRegistration: %w", err)
	}

	if err := s.execOne(ctx, "registration", studentKey+"/"+courseKey,
		"DELETE FROM registrations WHERE student_id = ? AND course_id = ?",
		studentID, courseID,
	); err != nil {
		return fmt.Errorf("DeleteRegistration: %w", err)
	}
	return nil
}
