// Package storage defines the Storage interface, the contract any
// database backend must satisfy to hold the school's records.
//
// The service layer depends only on this interface, so it can be tested
// against a fake and the SQLite implementation can be swapped without
// touching it.
//
// Implementations translate their own constraint errors into the
// sentinels of package types (ErrDuplicateKey, ErrNotFound, ...); any
// other error is a storage failure and is returned wrapped.
package storage

import (
	"context"
	"io"

	"github.com/aanand-mishra/school-records/internal/types"
)

// Storage is the database contract.
type Storage interface {
	// CreatePerson inserts a student or instructor (chosen by p.Kind) and
	// returns the surrogate row ID.
	CreatePerson(ctx context.Context, p types.Person) (int64, error)

	// GetPerson looks a person up by business key or email.
	GetPerson(ctx context.Context, kind types.PersonKind, key string) (types.Person, error)

	// ListPeople returns every person of the kind in insertion order.
	ListPeople(ctx context.Context, kind types.PersonKind) ([]types.Person, error)

	// SearchPeople returns the people matching f. A zero filter behaves
	// like ListPeople.
	SearchPeople(ctx context.Context, kind types.PersonKind, f types.Filter) ([]types.Person, error)

	// UpdatePerson overwrites name, age and email of the person found by
	// key and returns the stored result.
	UpdatePerson(ctx context.Context, kind types.PersonKind, key string, p types.Person) (types.Person, error)

	// DeletePerson removes exactly one person, found by key or email.
	DeletePerson(ctx context.Context, kind types.PersonKind, key string) error

	CreateCourse(ctx context.Context, c types.Course) (int64, error)
	GetCourse(ctx context.Context, key string) (types.Course, error)
	ListCourses(ctx context.Context) ([]types.Course, error)
	SearchCourses(ctx context.Context, f types.Filter) ([]types.Course, error)
	UpdateCourse(ctx context.Context, key string, c types.Course) (types.Course, error)
	DeleteCourse(ctx context.Context, key string) error

	// AssignInstructor sets the course's instructor; an empty
	// instructorKey unassigns it.
	AssignInstructor(ctx context.Context, courseKey, instructorKey string) error

	CreateRegistration(ctx context.Context, studentKey, courseKey string) error
	ListRegistrations(ctx context.Context, f types.Filter) ([]types.Registration, error)
	DeleteRegistration(ctx context.Context, studentKey, courseKey string) error

	// ListRecords returns the combined students/instructors/courses rows
	// used by the "view all" page and the CSV export.
	ListRecords(ctx context.Context) ([]types.Record, error)

	// Backup writes a consistent copy of the live database to dest.
	Backup(ctx context.Context, dest string) error

	// Clear drops every table and recreates an empty schema.
	Clear(ctx context.Context) error

	io.Closer
}
