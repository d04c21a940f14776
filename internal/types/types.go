// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// handlers, the service layer, and storage can all import types without
// depending on each other.
package types

// PersonKind tells the two person variants apart. Students and instructors
// carry exactly the same fields, so they share one struct and one set of
// storage queries; the kind selects the table.
type PersonKind string

const (
	KindStudent    PersonKind = "student"
	KindInstructor PersonKind = "instructor"
)

// Valid reports whether k is one of the known person kinds.
func (k PersonKind) Valid() bool {
	return k == KindStudent || k == KindInstructor
}

// Label is the capitalised kind, used as the Type column of exports.
func (k PersonKind) Label() string {
	switch k {
	case KindStudent:
		return "Student"
	case KindInstructor:
		return "Instructor"
	default:
		return string(k)
	}
}

// Person is a student or an instructor.
//
// Key is the business key the user typed (student_id / instructor_id).
// RowID is the surrogate primary key; it never leaves the process.
//
// Struct tags:
//
//  1. json:"..."      the wire shape served by the HTTP front-end.
//  2. validate:"..."  rules checked by go-playground/validator when the
//     value is constructed (see NewPerson).
type Person struct {
	RowID int64      `json:"-"`
	Kind  PersonKind `json:"kind"  validate:"required,oneof=student instructor"`
	Key   string     `json:"id"    validate:"required"`
	Name  string     `json:"name"  validate:"required"`
	Age   int        `json:"age"   validate:"gte=0"`
	Email string     `json:"email" validate:"required,email"`
}

// Course is a course offering. InstructorKey is empty when no instructor
// is assigned; InstructorName is filled in on reads only.
type Course struct {
	RowID          int64  `json:"-"`
	Key            string `json:"id"   validate:"required"`
	Name           string `json:"name" validate:"required"`
	InstructorKey  string `json:"instructor_id,omitempty"`
	InstructorName string `json:"instructor_name,omitempty"`
}

// Registration links one student to one course.
type Registration struct {
	StudentKey  string `json:"student_id"`
	StudentName string `json:"student_name"`
	CourseKey   string `json:"course_id"`
	CourseName  string `json:"course_name"`
}

// PersonForm is a person exactly as it arrives from a form: every field is
// still a string. ParsePersonForm turns it into a validated Person.
type PersonForm struct {
	ID    string
	Name  string
	Age   string
	Email string
}

// CourseForm is the raw course form. InstructorID is optional.
type CourseForm struct {
	ID           string
	Name         string
	InstructorID string
}

// Filter narrows a list. Every non-empty field must match (case-insensitive
// substring); Query matches if any searchable field of the entity contains
// it. Age applies to people only and matches the exact age. A zero Filter
// matches everything.
type Filter struct {
	Query      string `json:"q,omitempty"`
	ID         string `json:"id,omitempty"`
	Name       string `json:"name,omitempty"`
	Age        string `json:"age,omitempty"`
	Instructor string `json:"instructor,omitempty"`
}

// IsZero reports whether the filter has no constraints.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// Record is one row of the combined "view all" listing and of the CSV
// export. Age and Email are nil/empty for courses.
type Record struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Name  string `json:"name"`
	Age   *int   `json:"age"`
	Email string `json:"email"`
}

// Option is one entry of a dropdown.
type Option struct {
	Key   string `json:"id"`
	Label string `json:"label"`
}

// Options is everything a UI needs to fill its selectors. Revision changes
// whenever any of the lists may have changed.
type Options struct {
	Revision    uint64   `json:"revision"`
	Students    []Option `json:"students"`
	Instructors []Option `json:"instructors"`
	Courses     []Option `json:"courses"`
}
