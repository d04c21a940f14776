// Package service is the operation layer shared by both front-ends. It
// turns raw form input into validated entities, calls storage, and keeps
// the dropdown revision current. It knows nothing about HTTP or terminals.
package service

import (
	"context"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/aanand-mishra/school-records/internal/storage"
	"github.com/aanand-mishra/school-records/internal/types"
)

// Service holds the storage handle every operation goes through. Create
// one per process with New and hand it to each front-end component.
type Service struct {
	store storage.Storage
	log   zerolog.Logger

	// revision changes whenever a dropdown source (students, instructors,
	// courses) may have changed. Seeded from the clock so values from an
	// earlier run are never reused.
	revision atomic.Uint64
}

func New(store storage.Storage, log zerolog.Logger) *Service {
	s := &Service{store: store, log: log.With().Str("component", "service").Logger()}
	s.revision.Store(uint64(time.Now().UnixNano()))
	return s
}

// Revision is the current dropdown revision.
func (s *Service) Revision() uint64 {
	return s.revision.Load()
}

func (s *Service) bump() {
	s.revision.Add(1)
}

// ─── People ─────────────────────────────────────────────────────────────────

// AddPerson validates the form and stores a new student or instructor.
func (s *Service) AddPerson(ctx context.Context, kind types.PersonKind, form types.PersonForm) (types.Person, error) {
	p, err := types.ParsePersonForm(kind, form)
	if err != nil {
		return types.Person{}, err
	}

	id, err := s.store.CreatePerson(ctx, p)
	if err != nil {
		return types.Person{}, err
	}
	p.RowID = id
	s.bump()

	s.log.Info().Str("kind", string(kind)).Str("id", p.Key).Msg("person added")
	return p, nil
}

// UpdatePerson overwrites name, age and email of the person found by key
// (business key or email). Business keys are immutable, so form.ID is
// ignored.
func (s *Service) UpdatePerson(ctx context.Context, kind types.PersonKind, key string, form types.PersonForm) (types.Person, error) {
	key = strings.TrimSpace(key)
	form.ID = key

	p, err := types.ParsePersonForm(kind, form)
	if err != nil {
		return types.Person{}, err
	}

	updated, err := s.store.UpdatePerson(ctx, kind, key, p)
	if err != nil {
		return types.Person{}, err
	}
	s.bump()

	s.log.Info().Str("kind", string(kind)).Str("id", updated.Key).Msg("person updated")
	return updated, nil
}

func (s *Service) GetPerson(ctx context.Context, kind types.PersonKind, key string) (types.Person, error) {
	key, err := requireKey("id", key)
	if err != nil {
		return types.Person{}, err
	}
	return s.store.GetPerson(ctx, kind, key)
}

func (s *Service) ListPeople(ctx context.Context, kind types.PersonKind) ([]types.Person, error) {
	return s.store.ListPeople(ctx, kind)
}

// SearchPeople lists the people of kind matching f. A non-numeric age
// filter is rejected rather than matching nothing.
func (s *Service) SearchPeople(ctx context.Context, kind types.PersonKind, f types.Filter) ([]types.Person, error) {
	f = trimFilter(f)
	if f.Age != "" {
		n, err := strconv.Atoi(f.Age)
		if err != nil || n < 0 {
			return nil, types.ValidationErrors{{Field: "age", Message: "age must be a non-negative integer"}}
		}
		f.Age = strconv.Itoa(n)
	}
	return s.store.SearchPeople(ctx, kind, f)
}

// DeletePerson removes the person selected by business key or email.
func (s *Service) DeletePerson(ctx context.Context, kind types.PersonKind, key string) error {
	key, err := requireKey("id", key)
	if err != nil {
		return err
	}

	if err := s.store.DeletePerson(ctx, kind, key); err != nil {
		return err
	}
	s.bump()

	s.log.Info().Str("kind", string(kind)).Str("key", key).Msg("person deleted")
	return nil
}

// ─── Courses ────────────────────────────────────────────────────────────────

func (s *Service) AddCourse(ctx context.Context, form types.CourseForm) (types.Course, error) {
	c, err := types.ParseCourseForm(form)
	if err != nil {
		return types.Course{}, err
	}

	if _, err := s.store.CreateCourse(ctx, c); err != nil {
		return types.Course{}, err
	}
	s.bump()

	s.log.Info().Str("id", c.Key).Msg("course added")
	return s.store.GetCourse(ctx, c.Key)
}

// UpdateCourse overwrites the name and instructor of course key.
func (s *Service) UpdateCourse(ctx context.Context, key string, form types.CourseForm) (types.Course, error) {
	key = strings.TrimSpace(key)
	form.ID = key

	c, err := types.ParseCourseForm(form)
	if err != nil {
		return types.Course{}, err
	}

	updated, err := s.store.UpdateCourse(ctx, key, c)
	if err != nil {
		return types.Course{}, err
	}
	s.bump()

	s.log.Info().Str("id", key).Msg("course updated")
	return updated, nil
}

func (s *Service) GetCourse(ctx context.Context, key string) (types.Course, error) {
	key, err := requireKey("id", key)
	if err != nil {
		return types.Course{}, err
	}
	return s.store.GetCourse(ctx, key)
}

func (s *Service) ListCourses(ctx context.Context) ([]types.Course, error) {
	return s.store.ListCourses(ctx)
}

func (s *Service) SearchCourses(ctx context.Context, f types.Filter) ([]types.Course, error) {
	return s.store.SearchCourses(ctx, trimFilter(f))
}

func (s *Service) DeleteCourse(ctx context.Context, key string) error {
	key, err := requireKey("id", key)
	if err != nil {
		return err
	}

	if err := s.store.DeleteCourse(ctx, key); err != nil {
		return err
	}
	s.bump()

	s.log.Info().Str("id", key).Msg("course deleted")
	return nil
}

// AssignInstructor sets course's instructor. An empty instructorKey
// leaves the course unassigned.
func (s *Service) AssignInstructor(ctx context.Context, courseKey, instructorKey string) error {
	courseKey, err := requireKey("course", courseKey)
	if err != nil {
		return err
	}
	instructorKey = strings.TrimSpace(instructorKey)

	if err := s.store.AssignInstructor(ctx, courseKey, instructorKey); err != nil {
		return err
	}
	s.bump()

	s.log.Info().Str("course", courseKey).Str("instructor", instructorKey).Msg("instructor assigned")
	return nil
}

// ─── Registrations ──────────────────────────────────────────────────────────

// Register enrols a student (by id or email) in a course (by id).
func (s *Service) Register(ctx context.Context, studentKey, courseKey string) error {
	studentKey, courseKey, err := requirePair(studentKey, courseKey)
	if err != nil {
		return err
	}

	if err := s.store.CreateRegistration(ctx, studentKey, courseKey); err != nil {
		return err
	}

	s.log.Info().Str("student", studentKey).Str("course", courseKey).Msg("student registered")
	return nil
}

func (s *Service) ListRegistrations(ctx context.Context, f types.Filter) ([]types.Registration, error) {
	return s.store.ListRegistrations(ctx, trimFilter(f))
}

func (s *Service) Unregister(ctx context.Context, studentKey, courseKey string) error {
	studentKey, courseKey, err := requirePair(studentKey, courseKey)
	if err != nil {
		return err
	}

	if err := s.store.DeleteRegistration(ctx, studentKey, courseKey); err != nil {
		return err
	}

	s.log.Info().Str("student", studentKey).Str("course", courseKey).Msg("student unregistered")
	return nil
}

// ─── Dropdowns ──────────────────────────────────────────────────────────────

// Options re-reads every dropdown source. Callers compare Revision with
// the one they rendered to decide whether to refresh.
func (s *Service) Options(ctx context.Context) (types.Options, error) {
	rev := s.Revision()

	students, err := s.store.ListPeople(ctx, types.KindStudent)
	if err != nil {
		return types.Options{}, err
	}
	instructors, err := s.store.ListPeople(ctx, types.KindInstructor)
	if err != nil {
		return types.Options{}, err
	}
	courses, err := s.store.ListCourses(ctx)
	if err != nil {
		return types.Options{}, err
	}

	opts := types.Options{
		Revision:    rev,
		Students:    make([]types.Option, 0, len(students)),
		Instructors: make([]types.Option, 0, len(instructors)),
		Courses:     make([]types.Option, 0, len(courses)),
	}
	for _, p := range students {
		opts.Students = append(opts.Students, types.Option{Key: p.Key, Label: p.Name + " (" + p.Key + ")"})
	}
	for _, p := range instructors {
		opts.Instructors = append(opts.Instructors, types.Option{Key: p.Key, Label: p.Name + " (" + p.Key + ")"})
	}
	for _, c := range courses {
		opts.Courses = append(opts.Courses, types.Option{Key: c.Key, Label: c.Name + " (" + c.Key + ")"})
	}

	return opts, nil
}

// ─── helpers ────────────────────────────────────────────────────────────────

func requireKey(field, key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", types.ValidationErrors{{Field: field, Message: field + " is required"}}
	}
	return key, nil
}

func requirePair(studentKey, courseKey string) (string, string, error) {
	studentKey = strings.TrimSpace(studentKey)
	courseKey = strings.TrimSpace(courseKey)

	var errs types.ValidationErrors
	if studentKey == "" {
		errs = append(errs, types.FieldError{Field: "student", Message: "student is required"})
	}
	if courseKey == "" {
		errs = append(errs, types.FieldError{Field: "course", Message: "course is required"})
	}
	if len(errs) > 0 {
		return "", "", errs
	}
	return studentKey, courseKey, nil
}

func trimFilter(f types.Filter) types.Filter {
	return types.Filter{
		Query:      strings.TrimSpace(f.Query),
		ID:         strings.TrimSpace(f.ID),
		Name:       strings.TrimSpace(f.Name),
		Age:        strings.TrimSpace(f.Age),
		Instructor: strings.TrimSpace(f.Instructor),
	}
}
