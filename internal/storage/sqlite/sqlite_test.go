package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/school-records/internal/config"
	"github.com/aanand-mishra/school-records/internal/storage"
	"github.com/aanand-mishra/school-records/internal/types"
)

var _ storage.Storage = (*SQLite)(nil)

func setupTestStore(t *testing.T) *SQLite {
	t.Helper()

	cfg := &config.Config{StoragePath: filepath.Join(t.TempDir(), "school.db")}
	s, err := New(cfg)
	require.NoError(t, err)

	t.Cleanup(func() { s.Close() })
	return s
}

func student(key, name string, age int, email string) types.Person {
	return types.Person{Kind: types.KindStudent, Key: key, Name: name, Age: age, Email: email}
}

func instructor(key, name string, age int, email string) types.Person {
	return types.Person{Kind: types.KindInstructor, Key: key, Name: name, Age: age, Email: email}
}

func countRows(t *testing.T, s *SQLite, table string) int {
	t.Helper()
	var n int
	require.NoError(t, s.Db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestNew_IsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "school.db")

	s, err := New(&config.Config{StoragePath: path})
	require.NoError(t, err)
	_, err = s.CreatePerson(context.Background(), student("S1", "Ann", 20, "ann@x.com"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = New(&config.Config{StoragePath: path})
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, 1, countRows(t, s, "students"))
}

func TestPeople(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	t.Run("Create and list", func(t *testing.T) {
		id, err := s.CreatePerson(ctx, student("S1", "Ann", 20, "ann@x.com"))
		require.NoError(t, err)
		assert.Positive(t, id)

		people, err := s.ListPeople(ctx, types.KindStudent)
		require.NoError(t, err)
		require.Len(t, people, 1)
		assert.Equal(t, "Ann", people[0].Name)
		assert.Equal(t, 20, people[0].Age)
		assert.Equal(t, "ann@x.com", people[0].Email)
		assert.Equal(t, "S1", people[0].Key)
	})

	t.Run("Duplicate email is rejected", func(t *testing.T) {
		_, err := s.CreatePerson(ctx, student("S2", "Other Ann", 21, "ann@x.com"))
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrDuplicateKey)
		assert.Equal(t, 1, countRows(t, s, "students"))
	})

	t.Run("Duplicate id is rejected", func(t *testing.T) {
		_, err := s.CreatePerson(ctx, student("S1", "Bob", 22, "bob@x.com"))
		assert.ErrorIs(t, err, types.ErrDuplicateKey)
	})

	t.Run("Students and instructors are separate", func(t *testing.T) {
		_, err := s.CreatePerson(ctx, instructor("S1", "Dr Ann", 50, "ann@x.com"))
		require.NoError(t, err)

		teachers, err := s.ListPeople(ctx, types.KindInstructor)
		require.NoError(t, err)
		require.Len(t, teachers, 1)
		assert.Equal(t, types.KindInstructor, teachers[0].Kind)
	})

	t.Run("Get by id or email", func(t *testing.T) {
		byKey, err := s.GetPerson(ctx, types.KindStudent, "S1")
		require.NoError(t, err)
		byEmail, err := s.GetPerson(ctx, types.KindStudent, "ann@x.com")
		require.NoError(t, err)
		assert.Equal(t, byKey, byEmail)

		_, err = s.GetPerson(ctx, types.KindStudent, "S404")
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("Update keeps the key", func(t *testing.T) {
		updated, err := s.UpdatePerson(ctx, types.KindStudent, "ann@x.com", student("", "Ann Lee", 21, "ann.lee@x.com"))
		require.NoError(t, err)
		assert.Equal(t, "S1", updated.Key)
		assert.Equal(t, "Ann Lee", updated.Name)
		assert.Equal(t, 21, updated.Age)
		assert.Equal(t, "ann.lee@x.com", updated.Email)

		_, err = s.UpdatePerson(ctx, types.KindStudent, "S404", student("", "X", 1, "x@x.com"))
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("Update into an existing email is a duplicate", func(t *testing.T) {
		_, err := s.CreatePerson(ctx, student("S2", "Bob", 22, "bob@x.com"))
		require.NoError(t, err)

		_, err = s.UpdatePerson(ctx, types.KindStudent, "S2", student("", "Bob", 22, "ann.lee@x.com"))
		assert.ErrorIs(t, err, types.ErrDuplicateKey)
	})

	t.Run("Delete by email then by id", func(t *testing.T) {
		require.NoError(t, s.DeletePerson(ctx, types.KindStudent, "ann.lee@x.com"))
		require.NoError(t, s.DeletePerson(ctx, types.KindStudent, "S2"))

		people, err := s.ListPeople(ctx, types.KindStudent)
		require.NoError(t, err)
		assert.Empty(t, people)
	})

	t.Run("Delete of a missing key is NotFound", func(t *testing.T) {
		err := s.DeletePerson(ctx, types.KindStudent, "S1")
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("Unknown kind is invalid input", func(t *testing.T) {
		_, err := s.ListPeople(ctx, types.PersonKind("janitor"))
		assert.ErrorIs(t, err, types.ErrInvalidInput)
	})
}

func TestDeletePerson_KeyWinsOverEmail(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	// A's key is literally B's email.
	_, err := s.CreatePerson(ctx, student("b@x.com", "A", 20, "a@x.com"))
	require.NoError(t, err)
	_, err = s.CreatePerson(ctx, student("S2", "B", 20, "b@x.com"))
	require.NoError(t, err)

	require.NoError(t, s.DeletePerson(ctx, types.KindStudent, "b@x.com"))

	people, err := s.ListPeople(ctx, types.KindStudent)
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, "B", people[0].Name)
}

func TestSearchPeople(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	for _, p := range []types.Person{
		student("S1", "Ann Smith", 20, "ann@x.com"),
		student("S2", "Bob Jones", 21, "bob@x.com"),
		student("X3", "Annabel", 22, "annabel@x.com"),
		student("S4", "100%_Real", 23, "real@x.com"),
		student("S5", "Émile Zola", 21, "emile@x.com"),
	} {
		_, err := s.CreatePerson(ctx, p)
		require.NoError(t, err)
	}

	tests := []struct {
		name   string
		filter types.Filter
		want   []string
	}{
		{"Empty filter returns everything", types.Filter{}, []string{"S1", "S2", "X3", "S4", "S5"}},
		{"Query is case-insensitive on name", types.Filter{Query: "ANN"}, []string{"S1", "X3"}},
		{"Query matches id", types.Filter{Query: "x3"}, []string{"X3"}},
		{"ID filter", types.Filter{ID: "s"}, []string{"S1", "S2", "S4", "S5"}},
		{"Filters are combined", types.Filter{ID: "S", Name: "ann"}, []string{"S1"}},
		{"Percent is literal", types.Filter{Name: "%_"}, []string{"S4"}},
		{"Underscore is literal", types.Filter{Name: "n_"}, []string{}},
		{"No match", types.Filter{Query: "zzz"}, []string{}},
		{"Non-ASCII exact spelling", types.Filter{Name: "Émile"}, []string{"S5"}},
		{"Non-ASCII upper case", types.Filter{Name: "ÉMILE"}, []string{"S5"}},
		{"Non-ASCII lower case", types.Filter{Query: "émile"}, []string{"S5"}},
		{"Age is exact", types.Filter{Age: "21"}, []string{"S2", "S5"}},
		{"Age combines with name", types.Filter{Age: "21", Name: "bob"}, []string{"S2"}},
		{"Age with no match", types.Filter{Age: "2"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			people, err := s.SearchPeople(ctx, types.KindStudent, tt.filter)
			require.NoError(t, err)

			keys := make([]string, 0, len(people))
			for _, p := range people {
				keys = append(keys, p.Key)
			}
			assert.Equal(t, tt.want, keys)
		})
	}
}

func TestCourses(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	_, err := s.CreatePerson(ctx, instructor("I1", "Dr Turing", 41, "turing@x.com"))
	require.NoError(t, err)

	t.Run("Create without instructor", func(t *testing.T) {
		_, err := s.CreateCourse(ctx, types.Course{Key: "C1", Name: "Algebra"})
		require.NoError(t, err)

		c, err := s.GetCourse(ctx, "C1")
		require.NoError(t, err)
		assert.Empty(t, c.InstructorKey)
		assert.Empty(t, c.InstructorName)
	})

	t.Run("Create with instructor by id", func(t *testing.T) {
		_, err := s.CreateCourse(ctx, types.Course{Key: "C2", Name: "Computability", InstructorKey: "I1"})
		require.NoError(t, err)

		c, err := s.GetCourse(ctx, "C2")
		require.NoError(t, err)
		assert.Equal(t, "I1", c.InstructorKey)
		assert.Equal(t, "Dr Turing", c.InstructorName)
	})

	t.Run("Unknown instructor is NotFound and nothing is inserted", func(t *testing.T) {
		_, err := s.CreateCourse(ctx, types.Course{Key: "C3", Name: "Ghosts", InstructorKey: "I404"})
		assert.ErrorIs(t, err, types.ErrNotFound)
		assert.Equal(t, 2, countRows(t, s, "courses"))
	})

	t.Run("Duplicate course id", func(t *testing.T) {
		_, err := s.CreateCourse(ctx, types.Course{Key: "C1", Name: "Again"})
		assert.ErrorIs(t, err, types.ErrDuplicateKey)
	})

	t.Run("Search by instructor name", func(t *testing.T) {
		courses, err := s.SearchCourses(ctx, types.Filter{Query: "turing"})
		require.NoError(t, err)
		require.Len(t, courses, 1)
		assert.Equal(t, "C2", courses[0].Key)
	})

	t.Run("Assign and unassign", func(t *testing.T) {
		require.NoError(t, s.AssignInstructor(ctx, "C1", "turing@x.com"))
		c, err := s.GetCourse(ctx, "C1")
		require.NoError(t, err)
		assert.Equal(t, "I1", c.InstructorKey)

		require.NoError(t, s.AssignInstructor(ctx, "C1", ""))
		c, err = s.GetCourse(ctx, "C1")
		require.NoError(t, err)
		assert.Empty(t, c.InstructorKey)

		assert.ErrorIs(t, s.AssignInstructor(ctx, "C404", "I1"), types.ErrNotFound)
		assert.ErrorIs(t, s.AssignInstructor(ctx, "C1", "I404"), types.ErrNotFound)
	})

	t.Run("Update", func(t *testing.T) {
		c, err := s.UpdateCourse(ctx, "C1", types.Course{Name: "Linear Algebra", InstructorKey: "I1"})
		require.NoError(t, err)
		assert.Equal(t, "Linear Algebra", c.Name)
		assert.Equal(t, "Dr Turing", c.InstructorName)

		_, err = s.UpdateCourse(ctx, "C404", types.Course{Name: "X"})
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("Deleting the instructor unassigns courses", func(t *testing.T) {
		require.NoError(t, s.DeletePerson(ctx, types.KindInstructor, "I1"))

		courses, err := s.ListCourses(ctx)
		require.NoError(t, err)
		require.Len(t, courses, 2)
		for _, c := range courses {
			assert.Empty(t, c.InstructorKey)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, s.DeleteCourse(ctx, "C1"))
		assert.ErrorIs(t, s.DeleteCourse(ctx, "C1"), types.ErrNotFound)
	})

	t.Run("Search folds non-ASCII case", func(t *testing.T) {
		_, err := s.CreateCourse(ctx, types.Course{Key: "C4", Name: "Économie"})
		require.NoError(t, err)

		for _, q := range []string{"Économie", "ÉCONOMIE", "écon"} {
			courses, err := s.SearchCourses(ctx, types.Filter{Name: q})
			require.NoError(t, err)
			require.Len(t, courses, 1, q)
			assert.Equal(t, "C4", courses[0].Key)
		}
	})
}

func TestRegistrations(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	_, err := s.CreatePerson(ctx, student("S1", "Ann", 20, "ann@x.com"))
	require.NoError(t, err)
	_, err = s.CreateCourse(ctx, types.Course{Key: "C1", Name: "Algebra"})
	require.NoError(t, err)

	t.Run("Register once", func(t *testing.T) {
		require.NoError(t, s.CreateRegistration(ctx, "ann@x.com", "C1"))

		regs, err := s.ListRegistrations(ctx, types.Filter{})
		require.NoError(t, err)
		assert.Equal(t, []types.Registration{
			{StudentKey: "S1", StudentName: "Ann", CourseKey: "C1", CourseName: "Algebra"},
		}, regs)
	})

	t.Run("Register twice", func(t *testing.T) {
		err := s.CreateRegistration(ctx, "S1", "C1")
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrDuplicateRegistration)
		assert.Equal(t, types.KindDuplicateRegistration, types.KindOf(err))
		assert.Equal(t, 1, countRows(t, s, "registrations"))
	})

	t.Run("Unknown student or course", func(t *testing.T) {
		assert.ErrorIs(t, s.CreateRegistration(ctx, "S404", "C1"), types.ErrNotFound)
		assert.ErrorIs(t, s.CreateRegistration(ctx, "S1", "C404"), types.ErrNotFound)
	})

	t.Run("Filter", func(t *testing.T) {
		regs, err := s.ListRegistrations(ctx, types.Filter{Query: "alg"})
		require.NoError(t, err)
		assert.Len(t, regs, 1)

		regs, err = s.ListRegistrations(ctx, types.Filter{Query: "bio"})
		require.NoError(t, err)
		assert.Empty(t, regs)
	})

	t.Run("Unregister", func(t *testing.T) {
		require.NoError(t, s.DeleteRegistration(ctx, "S1", "C1"))
		assert.ErrorIs(t, s.DeleteRegistration(ctx, "S1", "C1"), types.ErrNotFound)
	})

	t.Run("Deleting a student cascades", func(t *testing.T) {
		require.NoError(t, s.CreateRegistration(ctx, "S1", "C1"))
		require.NoError(t, s.DeletePerson(ctx, types.KindStudent, "S1"))
		assert.Equal(t, 0, countRows(t, s, "registrations"))
	})
}

func TestListRecords(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	_, err := s.CreateCourse(ctx, types.Course{Key: "C1", Name: "Algebra"})
	require.NoError(t, err)
	_, err = s.CreatePerson(ctx, instructor("I1", "Dr Turing", 41, "turing@x.com"))
	require.NoError(t, err)
	_, err = s.CreatePerson(ctx, student("S1", "Ann", 20, "ann@x.com"))
	require.NoError(t, err)

	records, err := s.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "Student", records[0].Type)
	assert.Equal(t, "Instructor", records[1].Type)
	assert.Equal(t, types.Record{Type: "Course", ID: "C1", Name: "Algebra"}, records[2])
	require.NotNil(t, records[0].Age)
	assert.Equal(t, 20, *records[0].Age)
}

func TestBackup(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	_, err := s.CreatePerson(ctx, student("S1", "Ann", 20, "ann@x.com"))
	require.NoError(t, err)
	_, err = s.CreateCourse(ctx, types.Course{Key: "C1", Name: "Algebra"})
	require.NoError(t, err)
	require.NoError(t, s.CreateRegistration(ctx, "S1", "C1"))

	dest := filepath.Join(t.TempDir(), "backups", "copy.db")
	require.NoError(t, s.Backup(ctx, dest))

	// The source keeps working after the backup.
	_, err = s.CreatePerson(ctx, student("S2", "Bob", 21, "bob@x.com"))
	require.NoError(t, err)

	copied, err := New(&config.Config{StoragePath: dest})
	require.NoError(t, err)
	defer copied.Close()

	assert.Equal(t, 1, countRows(t, copied, "students"))
	assert.Equal(t, 1, countRows(t, copied, "courses"))
	assert.Equal(t, 1, countRows(t, copied, "registrations"))
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	_, err := s.CreatePerson(ctx, student("S1", "Ann", 20, "ann@x.com"))
	require.NoError(t, err)
	_, err = s.CreateCourse(ctx, types.Course{Key: "C1", Name: "Algebra"})
	require.NoError(t, err)
	require.NoError(t, s.CreateRegistration(ctx, "S1", "C1"))

	require.NoError(t, s.Clear(ctx))

	for _, table := range []string{"students", "instructors", "courses", "registrations"} {
		assert.Equal(t, 0, countRows(t, s, table), table)
	}

	// The schema is usable again straight away.
	_, err = s.CreatePerson(ctx, student("S1", "Ann", 20, "ann@x.com"))
	assert.NoError(t, err)
}
