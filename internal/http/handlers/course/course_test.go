package course

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/school-records/internal/config"
	"github.com/aanand-mishra/school-records/internal/service"
	"github.com/aanand-mishra/school-records/internal/storage/sqlite"
	"github.com/aanand-mishra/school-records/internal/types"
)

func setup(t *testing.T) (*http.ServeMux, *service.Service) {
	t.Helper()

	store, err := sqlite.New(&config.Config{StoragePath: filepath.Join(t.TempDir(), "school.db")})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	svc := service.New(store, zerolog.Nop())
	_, err = svc.AddPerson(context.Background(), types.KindInstructor,
		types.PersonForm{ID: "I1", Name: "Ada", Age: "36", Email: "ada@x.com"})
	require.NoError(t, err)

	mux := http.NewServeMux()
	Register(mux, svc)
	return mux, svc
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rec
}

func decodeCourse(t *testing.T, rec *httptest.ResponseRecorder) types.Course {
	t.Helper()
	var c types.Course
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	return c
}

func TestCourseEndpoints(t *testing.T) {
	mux, _ := setup(t)

	rec := do(mux, http.MethodPost, "/api/courses", `{"id":"C1","name":"Algebra","instructor_id":"I1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Ada", decodeCourse(t, rec).InstructorName)

	rec = do(mux, http.MethodPost, "/api/courses", `{"id":"C1","name":"Again"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(mux, http.MethodPost, "/api/courses", `{"id":"C2","name":"Physics","instructor_id":"I9"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(mux, http.MethodPut, "/api/courses/C1", `{"name":"Algebra II"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	c := decodeCourse(t, rec)
	assert.Equal(t, "Algebra II", c.Name)
	assert.Empty(t, c.InstructorKey)

	rec = do(mux, http.MethodPut, "/api/courses/C1/instructor", `{"instructor_id":"ada@x.com"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "I1", decodeCourse(t, rec).InstructorKey)

	rec = do(mux, http.MethodGet, "/api/courses?instructor=ada", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []types.Course
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rec = do(mux, http.MethodDelete, "/api/courses/C1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(mux, http.MethodGet, "/api/courses/C1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCourseEndpoints_Validation(t *testing.T) {
	mux, _ := setup(t)

	rec := do(mux, http.MethodPost, "/api/courses", `{"id":"","name":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(mux, http.MethodPut, "/api/courses/C404/instructor", `{"instructor_id":"I1"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
