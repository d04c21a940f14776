package person

import (
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
	"github.com/aanand-mishra/school-records/internal/utils/response"
)

func setupRouter(t *testing.T) *http.ServeMux {
	t.Helper()

	store, err := sqlite.New(&config.Config{StoragePath: filepath.Join(t.TempDir(), "school.db")})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	svc := service.New(store, zerolog.Nop())
	mux := http.NewServeMux()
	Register(mux, "/api/students", svc, types.KindStudent)
	Register(mux, "/api/instructors", svc, types.KindInstructor)
	return mux
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rec
}

func TestStudentEndpoints(t *testing.T) {
	mux := setupRouter(t)

	rec := do(t, mux, http.MethodPost, "/api/students", `{"id":"S1","name":"Ann","age":20,"email":"ann@x.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created types.Person
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "S1", created.Key)
	assert.Equal(t, types.KindStudent, created.Kind)

	rec = do(t, mux, http.MethodGet, "/api/students/ann@x.com", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got types.Person
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Ann", got.Name)

	rec = do(t, mux, http.MethodPut, "/api/students/S1", `{"name":"Ann Lee","age":"21","email":"ann@x.com"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, mux, http.MethodGet, "/api/students?q=lee", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []types.Person
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, 21, list[0].Age)

	// Instructors live in their own table.
	rec = do(t, mux, http.MethodGet, "/api/instructors", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, mux, http.MethodDelete, "/api/students/S1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"deleted"}`, rec.Body.String())

	rec = do(t, mux, http.MethodDelete, "/api/students/S1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStudentEndpoints_Errors(t *testing.T) {
	mux := setupRouter(t)

	rec := do(t, mux, http.MethodPost, "/api/students", `{"id":"S1","name":"Ann","age":20,"email":"ann@x.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	tests := []struct {
		name     string
		method   string
		target   string
		body     string
		wantCode int
		wantKind types.ErrorKind
	}{
		{"Empty body", http.MethodPost, "/api/students", "", http.StatusBadRequest, types.KindInvalidInput},
		{"Age is text", http.MethodPost, "/api/students", `{"id":"S2","name":"B","age":"abc","email":"b@x.com"}`, http.StatusBadRequest, types.KindInvalidInput},
		{"Negative age", http.MethodPost, "/api/students", `{"id":"S2","name":"B","age":-3,"email":"b@x.com"}`, http.StatusBadRequest, types.KindInvalidInput},
		{"Duplicate email", http.MethodPost, "/api/students", `{"id":"S2","name":"B","age":3,"email":"ann@x.com"}`, http.StatusConflict, types.KindDuplicateKey},
		{"Unknown key", http.MethodGet, "/api/students/S9", "", http.StatusNotFound, types.KindNotFound},
		{"Age filter is text", http.MethodGet, "/api/students?age=abc", "", http.StatusBadRequest, types.KindInvalidInput},
		{"Update unknown", http.MethodPut, "/api/students/S9", `{"name":"B","age":3,"email":"b@x.com"}`, http.StatusNotFound, types.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, mux, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)

			var body response.Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, response.StatusError, body.Status)
			assert.Equal(t, tt.wantKind, body.Kind)
		})
	}
}

func TestList_AgeFilter(t *testing.T) {
	mux := setupRouter(t)

	rec := do(t, mux, http.MethodPost, "/api/students", `{"id":"S1","name":"Ann","age":1e1,"email":"ann@x.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = do(t, mux, http.MethodPost, "/api/students", `{"id":"S2","name":"Bob","age":11,"email":"bob@x.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, mux, http.MethodGet, "/api/students?age=10", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var people []types.Person
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &people))
	require.Len(t, people, 1)
	assert.Equal(t, "S1", people[0].Key)
	assert.Equal(t, 10, people[0].Age)
}

func TestNew_ReportsEveryMissingField(t *testing.T) {
	mux := setupRouter(t)

	rec := do(t, mux, http.MethodPost, "/api/instructors", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Fields)
	assert.Equal(t, "id", body.Fields[0].Field)
}
