// Package course contains the HTTP handlers for the Course resource.
package course

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aanand-mishra/school-records/internal/types"
	"github.com/aanand-mishra/school-records/internal/utils/request"
	"github.com/aanand-mishra/school-records/internal/utils/response"
)

type Service interface {
	AddCourse(ctx context.Context, form types.CourseForm) (types.Course, error)
	UpdateCourse(ctx context.Context, key string, form types.CourseForm) (types.Course, error)
	GetCourse(ctx context.Context, key string) (types.Course, error)
	SearchCourses(ctx context.Context, f types.Filter) ([]types.Course, error)
	DeleteCourse(ctx context.Context, key string) error
	AssignInstructor(ctx context.Context, courseKey, instructorKey string) error
}

type payload struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	InstructorID string `json:"instructor_id"`
}

func (p payload) form() types.CourseForm {
	return types.CourseForm{ID: p.ID, Name: p.Name, InstructorID: p.InstructorID}
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/courses
//
// Request body (JSON), instructor_id optional:
//
//	{ "id": "C1", "name": "Algebra", "instructor_id": "I1" }
//
// 201 with the stored course, 404 when the instructor does not exist, 409
// when the course id is taken.
// ─────────────────────────────────────────────────────────────────────────────
func New(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body payload
		if err := request.DecodeJSON(r, &body); err != nil {
			response.Error(w, err)
			return
		}

		c, err := svc.AddCourse(r.Context(), body.form())
		if err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("add course failed")
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusCreated, c)
	}
}

// Get handles GET /api/courses/{key}
func Get(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := svc.GetCourse(r.Context(), r.PathValue("key"))
		if err != nil {
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, c)
	}
}

// List handles GET /api/courses with optional q, id, name and instructor
// query parameters.
func List(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := types.Filter{
			Query:      q.Get("q"),
			ID:         q.Get("id"),
			Name:       q.Get("name"),
			Instructor: q.Get("instructor"),
		}

		courses, err := svc.SearchCourses(r.Context(), f)
		if err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("list courses failed")
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, courses)
	}
}

// Update handles PUT /api/courses/{key}. Name and instructor are replaced;
// an omitted instructor_id leaves the course unassigned.
func Update(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body payload
		if err := request.DecodeJSON(r, &body); err != nil {
			response.Error(w, err)
			return
		}

		c, err := svc.UpdateCourse(r.Context(), r.PathValue("key"), body.form())
		if err != nil {
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, c)
	}
}

// Delete handles DELETE /api/courses/{key}. Registrations to the course go
// with it.
func Delete(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteCourse(r.Context(), r.PathValue("key")); err != nil {
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// AssignInstructor handles PUT /api/courses/{key}/instructor
//
//	{ "instructor_id": "I1" }    - assign (id or email)
//	{ "instructor_id": "" }      - unassign
//
// ─────────────────────────────────────────────────────────────────────────────
func AssignInstructor(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			InstructorID string `json:"instructor_id"`
		}
		if err := request.DecodeJSON(r, &body); err != nil {
			response.Error(w, err)
			return
		}

		key := r.PathValue("key")
		if err := svc.AssignInstructor(r.Context(), key, body.InstructorID); err != nil {
			response.Error(w, err)
			return
		}

		c, err := svc.GetCourse(r.Context(), key)
		if err != nil {
			response.Error(w, err)
			return
		}
		response.WriteJSON(w, http.StatusOK, c)
	}
}

func Register(mux *http.ServeMux, svc Service) {
	mux.HandleFunc("POST /api/courses", New(svc))
	mux.HandleFunc("GET /api/courses", List(svc))
	mux.HandleFunc("GET /api/courses/{key}", Get(svc))
	mux.HandleFunc("PUT /api/courses/{key}", Update(svc))
	mux.HandleFunc("DELETE /api/courses/{key}", Delete(svc))
	mux.HandleFunc("PUT /api/courses/{key}/instructor", AssignInstructor(svc))
}
