// Package registration contains the HTTP handlers that enrol students in
// courses.
package registration

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aanand-mishra/school-records/internal/types"
	"github.com/aanand-mishra/school-records/internal/utils/request"
	"github.com/aanand-mishra/school-records/internal/utils/response"
)

type Service interface {
	Register(ctx context.Context, studentKey, courseKey string) error
	ListRegistrations(ctx context.Context, f types.Filter) ([]types.Registration, error)
	Unregister(ctx context.Context, studentKey, courseKey string) error
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/registrations
//
// Request body (JSON). student_id may also be the student's email:
//
//	{ "student_id": "S1", "course_id": "C1" }
//
// Error responses:
//
//	400 Bad Request  - a key is missing
//	404 Not Found    - unknown student or course
//	409 Conflict     - the student is already registered to the course
//
// ─────────────────────────────────────────────────────────────────────────────
func New(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			StudentID string `json:"student_id"`
			CourseID  string `json:"course_id"`
		}
		if err := request.DecodeJSON(r, &body); err != nil {
			response.Error(w, err)
			return
		}

		if err := svc.Register(r.Context(), body.StudentID, body.CourseID); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).
				Str("student", body.StudentID).
				Str("course", body.CourseID).
				Msg("registration failed")
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusCreated, map[string]string{"status": "registered"})
	}
}

// List handles GET /api/registrations. q matches student or course name
// or id.
func List(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := types.Filter{Query: q.Get("q"), ID: q.Get("id"), Name: q.Get("name")}

		regs, err := svc.ListRegistrations(r.Context(), f)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, regs)
	}
}

// Delete handles DELETE /api/registrations/{student}/{course}
func Delete(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Unregister(r.Context(), r.PathValue("student"), r.PathValue("course")); err != nil {
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func Register(mux *http.ServeMux, svc Service) {
	mux.HandleFunc("POST /api/registrations", New(svc))
	mux.HandleFunc("GET /api/registrations", List(svc))
	mux.HandleFunc("DELETE /api/registrations/{student}/{course}", Delete(svc))
}
