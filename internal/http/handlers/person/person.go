// Package person contains the HTTP handlers for students and instructors.
//
// Both resources have the same fields and the same operations, so every
// factory takes the PersonKind it serves and is registered twice:
//
//	router.HandleFunc("POST /api/students",    person.New(svc, types.KindStudent))
//	router.HandleFunc("POST /api/instructors", person.New(svc, types.KindInstructor))
//
// HANDLER PATTERN (CLOSURE / FACTORY):
// ────────────────────────────────────
// New(svc, kind) is called ONCE at startup. It returns a handler func
// which is called on EVERY incoming request and "closes over" svc and kind.
//
// {key} in the routes is the business id (S1, I7) or the email address.
package person

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aanand-mishra/school-records/internal/types"
	"github.com/aanand-mishra/school-records/internal/utils/request"
	"github.com/aanand-mishra/school-records/internal/utils/response"
)

// Service is the part of service.Service these handlers use.
type Service interface {
	AddPerson(ctx context.Context, kind types.PersonKind, form types.PersonForm) (types.Person, error)
	UpdatePerson(ctx context.Context, kind types.PersonKind, key string, form types.PersonForm) (types.Person, error)
	GetPerson(ctx context.Context, kind types.PersonKind, key string) (types.Person, error)
	SearchPeople(ctx context.Context, kind types.PersonKind, f types.Filter) ([]types.Person, error)
	DeletePerson(ctx context.Context, kind types.PersonKind, key string) error
}

// payload is the request body of POST and PUT. Age is taken as raw text so
// "20" and 20 are both accepted and "abc" gets the form's own message.
type payload struct {
	ID    string            `json:"id"`
	Name  string            `json:"name"`
	Age   request.FormValue `json:"age"`
	Email string            `json:"email"`
}

func (p payload) form() types.PersonForm {
	return types.PersonForm{ID: p.ID, Name: p.Name, Age: string(p.Age), Email: p.Email}
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/students and POST /api/instructors.
//
// Request body (JSON):
//
//	{ "id": "S1", "name": "Ann", "age": 20, "email": "ann@x.com" }
//
// Success response (201 Created): the stored person.
//
// Error responses:
//
//	400 Bad Request  - empty body, malformed JSON, or failed validation
//	409 Conflict     - id or email already used by another person
//	500 Internal     - database error
//
// ─────────────────────────────────────────────────────────────────────────────
func New(svc Service, kind types.PersonKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := zerolog.Ctx(r.Context())

		var body payload
		if err := request.DecodeJSON(r, &body); err != nil {
			response.Error(w, err)
			return
		}

		p, err := svc.AddPerson(r.Context(), kind, body.form())
		if err != nil {
			log.Warn().Err(err).Str("kind", string(kind)).Msg("add person failed")
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusCreated, p)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Get handles GET /api/{students|instructors}/{key}
// ─────────────────────────────────────────────────────────────────────────────
func Get(svc Service, kind types.PersonKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetPerson(r.Context(), kind, r.PathValue("key"))
		if err != nil {
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, p)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// List handles GET /api/{students|instructors}
//
// Optional query parameters narrow the list (case-insensitive substring):
//
//	q     - matches the id or the name
//	id    - matches the id
//	name  - matches the name
//	age   - exact age, 400 when not a non-negative integer
//
// Returns an empty array [] (not null) when nothing matches.
// ─────────────────────────────────────────────────────────────────────────────
func List(svc Service, kind types.PersonKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := types.Filter{Query: q.Get("q"), ID: q.Get("id"), Name: q.Get("name"), Age: q.Get("age")}

		people, err := svc.SearchPeople(r.Context(), kind, f)
		if err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("list people failed")
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, people)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/{students|instructors}/{key}
// Replaces name, age and email. The id in the body, if any, is ignored:
// ids never change.
// ─────────────────────────────────────────────────────────────────────────────
func Update(svc Service, kind types.PersonKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body payload
		if err := request.DecodeJSON(r, &body); err != nil {
			response.Error(w, err)
			return
		}

		updated, err := svc.UpdatePerson(r.Context(), kind, r.PathValue("key"), body.form())
		if err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Str("key", r.PathValue("key")).Msg("update person failed")
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/{students|instructors}/{key}
//
// Success response (200 OK):
//
//	{ "status": "deleted" }
//
// 404 when no person has that id or email.
// ─────────────────────────────────────────────────────────────────────────────
func Delete(svc Service, kind types.PersonKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeletePerson(r.Context(), kind, r.PathValue("key")); err != nil {
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// Register adds all five person routes for kind under prefix, e.g.
// "/api/students".
func Register(mux *http.ServeMux, prefix string, svc Service, kind types.PersonKind) {
	mux.HandleFunc("POST "+prefix, New(svc, kind))
	mux.HandleFunc("GET "+prefix, List(svc, kind))
	mux.HandleFunc("GET "+prefix+"/{key}", Get(svc, kind))
	mux.HandleFunc("PUT "+prefix+"/{key}", Update(svc, kind))
	mux.HandleFunc("DELETE "+prefix+"/{key}", Delete(svc, kind))
}
