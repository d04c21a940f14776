// Package router assembles every HTTP route and middleware into one handler.
package router

import (
	"net/http"

	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/aanand-mishra/school-records/internal/http/handlers/admin"
	"github.com/aanand-mishra/school-records/internal/http/handlers/course"
	"github.com/aanand-mishra/school-records/internal/http/handlers/person"
	"github.com/aanand-mishra/school-records/internal/http/handlers/registration"
	"github.com/aanand-mishra/school-records/internal/http/middleware"
	"github.com/aanand-mishra/school-records/internal/types"
)

// Service is everything the handlers need, satisfied by *service.Service.
type Service interface {
	person.Service
	course.Service
	registration.Service
	admin.Service
}

// New returns the root handler.
//
// Route table:
//
//	GET|POST          /api/students                       list / search, create
//	GET|PUT|DELETE    /api/students/{key}                 by id or email
//	GET|POST          /api/instructors                    same as students
//	GET|PUT|DELETE    /api/instructors/{key}
//	GET|POST          /api/courses                        list / search, create
//	GET|PUT|DELETE    /api/courses/{key}
//	PUT               /api/courses/{key}/instructor       assign / unassign
//	GET|POST          /api/registrations                  list, register
//	DELETE            /api/registrations/{student}/{course}
//	GET               /api/options                        dropdown data, ETag
//	GET               /api/records                        view all
//	GET               /api/export                         CSV download
//	POST              /api/backup                         {"path": ...}
//	DELETE            /api/database?confirm=true          clear everything
//	GET               /healthz
//
// Middleware order (outermost first): request ID, request log, CORS.
func New(svc Service, allowedOrigins []string, log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	person.Register(mux, "/api/students", svc, types.KindStudent)
	person.Register(mux, "/api/instructors", svc, types.KindInstructor)
	course.Register(mux, svc)
	registration.Register(mux, svc)
	admin.Register(mux, svc)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "If-None-Match", middleware.RequestIDHeader},
		ExposedHeaders: []string{"ETag", "Content-Disposition", middleware.RequestIDHeader},
	})

	return middleware.Chain(c.Handler(mux), middleware.RequestID(log), middleware.Logger)
}
