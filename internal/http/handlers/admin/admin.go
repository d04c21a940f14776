// Package admin contains the whole-database HTTP handlers: dropdown
// options, the combined listing, CSV export, backup and clear.
package admin

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/aanand-mishra/school-records/internal/types"
	"github.com/aanand-mishra/school-records/internal/utils/request"
	"github.com/aanand-mishra/school-records/internal/utils/response"
)

type Service interface {
	Revision() uint64
	Options(ctx context.Context) (types.Options, error)
	ListRecords(ctx context.Context) ([]types.Record, error)
	Export(ctx context.Context, w io.Writer) error
	Backup(ctx context.Context, dest string) (string, error)
	Clear(ctx context.Context, confirmed bool) error
}

func etag(rev uint64) string {
	return `"` + strconv.FormatUint(rev, 10) + `"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Options handles GET /api/options
//
// Returns every dropdown list plus a revision. The revision is also sent
// as the ETag, so a UI polling with If-None-Match gets 304 Not Modified
// until a student, instructor or course is added, changed or removed.
// ─────────────────────────────────────────────────────────────────────────────
func Options(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tag := etag(svc.Revision())
		if r.Header.Get("If-None-Match") == tag {
			w.Header().Set("ETag", tag)
			w.WriteHeader(http.StatusNotModified)
			return
		}

		opts, err := svc.Options(r.Context())
		if err != nil {
			response.Error(w, err)
			return
		}

		w.Header().Set("ETag", etag(opts.Revision))
		w.Header().Set("Cache-Control", "no-cache")
		response.WriteJSON(w, http.StatusOK, opts)
	}
}

// Records handles GET /api/records, the "view all" listing.
func Records(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := svc.ListRecords(r.Context())
		if err != nil {
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, records)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Export handles GET /api/export and answers with a CSV download.
//
// The CSV is built in memory first so a storage failure can still be
// reported as a JSON error instead of a truncated file.
// ─────────────────────────────────────────────────────────────────────────────
func Export(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := svc.Export(r.Context(), &buf); err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("export failed")
			response.Error(w, err)
			return
		}

		name := "school-records-" + time.Now().Format("20060102-150405") + ".csv"
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
		w.WriteHeader(http.StatusOK)
		buf.WriteTo(w)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Backup handles POST /api/backup
//
// Request body (JSON), a path on the server's filesystem:
//
//	{ "path": "backups/monday" }
//
// Success response (200 OK), with ".db" added when the path had no
// extension:
//
//	{ "status": "ok", "path": "backups/monday.db" }
//
// ─────────────────────────────────────────────────────────────────────────────
func Backup(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Path string `json:"path"`
		}
		if err := request.DecodeJSON(r, &body); err != nil {
			response.Error(w, err)
			return
		}

		path, err := svc.Backup(r.Context(), body.Path)
		if err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Str("path", body.Path).Msg("backup failed")
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, map[string]string{"status": response.StatusOK, "path": path})
	}
}

// Clear handles DELETE /api/database?confirm=true. Without confirm=true
// nothing is touched and the answer is 400.
func Clear(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))

		if err := svc.Clear(r.Context(), confirmed); err != nil {
			response.Error(w, err)
			return
		}

		zerolog.Ctx(r.Context()).Warn().Msg("database cleared over HTTP")
		response.WriteJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
	}
}

func Register(mux *http.ServeMux, svc Service) {
	mux.HandleFunc("GET /api/options", Options(svc))
	mux.HandleFunc("GET /api/records", Records(svc))
	mux.HandleFunc("GET /api/export", Export(svc))
	mux.HandleFunc("POST /api/backup", Backup(svc))
	mux.HandleFunc("DELETE /api/database", Clear(svc))
}
