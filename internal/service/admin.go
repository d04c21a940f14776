package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aanand-mishra/school-records/internal/types"
)

// ExportHeader is the fixed first line of every export.
var ExportHeader = []string{"Type", "ID", "Name", "Age", "Email"}

// ListRecords is the combined "view all" listing.
func (s *Service) ListRecords(ctx context.Context) ([]types.Record, error) {
	return s.store.ListRecords(ctx)
}

// Export writes every student, instructor and course to w as CSV. Course
// rows have empty Age and Email.
func (s *Service) Export(ctx context.Context, w io.Writer) error {
	records, err := s.store.ListRecords(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("Export: write header: %w", err)
	}
	for _, r := range records {
		age := ""
		if r.Age != nil {
			age = strconv.Itoa(*r.Age)
		}
		if err := cw.Write([]string{r.Type, r.ID, r.Name, age, r.Email}); err != nil {
			return fmt.Errorf("Export: write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("Export: flush: %w", err)
	}

	s.log.Info().Int("rows", len(records)).Msg("records exported")
	return nil
}

// ExportFile exports to a file, adding a .csv extension when path has
// none. It returns the path written.
func (s *Service) ExportFile(ctx context.Context, path string) (string, error) {
	path, err := destination("path", path, ".csv")
	if err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("ExportFile: create: %w", err)
	}

	if err := s.Export(ctx, f); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("ExportFile: close: %w", err)
	}
	return path, nil
}

// Backup copies the live database to dest (".db" is appended when dest
// has no extension) and returns the path written.
func (s *Service) Backup(ctx context.Context, dest string) (string, error) {
	dest, err := destination("path", dest, ".db")
	if err != nil {
		return "", err
	}

	if err := s.store.Backup(ctx, dest); err != nil {
		return "", err
	}

	s.log.Info().Str("path", dest).Msg("database backed up")
	return dest, nil
}

// Clear irreversibly drops every record. confirmed must be true; the
// front-end is responsible for asking.
func (s *Service) Clear(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return types.ValidationErrors{{Field: "confirm", Message: "clearing the database must be confirmed"}}
	}

	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.bump()

	s.log.Warn().Msg("database cleared")
	return nil
}

func destination(field, path, defaultExt string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", types.ValidationErrors{{Field: field, Message: field + " is required"}}
	}
	if filepath.Ext(path) == "" {
		path += defaultExt
	}
	return path, nil
}
