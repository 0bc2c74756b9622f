// Package imagecheck audits the public gallery for photo files that the
// database references but the media directory no longer holds.
package imagecheck

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mgoto/recipelog/internal/adapter/sqlite/dish"
)

type photoSource interface {
	PublicPhotoRefs(ctx context.Context) ([]dish.PhotoRef, error)
}

// Missing is one broken photo reference.
type Missing struct {
	ID   int64  `json:"id"`
	Path string `json:"path"`
}

// Auditor walks public entries and stats their photo paths.
type Auditor struct {
	dishes photoSource
	log    *slog.Logger
}

func New(dishes photoSource, logger *slog.Logger) *Auditor {
	return &Auditor{dishes: dishes, log: logger}
}

// Run returns every public entry whose referenced photo file does not exist
// on disk. Entries without a photo are skipped. The underlying query is
// unbounded, so the audit covers the whole gallery however large it grows.
func (a *Auditor) Run(ctx context.Context) ([]Missing, error) {
	refs, err := a.dishes.PublicPhotoRefs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list public photo refs: %w", err)
	}

	var missing []Missing
	for _, ref := range refs {
		if ref.PhotoPath == nil || *ref.PhotoPath == "" {
			continue
		}
		if _, err := os.Stat(*ref.PhotoPath); err != nil {
			a.log.WarnContext(ctx, "photo file missing",
				slog.Int64("dish_id", ref.ID),
				slog.String("path", *ref.PhotoPath))
			missing = append(missing, Missing{ID: ref.ID, Path: *ref.PhotoPath})
		}
	}
	return missing, nil
}

// WriteReport writes the audit result as JSON. An empty result writes an
// empty array, not null, so downstream consumers always get a list.
func WriteReport(path string, missing []Missing) error {
	if missing == nil {
		missing = []Missing{}
	}
	data, err := json.MarshalIndent(missing, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// ReadReport loads a report produced by WriteReport.
func ReadReport(path string) ([]Missing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var missing []Missing
	if err := json.Unmarshal(data, &missing); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	return missing, nil
}
