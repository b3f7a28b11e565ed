// Package backup exports and restores the full engine state (feedback
// records + style profiles) as a versioned JSON file. Backups stay on the
// local device; they exist for migration between machines, not sync.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/springroll-app/quill/internal/models"
	"github.com/springroll-app/quill/internal/store"
)

// FormatVersion is the current backup file format version.
const FormatVersion = 1

// Format is the on-disk backup shape.
type Format struct {
	Version   int                     `json:"version"`
	CreatedAt time.Time               `json:"created_at"`
	Records   []models.FeedbackRecord `json:"records"`
	Profiles  []models.StyleProfile   `json:"profiles"`
}

// RestoreMode selects how a restore treats existing data.
type RestoreMode string

const (
	// RestoreMerge skips records whose IDs already exist.
	RestoreMerge RestoreMode = "merge"

	// RestoreReplace clears the store before restoring.
	RestoreReplace RestoreMode = "replace"
)

// Result summarizes a backup or restore run.
type Result struct {
	Records  int `json:"records"`
	Skipped  int `json:"skipped,omitempty"`
	Profiles int `json:"profiles"`
}

// DefaultBackupPath returns a timestamped backup path inside dir.
func DefaultBackupPath(dir string) string {
	return filepath.Join(dir, fmt.Sprintf("quill-backup-%s.json", time.Now().Format("20060102-150405")))
}

// Backup writes the full store contents to path.
func Backup(ctx context.Context, s store.FeedbackStore, path string) (*Result, error) {
	records, err := s.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	profiles, err := s.GetProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles: %w", err)
	}

	bf := &Format{
		Version:   FormatVersion,
		CreatedAt: time.Now(),
		Records:   records,
		Profiles:  profiles,
	}

	data, err := json.MarshalIndent(bf, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal backup: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return nil, fmt.Errorf("failed to write backup: %w", err)
	}

	return &Result{Records: len(records), Profiles: len(profiles)}, nil
}

// Read loads and validates a backup file.
func Read(path string) (*Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup file: %w", err)
	}
	var bf Format
	if err := json.Unmarshal(data, &bf); err != nil {
		return nil, fmt.Errorf("failed to parse backup file: %w", err)
	}
	if bf.Version > FormatVersion {
		return nil, fmt.Errorf("backup format version %d is newer than supported version %d", bf.Version, FormatVersion)
	}
	return &bf, nil
}

// Restore loads a backup file into the store. Merge mode skips records whose
// IDs already exist; replace mode clears both containers first.
func Restore(ctx context.Context, s store.FeedbackStore, path string, mode RestoreMode) (*Result, error) {
	bf, err := Read(path)
	if err != nil {
		return nil, err
	}

	switch mode {
	case RestoreMerge, RestoreReplace:
	default:
		return nil, fmt.Errorf("unknown restore mode %q", mode)
	}

	existing := make(map[string]struct{})
	if mode == RestoreReplace {
		if err := s.Clear(ctx); err != nil {
			return nil, fmt.Errorf("failed to clear store: %w", err)
		}
	} else {
		records, err := s.GetAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read existing records: %w", err)
		}
		for _, r := range records {
			existing[r.ID] = struct{}{}
		}
	}

	result := &Result{}
	for _, r := range bf.Records {
		if _, dup := existing[r.ID]; dup {
			result.Skipped++
			continue
		}
		if err := s.Put(ctx, r); err != nil {
			return nil, fmt.Errorf("failed to restore record %s: %w", r.ID, err)
		}
		result.Records++
	}
	for _, p := range bf.Profiles {
		if err := s.PutProfile(ctx, p); err != nil {
			return nil, fmt.Errorf("failed to restore profile %s: %w", p.UserID, err)
		}
		result.Profiles++
	}
	return result, nil
}
