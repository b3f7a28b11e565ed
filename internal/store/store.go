// Package store defines the FeedbackStore interface for durable, indexed
// storage of feedback records and style profiles.
package store

import (
	"context"
	"errors"

	"github.com/springroll-app/quill/internal/models"
)

// ErrNotOpen is returned when an operation is attempted after Close.
var ErrNotOpen = errors.New("store is not open")

// Index identifies a secondary index on the feedback container.
type Index string

const (
	IndexTemplateID   Index = "template_id"
	IndexSectionID    Index = "section_id"
	IndexFeedbackType Index = "feedback_type"
)

// FeedbackStore defines the interface for the two storage containers of the
// engine: feedback records (keyed by record ID) and style profiles (keyed by
// user ID). All writes are single-record atomic operations; there is no
// cross-record transaction requirement.
type FeedbackStore interface {
	// Open prepares the store for use. It is lazily invoked by every other
	// operation, idempotent, and safe to call concurrently: all first-time
	// callers observe the same successfully-opened store.
	Open(ctx context.Context) error

	// Put upserts a feedback record by ID.
	Put(ctx context.Context, record models.FeedbackRecord) error

	// GetAll returns every feedback record, newest first.
	GetAll(ctx context.Context) ([]models.FeedbackRecord, error)

	// GetAllByIndex returns records matching value on the given secondary
	// index, newest first.
	GetAllByIndex(ctx context.Context, index Index, value string) ([]models.FeedbackRecord, error)

	// Recent returns up to limit records for a template/section pair,
	// newest first.
	Recent(ctx context.Context, templateID, sectionID string, limit int) ([]models.FeedbackRecord, error)

	// PutProfile upserts a style profile by user ID (last write wins).
	PutProfile(ctx context.Context, profile models.StyleProfile) error

	// GetProfile returns the profile for userID, or nil if none is stored.
	GetProfile(ctx context.Context, userID string) (*models.StyleProfile, error)

	// GetProfiles returns all stored style profiles.
	GetProfiles(ctx context.Context) ([]models.StyleProfile, error)

	// Clear wipes both containers. Irreversible.
	Clear(ctx context.Context) error

	Close() error
}
