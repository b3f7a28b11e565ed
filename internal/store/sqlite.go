package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/springroll-app/quill/internal/models"
)

// schemaVersion is stored in PRAGMA user_version. Migrations are additive
// only: re-running them against an existing database must never lose data.
const schemaVersion = 1

const schemaDDL = `
CREATE TABLE IF NOT EXISTS feedback (
	id            TEXT PRIMARY KEY,
	doc_id        TEXT NOT NULL DEFAULT '',
	template_id   TEXT NOT NULL,
	section_id    TEXT NOT NULL,
	feedback_type TEXT NOT NULL,
	original      TEXT NOT NULL,
	edited        TEXT,
	diff          TEXT,
	reason        TEXT NOT NULL DEFAULT '',
	context       TEXT,
	timestamp     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_feedback_template_id ON feedback(template_id);
CREATE INDEX IF NOT EXISTS idx_feedback_section_id ON feedback(section_id);
CREATE INDEX IF NOT EXISTS idx_feedback_type ON feedback(feedback_type);
CREATE INDEX IF NOT EXISTS idx_feedback_timestamp ON feedback(timestamp);

CREATE TABLE IF NOT EXISTS style_profiles (
	user_id     TEXT PRIMARY KEY,
	profile     TEXT NOT NULL,
	imported_at INTEGER NOT NULL
);
`

// SQLiteStore is a FeedbackStore backed by a local SQLite database.
// Open is lazy, idempotent, and race-safe; every operation triggers it.
type SQLiteStore struct {
	path string

	once    sync.Once
	openErr error
	db      *sql.DB

	closeMu sync.Mutex
	closed  bool
}

var _ FeedbackStore = (*SQLiteStore)(nil)

// NewSQLiteStore creates a store handle for the database at path.
// The database file and its parent directory are created on first use.
func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

// Open initializes the database connection and schema. Safe to call
// repeatedly and concurrently; all callers observe the same result.
func (s *SQLiteStore) Open(ctx context.Context) error {
	s.once.Do(func() {
		s.openErr = s.open(ctx)
	})
	if s.openErr != nil {
		return s.openErr
	}
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	if s.closed {
		return ErrNotOpen
	}
	return nil
}

func (s *SQLiteStore) open(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)", s.path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// modernc.org/sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY between concurrent writers in-process.
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	s.db = db
	return nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version > schemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, schemaVersion)
	}

	// DDL is IF NOT EXISTS throughout, so re-running after a partial
	// migration or across restarts is safe.
	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		return err
	}
	if version < schemaVersion {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
			return fmt.Errorf("failed to set schema version: %w", err)
		}
	}
	return nil
}

// Put upserts a feedback record by ID.
func (s *SQLiteStore) Put(ctx context.Context, record models.FeedbackRecord) error {
	if err := s.Open(ctx); err != nil {
		return err
	}

	var diffJSON, contextJSON, edited sql.NullString
	if record.Diff != nil {
		data, err := json.Marshal(record.Diff)
		if err != nil {
			return fmt.Errorf("failed to marshal diff: %w", err)
		}
		diffJSON = sql.NullString{String: string(data), Valid: true}
	}
	if record.Context != nil {
		data, err := json.Marshal(record.Context)
		if err != nil {
			return fmt.Errorf("failed to marshal context: %w", err)
		}
		contextJSON = sql.NullString{String: string(data), Valid: true}
	}
	if record.Edited != "" {
		edited = sql.NullString{String: record.Edited, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feedback (id, doc_id, template_id, section_id, feedback_type, original, edited, diff, reason, context, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			doc_id = excluded.doc_id,
			template_id = excluded.template_id,
			section_id = excluded.section_id,
			feedback_type = excluded.feedback_type,
			original = excluded.original,
			edited = excluded.edited,
			diff = excluded.diff,
			reason = excluded.reason,
			context = excluded.context,
			timestamp = excluded.timestamp`,
		record.ID, record.DocID, record.TemplateID, record.SectionID,
		string(record.FeedbackType), record.Original, edited, diffJSON,
		record.Reason, contextJSON, record.Timestamp.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to put feedback record: %w", err)
	}
	return nil
}

const selectRecordColumns = `id, doc_id, template_id, section_id, feedback_type, original, edited, diff, reason, context, timestamp`

// GetAll returns every feedback record, newest first.
func (s *SQLiteStore) GetAll(ctx context.Context) ([]models.FeedbackRecord, error) {
	if err := s.Open(ctx); err != nil {
		return nil, err
	}
	return s.queryRecords(ctx, `SELECT `+selectRecordColumns+` FROM feedback ORDER BY timestamp DESC, id DESC`)
}

// GetAllByIndex returns records matching value on the given secondary index,
// newest first.
func (s *SQLiteStore) GetAllByIndex(ctx context.Context, index Index, value string) ([]models.FeedbackRecord, error) {
	if err := s.Open(ctx); err != nil {
		return nil, err
	}
	switch index {
	case IndexTemplateID, IndexSectionID, IndexFeedbackType:
	default:
		return nil, fmt.Errorf("unknown index %q", index)
	}
	query := fmt.Sprintf(`SELECT %s FROM feedback WHERE %s = ? ORDER BY timestamp DESC, id DESC`, selectRecordColumns, index)
	return s.queryRecords(ctx, query, value)
}

// Recent returns up to limit records for a template/section pair, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, templateID, sectionID string, limit int) ([]models.FeedbackRecord, error) {
	if err := s.Open(ctx); err != nil {
		return nil, err
	}
	return s.queryRecords(ctx, `
		SELECT `+selectRecordColumns+` FROM feedback
		WHERE template_id = ? AND section_id = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`,
		templateID, sectionID, limit,
	)
}

func (s *SQLiteStore) queryRecords(ctx context.Context, query string, args ...interface{}) ([]models.FeedbackRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback records: %w", err)
	}
	defer rows.Close()

	var records []models.FeedbackRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feedback records: %w", err)
	}
	return records, nil
}

func scanRecord(rows *sql.Rows) (models.FeedbackRecord, error) {
	var (
		record                    models.FeedbackRecord
		feedbackType              string
		edited, diffJSON, ctxJSON sql.NullString
		timestampMillis           int64
	)
	err := rows.Scan(
		&record.ID, &record.DocID, &record.TemplateID, &record.SectionID,
		&feedbackType, &record.Original, &edited, &diffJSON,
		&record.Reason, &ctxJSON, &timestampMillis,
	)
	if err != nil {
		return models.FeedbackRecord{}, fmt.Errorf("failed to scan feedback record: %w", err)
	}

	record.FeedbackType = models.FeedbackType(feedbackType)
	record.Edited = edited.String
	record.Timestamp = time.UnixMilli(timestampMillis)

	if diffJSON.Valid {
		var diff models.Diff
		if err := json.Unmarshal([]byte(diffJSON.String), &diff); err != nil {
			return models.FeedbackRecord{}, fmt.Errorf("failed to unmarshal diff for record %s: %w", record.ID, err)
		}
		record.Diff = &diff
	}
	if ctxJSON.Valid {
		if err := json.Unmarshal([]byte(ctxJSON.String), &record.Context); err != nil {
			return models.FeedbackRecord{}, fmt.Errorf("failed to unmarshal context for record %s: %w", record.ID, err)
		}
	}
	return record, nil
}

// PutProfile upserts a style profile keyed by user ID. Last write wins.
func (s *SQLiteStore) PutProfile(ctx context.Context, profile models.StyleProfile) error {
	if err := s.Open(ctx); err != nil {
		return err
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal style profile: %w", err)
	}
	var importedAt int64
	if profile.ImportedAt != nil {
		importedAt = profile.ImportedAt.UnixMilli()
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO style_profiles (user_id, profile, imported_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			profile = excluded.profile,
			imported_at = excluded.imported_at`,
		profile.UserID, string(data), importedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to put style profile: %w", err)
	}
	return nil
}

// GetProfile returns the stored profile for userID, or nil if none exists.
func (s *SQLiteStore) GetProfile(ctx context.Context, userID string) (*models.StyleProfile, error) {
	if err := s.Open(ctx); err != nil {
		return nil, err
	}
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT profile FROM style_profiles WHERE user_id = ?`, userID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get style profile: %w", err)
	}
	var profile models.StyleProfile
	if err := json.Unmarshal([]byte(data), &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal style profile for %s: %w", userID, err)
	}
	return &profile, nil
}

// GetProfiles returns all stored style profiles ordered by user ID.
func (s *SQLiteStore) GetProfiles(ctx context.Context) ([]models.StyleProfile, error) {
	if err := s.Open(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT profile FROM style_profiles ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query style profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.StyleProfile
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan style profile: %w", err)
		}
		var profile models.StyleProfile
		if err := json.Unmarshal([]byte(data), &profile); err != nil {
			return nil, fmt.Errorf("failed to unmarshal style profile: %w", err)
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate style profiles: %w", err)
	}
	return profiles, nil
}

// Clear wipes both containers.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if err := s.Open(ctx); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin clear transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM feedback`); err != nil {
		return fmt.Errorf("failed to clear feedback: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM style_profiles`); err != nil {
		return fmt.Errorf("failed to clear style profiles: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit clear: %w", err)
	}
	return nil
}

// Close releases the database handle. Safe to call multiple times.
func (s *SQLiteStore) Close() error {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	if s.closed || s.db == nil {
		s.closed = true
		return nil
	}
	s.closed = true
	return s.db.Close()
}
