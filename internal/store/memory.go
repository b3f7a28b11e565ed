package store

import (
	"context"
	"sort"
	"sync"

	"github.com/springroll-app/quill/internal/models"
)

// MemoryStore is an in-memory FeedbackStore. It backs tests and ephemeral
// usage; the durable implementation is SQLiteStore.
type MemoryStore struct {
	mu       sync.RWMutex
	records  map[string]models.FeedbackRecord
	profiles map[string]models.StyleProfile
}

var _ FeedbackStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records:  make(map[string]models.FeedbackRecord),
		profiles: make(map[string]models.StyleProfile),
	}
}

// Open is a no-op; the store is always ready.
func (m *MemoryStore) Open(ctx context.Context) error { return nil }

func (m *MemoryStore) Put(ctx context.Context, record models.FeedbackRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.ID] = record
	return nil
}

func (m *MemoryStore) GetAll(ctx context.Context) ([]models.FeedbackRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	records := make([]models.FeedbackRecord, 0, len(m.records))
	for _, r := range m.records {
		records = append(records, r)
	}
	sortNewestFirst(records)
	return records, nil
}

func (m *MemoryStore) GetAllByIndex(ctx context.Context, index Index, value string) ([]models.FeedbackRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var records []models.FeedbackRecord
	for _, r := range m.records {
		var field string
		switch index {
		case IndexTemplateID:
			field = r.TemplateID
		case IndexSectionID:
			field = r.SectionID
		case IndexFeedbackType:
			field = string(r.FeedbackType)
		}
		if field == value {
			records = append(records, r)
		}
	}
	sortNewestFirst(records)
	return records, nil
}

func (m *MemoryStore) Recent(ctx context.Context, templateID, sectionID string, limit int) ([]models.FeedbackRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var records []models.FeedbackRecord
	for _, r := range m.records {
		if r.TemplateID == templateID && r.SectionID == sectionID {
			records = append(records, r)
		}
	}
	sortNewestFirst(records)
	if limit >= 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (m *MemoryStore) PutProfile(ctx context.Context, profile models.StyleProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[profile.UserID] = profile
	return nil
}

func (m *MemoryStore) GetProfile(ctx context.Context, userID string) (*models.StyleProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	profile, ok := m.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &profile, nil
}

func (m *MemoryStore) GetProfiles(ctx context.Context) ([]models.StyleProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	profiles := make([]models.StyleProfile, 0, len(m.profiles))
	for _, p := range m.profiles {
		profiles = append(profiles, p)
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].UserID < profiles[j].UserID })
	return profiles, nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = make(map[string]models.FeedbackRecord)
	m.profiles = make(map[string]models.StyleProfile)
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// sortNewestFirst orders records by timestamp descending, breaking ties by
// ID descending so ordering stays stable for same-timestamp records.
func sortNewestFirst(records []models.FeedbackRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].Timestamp.Equal(records[j].Timestamp) {
			return records[i].Timestamp.After(records[j].Timestamp)
		}
		return records[i].ID > records[j].ID
	})
}
