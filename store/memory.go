package store

import (
	"context"
	"sort"
	"sync"

	"varsler/models"
)

// MemoryItems is an ephemeral ItemStore backed by process memory. It
// satisfies the same dedup and ordering contract as the SQLite store and is
// selected with the "memory" database driver.
type MemoryItems struct {
	mu    sync.RWMutex
	byId  map[string]int
	items []models.NewsItem
}

func NewMemoryItems() *MemoryItems {
	return &MemoryItems{
		byId: make(map[string]int),
	}
}

var _ ItemStore = (*MemoryItems)(nil)

func (m *MemoryItems) Exists(ctx context.Context, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.byId[id]
	return ok, nil
}

func (m *MemoryItems) Get(ctx context.Context, id string) (models.NewsItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx, ok := m.byId[id]
	if !ok {
		return models.NewsItem{}, ErrNotFound
	}
	return copyItem(m.items[idx]), nil
}

func (m *MemoryItems) PutIfAbsent(ctx context.Context, item models.NewsItem) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byId[item.Id]; ok {
		return false, nil
	}
	m.byId[item.Id] = len(m.items)
	m.items = append(m.items, item)
	return true, nil
}

func (m *MemoryItems) List(ctx context.Context, limit int, offset int) ([]models.NewsItem, error) {
	limit = ClampLimit(limit)
	offset = ClampOffset(offset)

	m.mu.RLock()
	ordered := make([]models.NewsItem, len(m.items))
	for i, item := range m.items {
		ordered[i] = copyItem(item)
	}
	m.mu.RUnlock()

	// Newest first; items without a published timestamp sort last. The
	// stable sort preserves insertion order between equal timestamps.
	sort.SliceStable(ordered, func(i, j int) bool {
		return publishedUnix(ordered[i]) > publishedUnix(ordered[j])
	})

	return page(ordered, limit, offset), nil
}

// MemoryAlerts is an ephemeral AlertStore counterpart to MemoryItems.
type MemoryAlerts struct {
	mu     sync.RWMutex
	alerts []models.AlertRecord
}

func NewMemoryAlerts() *MemoryAlerts {
	return &MemoryAlerts{}
}

var _ AlertStore = (*MemoryAlerts)(nil)

func (m *MemoryAlerts) Append(ctx context.Context, record models.AlertRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = append(m.alerts, record)
	return nil
}

func (m *MemoryAlerts) List(ctx context.Context, limit int, offset int) ([]models.AlertRecord, error) {
	limit = ClampLimit(limit)
	offset = ClampOffset(offset)

	// Copy in reverse so the stable sort leaves the latest append first
	// among records with the same timestamp.
	m.mu.RLock()
	ordered := make([]models.AlertRecord, len(m.alerts))
	for i, record := range m.alerts {
		ordered[len(m.alerts)-1-i] = record
	}
	m.mu.RUnlock()

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SentAt.After(ordered[j].SentAt)
	})

	return page(ordered, limit, offset), nil
}

// copyItem detaches the returned value from the stored one so a caller
// writing through the Published pointer cannot mutate the canonical copy.
func copyItem(item models.NewsItem) models.NewsItem {
	if item.Published != nil {
		published := *item.Published
		item.Published = &published
	}
	return item
}

func publishedUnix(item models.NewsItem) int64 {
	if item.Published == nil {
		return 0
	}
	return item.Published.Unix()
}

func page[T any](items []T, limit int, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
