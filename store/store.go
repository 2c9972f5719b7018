package store

import (
	"context"
	"errors"

	"varsler/models"
)

// ErrNotFound is returned by lookups for an id that is not in the store.
var ErrNotFound = errors.New("not found")

const (
	// DefaultLimit is the page size used when the caller does not specify one.
	DefaultLimit = 50
	// MaxLimit is the server-side cap on page size.
	MaxLimit = 200
)

// ItemStore owns the canonical copy of each NewsItem. PutIfAbsent is the
// dedup primitive and must be atomic under concurrent pipeline runs: for any
// id at most one insert wins and stored fields are never overwritten.
type ItemStore interface {
	Exists(ctx context.Context, id string) (bool, error)
	Get(ctx context.Context, id string) (models.NewsItem, error)
	PutIfAbsent(ctx context.Context, item models.NewsItem) (bool, error)
	// List returns items ordered by published timestamp descending, ties
	// broken by insertion order.
	List(ctx context.Context, limit int, offset int) ([]models.NewsItem, error)
}

// AlertStore owns the alert history. Records are immutable once appended.
type AlertStore interface {
	Append(ctx context.Context, record models.AlertRecord) error
	// List returns records in reverse-chronological order.
	List(ctx context.Context, limit int, offset int) ([]models.AlertRecord, error)
}

// ClampLimit normalizes a requested page size to the allowed range.
func ClampLimit(limit int) int {
	if limit < 1 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// ClampOffset normalizes a requested offset.
func ClampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
