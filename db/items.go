package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
	log "github.com/sirupsen/logrus"

	"varsler/models"
	"varsler/store"
)

// Items is the durable ItemStore backed by SQLite.
type Items struct {
	db *sql.DB
}

func NewItems(database string) (*Items, error) {
	db, err := connection(database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return &Items{db: db}, nil
}

var _ store.ItemStore = (*Items)(nil)

func (items *Items) Close() error {
	return items.db.Close()
}

func (items *Items) Exists(ctx context.Context, id string) (bool, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("1").From("news")
	sb.Where(sb.Equal("id", id))

	query, args := sb.BuildWithFlavor(sqlbuilder.SQLite)

	var one int
	err := items.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query error: %w", err)
	}
	return true, nil
}

func (items *Items) Get(ctx context.Context, id string) (models.NewsItem, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("id", "title", "link", "summary", "published", "source", "category").From("news")
	sb.Where(sb.Equal("id", id))

	query, args := sb.BuildWithFlavor(sqlbuilder.SQLite)

	item, err := scanItem(items.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return models.NewsItem{}, store.ErrNotFound
	}
	if err != nil {
		return models.NewsItem{}, fmt.Errorf("query error: %w", err)
	}
	return item, nil
}

// PutIfAbsent inserts the item unless its id is already present. The
// INSERT OR IGNORE statement makes the check-and-insert atomic, so two
// concurrent pipeline runs can never both win for the same id.
func (items *Items) PutIfAbsent(ctx context.Context, item models.NewsItem) (bool, error) {
	ib := sqlbuilder.SQLite.NewInsertBuilder()
	ib.InsertIgnoreInto("news")
	ib.Cols("id", "title", "link", "summary", "published", "source", "category", "created_at")
	ib.Values(
		item.Id,
		item.Title,
		item.Link,
		item.Summary,
		publishedValue(item.Published),
		item.Source,
		item.Category,
		time.Now().Unix(),
	)

	query, args := ib.BuildWithFlavor(sqlbuilder.SQLite)

	result, err := items.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert error: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert error: %w", err)
	}

	return affected > 0, nil
}

func (items *Items) List(ctx context.Context, limit int, offset int) ([]models.NewsItem, error) {
	limit = store.ClampLimit(limit)
	offset = store.ClampOffset(offset)

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("id", "title", "link", "summary", "published", "source", "category").From("news")
	// Newest first; NULL published sorts last under DESC in SQLite. The seq
	// column breaks ties by insertion order.
	sb.OrderBy("published DESC", "seq ASC")
	sb.Limit(limit).Offset(offset)

	query, args := sb.BuildWithFlavor(sqlbuilder.SQLite)

	log.WithFields(log.Fields{
		"limit":  limit,
		"offset": offset,
	}).Debug("Listing news items")

	rows, err := items.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	listed := []models.NewsItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		listed = append(listed, item)
	}

	return listed, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanItem(row scannable) (models.NewsItem, error) {
	var item models.NewsItem
	var published sql.NullInt64
	if err := row.Scan(&item.Id, &item.Title, &item.Link, &item.Summary, &published, &item.Source, &item.Category); err != nil {
		return models.NewsItem{}, err
	}
	if published.Valid {
		ts := time.Unix(published.Int64, 0).UTC()
		item.Published = &ts
	}
	return item, nil
}

func publishedValue(published *time.Time) any {
	if published == nil {
		return nil
	}
	return published.Unix()
}
