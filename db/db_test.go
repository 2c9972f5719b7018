package db_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"varsler/db"
	"varsler/models"
	"varsler/store"
)

func openTestStores(t *testing.T) (*db.Items, *db.Alerts) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "varsler_test.db")
	require.NoError(t, db.Migrate(path))

	items, err := db.NewItems(path)
	require.NoError(t, err)
	t.Cleanup(func() { items.Close() })

	alerts, err := db.NewAlerts(path)
	require.NoError(t, err)
	t.Cleanup(func() { alerts.Close() })

	return items, alerts
}

func TestItemsPutIfAbsentFirstWriteWins(t *testing.T) {
	ctx := context.Background()
	items, _ := openTestStores(t)

	published := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	item := models.NewsItem{
		Id:        "https://example.com/articles/1",
		Title:     "AI breakthrough",
		Link:      "https://example.com/articles/1",
		Summary:   "A summary",
		Published: &published,
		Source:    "Example News",
		Category:  "tech",
	}

	inserted, err := items.PutIfAbsent(ctx, item)
	require.NoError(t, err)
	assert.True(t, inserted)

	reclassified := item
	reclassified.Category = "business"
	reclassified.Title = "Different title"
	inserted, err = items.PutIfAbsent(ctx, reclassified)
	require.NoError(t, err)
	assert.False(t, inserted)

	stored, err := items.Get(ctx, item.Id)
	require.NoError(t, err)
	assert.Equal(t, "tech", stored.Category)
	assert.Equal(t, "AI breakthrough", stored.Title)
	require.NotNil(t, stored.Published)
	assert.Equal(t, published.Unix(), stored.Published.Unix())
}

func TestItemsGetNotFound(t *testing.T) {
	ctx := context.Background()
	items, _ := openTestStores(t)

	_, err := items.Get(ctx, "missing-123")
	assert.ErrorIs(t, err, store.ErrNotFound)

	exists, err := items.Exists(ctx, "missing-123")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestItemsListPaginationAndOrdering(t *testing.T) {
	ctx := context.Background()
	items, _ := openTestStores(t)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 120; i++ {
		published := base.Add(time.Duration(i) * time.Minute)
		_, err := items.PutIfAbsent(ctx, models.NewsItem{
			Id:        fmt.Sprintf("item-%03d", i),
			Title:     fmt.Sprintf("Title %d", i),
			Category:  models.CategoryUncategorized,
			Published: &published,
		})
		require.NoError(t, err)
	}

	firstPage, err := items.List(ctx, 50, 0)
	require.NoError(t, err)
	require.Len(t, firstPage, 50)
	assert.Equal(t, "item-119", firstPage[0].Id)

	lastPage, err := items.List(ctx, 50, 100)
	require.NoError(t, err)
	assert.Len(t, lastPage, 20)
	assert.Equal(t, "item-000", lastPage[len(lastPage)-1].Id)

	middlePage, err := items.List(ctx, 50, 50)
	require.NoError(t, err)
	seen := map[string]bool{}
	for _, item := range middlePage {
		seen[item.Id] = true
	}
	for _, item := range lastPage {
		assert.False(t, seen[item.Id], "item %s appears on two pages", item.Id)
	}
}

func TestItemsListTiesBrokenByInsertionOrder(t *testing.T) {
	ctx := context.Background()
	items, _ := openTestStores(t)

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for _, id := range []string{"tied-first", "tied-second"} {
		published := ts
		_, err := items.PutIfAbsent(ctx, models.NewsItem{
			Id:        id,
			Title:     id,
			Category:  models.CategoryUncategorized,
			Published: &published,
		})
		require.NoError(t, err)
	}
	// No published timestamp sorts last
	_, err := items.PutIfAbsent(ctx, models.NewsItem{Id: "undated", Title: "undated", Category: models.CategoryUncategorized})
	require.NoError(t, err)

	listed, err := items.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "tied-first", listed[0].Id)
	assert.Equal(t, "tied-second", listed[1].Id)
	assert.Equal(t, "undated", listed[2].Id)
	assert.Nil(t, listed[2].Published)
}

func TestAlertsAppendAndList(t *testing.T) {
	ctx := context.Background()
	items, alerts := openTestStores(t)

	_, err := items.PutIfAbsent(ctx, models.NewsItem{Id: "a", Title: "Title", Category: "tech"})
	require.NoError(t, err)

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	sent := models.AlertRecord{
		Id:        "alert-1",
		NewsId:    "a",
		Recipient: "ops@example.com",
		Subject:   "[News Alert] Title",
		Body:      "Title\n\n\n\nSource: \nCategory: tech",
		Sent:      true,
		SentAt:    base,
	}
	failed := models.AlertRecord{
		Id:        "alert-2",
		NewsId:    "a",
		Recipient: "ops@example.com",
		Subject:   "[News Alert] Title",
		Body:      "Title\n\n\n\nSource: \nCategory: tech",
		Sent:      false,
		Error:     "smtp: connection refused",
		SentAt:    base.Add(time.Hour),
	}

	require.NoError(t, alerts.Append(ctx, sent))
	require.NoError(t, alerts.Append(ctx, failed))

	listed, err := alerts.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	// Reverse chronological
	assert.Equal(t, "alert-2", listed[0].Id)
	assert.False(t, listed[0].Sent)
	assert.Equal(t, "smtp: connection refused", listed[0].Error)
	assert.Equal(t, "alert-1", listed[1].Id)
	assert.True(t, listed[1].Sent)
	assert.Empty(t, listed[1].Error)
}
