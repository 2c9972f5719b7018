package feeds

import (
	"context"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"
	log "github.com/sirupsen/logrus"

	"varsler/models"
)

// MaxTitleLength bounds stored titles, in runes.
const MaxTitleLength = 500

const fetchTimeout = 15 * time.Second

// Reader fetches and normalizes entries from external RSS/Atom sources. A
// single Reader is safe for concurrent use; the scheduled loop and the
// manual fetch trigger share one instance.
type Reader struct {
	client *http.Client
}

func NewReader() *Reader {
	return &Reader{
		client: &http.Client{Timeout: fetchTimeout},
	}
}

// Fetch retrieves and parses one feed. Transient HTTP failures are retried
// with a short exponential backoff; entries the parser could not produce are
// simply absent from the result rather than failing the whole feed.
func (r *Reader) Fetch(ctx context.Context, url string) ([]models.NewsItem, error) {
	var parsed *gofeed.Feed

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := r.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		// gofeed parsers initialize translators lazily during Parse, so a
		// shared instance is not safe under concurrent fetches; each call
		// gets its own.
		feed, err := gofeed.NewParser().Parse(resp.Body)
		if err != nil {
			return backoff.Permanent(err)
		}
		parsed = feed
		return nil
	}

	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = 200 * time.Millisecond
	retry.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(retry, 2), ctx)); err != nil {
		return nil, fmt.Errorf("fetching feed %s: %w", url, err)
	}

	items := make([]models.NewsItem, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		items = append(items, normalizeEntry(parsed, entry))
	}

	return items, nil
}

// FetchAll reads every source in turn. A failing source is logged and
// contributes zero items; it never aborts the remaining sources.
func (r *Reader) FetchAll(ctx context.Context, urls []string) []models.NewsItem {
	all := []models.NewsItem{}
	for _, url := range urls {
		items, err := r.Fetch(ctx, url)
		if err != nil {
			log.WithFields(log.Fields{
				"url":   url,
				"error": err,
			}).Warn("Skipping unavailable feed source")
			continue
		}
		all = append(all, items...)
	}
	return all
}

// normalizeEntry maps a raw feed entry onto the canonical item shape. The
// id is derived from the entry's own identifier (gofeed exposes both RSS
// guid and Atom id as GUID), falling back to the link, falling back to a
// generated token so even malformed feeds yield a non-empty id.
func normalizeEntry(feed *gofeed.Feed, entry *gofeed.Item) models.NewsItem {
	id := entry.GUID
	if id == "" {
		id = entry.Link
	}
	if id == "" {
		id = uuid.NewString()
	}

	category := models.CategoryUncategorized
	if len(entry.Categories) > 0 && entry.Categories[0] != "" {
		category = entry.Categories[0]
	}

	return models.NewsItem{
		Id:        id,
		Title:     truncate(entry.Title, MaxTitleLength),
		Link:      entry.Link,
		Summary:   entry.Description,
		Published: entry.PublishedParsed,
		Source:    feed.Title,
		Category:  category,
	}
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
