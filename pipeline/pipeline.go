package pipeline

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"varsler/classifier"
	"varsler/feeds"
	"varsler/models"
	"varsler/store"
)

// Pipeline runs one ingestion cycle: fetch every configured source, classify
// the fetched items, persist the ones not seen before. Source and
// classification failures are absorbed along the way; only store failures
// make a cycle fail, because without the store no accurate result exists.
type Pipeline struct {
	sources    []string
	reader     *feeds.Reader
	classifier *classifier.Classifier
	items      store.ItemStore
}

func New(sources []string, reader *feeds.Reader, clf *classifier.Classifier, items store.ItemStore) *Pipeline {
	return &Pipeline{
		sources:    sources,
		reader:     reader,
		classifier: clf,
		items:      items,
	}
}

// Run executes one cycle and returns the items that were actually inserted.
// Items whose id is already stored are skipped, and their stored category is
// left untouched: first write wins.
func (p *Pipeline) Run(ctx context.Context) ([]models.NewsItem, error) {
	fetched := p.reader.FetchAll(ctx, p.sources)

	for i := range fetched {
		// A native feed category survives; only the sentinel gets classified.
		if fetched[i].Category == models.CategoryUncategorized {
			fetched[i].Category = p.classifier.Classify(ctx, fetched[i].Title, fetched[i].Summary)
		}
	}

	added := []models.NewsItem{}
	for _, item := range fetched {
		inserted, err := p.items.PutIfAbsent(ctx, item)
		if err != nil {
			return nil, fmt.Errorf("storing item %s: %w", item.Id, err)
		}
		if inserted {
			added = append(added, item)
		}
	}

	log.WithFields(log.Fields{
		"sources": len(p.sources),
		"fetched": len(fetched),
		"added":   len(added),
	}).Info("Ingestion cycle finished")

	return added, nil
}
