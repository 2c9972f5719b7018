package alert

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"varsler/models"
	"varsler/store"
)

// SubjectPrefix is prepended to the item title in every alert subject.
const SubjectPrefix = "[News Alert] "

// Dispatcher sends an email alert for one stored news item and durably
// records the outcome. Every dispatch attempt produces exactly one record,
// sent or not; retries are the caller's responsibility.
type Dispatcher struct {
	items            store.ItemStore
	history          store.AlertStore
	emailer          Emailer
	defaultRecipient string
}

func NewDispatcher(items store.ItemStore, history store.AlertStore, emailer Emailer, defaultRecipient string) *Dispatcher {
	return &Dispatcher{
		items:            items,
		history:          history,
		emailer:          emailer,
		defaultRecipient: defaultRecipient,
	}
}

// Dispatch looks up the item, attempts the send and appends the outcome
// record. An unknown id surfaces store.ErrNotFound and persists nothing. A
// delivery failure is captured in the record, not returned as an error; only
// a store failure propagates.
func (d *Dispatcher) Dispatch(ctx context.Context, newsId string, recipient string) (models.AlertRecord, error) {
	if recipient == "" {
		recipient = d.defaultRecipient
	}

	item, err := d.items.Get(ctx, newsId)
	if err != nil {
		return models.AlertRecord{}, fmt.Errorf("looking up news item %s: %w", newsId, err)
	}

	record := models.AlertRecord{
		Id:        uuid.NewString(),
		NewsId:    item.Id,
		Recipient: recipient,
		Subject:   buildSubject(item),
		Body:      buildBody(item),
	}

	if err := d.emailer.Send(ctx, recipient, record.Subject, record.Body); err != nil {
		log.WithFields(log.Fields{
			"newsId":    newsId,
			"recipient": recipient,
			"error":     err,
		}).Warn("Alert delivery failed")
		record.Error = err.Error()
	} else {
		record.Sent = true
	}
	record.SentAt = time.Now().UTC()

	if err := d.history.Append(ctx, record); err != nil {
		return models.AlertRecord{}, fmt.Errorf("recording alert outcome: %w", err)
	}

	log.WithFields(log.Fields{
		"newsId":    newsId,
		"recipient": recipient,
		"sent":      record.Sent,
	}).Info("Alert dispatched")

	return record, nil
}

func buildSubject(item models.NewsItem) string {
	return SubjectPrefix + item.Title
}

func buildBody(item models.NewsItem) string {
	var b strings.Builder
	b.WriteString(item.Title)
	b.WriteString("\n\n")
	b.WriteString(item.Summary)
	b.WriteString("\n\n")
	b.WriteString("Source: " + item.Source + "\n")
	b.WriteString("Category: " + item.Category)
	if item.Link != "" {
		b.WriteString("\nLink: " + item.Link)
	}
	return b.String()
}
