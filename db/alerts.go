package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sqlbuilder "github.com/huandu/go-sqlbuilder"

	"varsler/models"
	"varsler/store"
)

// Alerts is the durable AlertStore backed by SQLite. Records are append
// only; nothing in this type updates or deletes rows.
type Alerts struct {
	db *sql.DB
}

func NewAlerts(database string) (*Alerts, error) {
	db, err := connection(database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return &Alerts{db: db}, nil
}

var _ store.AlertStore = (*Alerts)(nil)

func (alerts *Alerts) Close() error {
	return alerts.db.Close()
}

func (alerts *Alerts) Append(ctx context.Context, record models.AlertRecord) error {
	ib := sqlbuilder.NewInsertBuilder()
	ib.InsertInto("alerts")
	ib.Cols("id", "news_id", "recipient", "subject", "body", "sent", "error", "sent_at")
	ib.Values(
		record.Id,
		record.NewsId,
		record.Recipient,
		record.Subject,
		record.Body,
		record.Sent,
		record.Error,
		record.SentAt.Unix(),
	)

	query, args := ib.BuildWithFlavor(sqlbuilder.SQLite)

	if _, err := alerts.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert error: %w", err)
	}
	return nil
}

func (alerts *Alerts) List(ctx context.Context, limit int, offset int) ([]models.AlertRecord, error) {
	limit = store.ClampLimit(limit)
	offset = store.ClampOffset(offset)

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("id", "news_id", "recipient", "subject", "body", "sent", "error", "sent_at").From("alerts")
	sb.OrderBy("sent_at DESC", "seq DESC")
	sb.Limit(limit).Offset(offset)

	query, args := sb.BuildWithFlavor(sqlbuilder.SQLite)

	rows, err := alerts.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	listed := []models.AlertRecord{}
	for rows.Next() {
		var record models.AlertRecord
		var sentAt int64
		if err := rows.Scan(&record.Id, &record.NewsId, &record.Recipient, &record.Subject, &record.Body, &record.Sent, &record.Error, &sentAt); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		record.SentAt = time.Unix(sentAt, 0).UTC()
		listed = append(listed, record)
	}

	return listed, rows.Err()
}
