package models

import "time"

// CategoryUncategorized is the sentinel label for items that carried no
// native feed category and were not matched by any classifier tier.
const CategoryUncategorized = "uncategorized"

// NewsItem is a normalized feed entry. The Id is derived from the feed
// entry's own identifier (guid, then link) and is stable across re-fetches.
type NewsItem struct {
	Id        string     `json:"id"`
	Title     string     `json:"title"`
	Link      string     `json:"link,omitempty"`
	Summary   string     `json:"summary,omitempty"`
	Published *time.Time `json:"published,omitempty"`
	Source    string     `json:"source,omitempty"`
	Category  string     `json:"category"`
}

// AlertRecord captures one alert dispatch attempt. Records are immutable
// once written; a retry creates a new record.
type AlertRecord struct {
	Id        string    `json:"id"`
	NewsId    string    `json:"newsId"`
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Sent      bool      `json:"sent"`
	Error     string    `json:"error,omitempty"`
	SentAt    time.Time `json:"sentAt"`
}

// FetchResponse is returned by the manual fetch endpoint.
type FetchResponse struct {
	NewCount int      `json:"new_count"`
	Items    []string `json:"items"`
}

// SendAlertRequest is the body of the alert dispatch endpoint. To is
// optional and falls back to the configured default recipient.
type SendAlertRequest struct {
	NewsId string `json:"news_id"`
	To     string `json:"to,omitempty"`
}
