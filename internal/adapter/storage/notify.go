package storage

import (
	"context"
	"encoding/json"
	"log/slog"
)

// NotificationQueue is the fire-and-forget notification sink. Engines publish
// workflow events here; the worker delivers them later. A queue failure is
// logged and swallowed — it never fails or rolls back the triggering operation.
type NotificationQueue struct {
	db  DB
	url string
}

// NewNotificationQueue builds the queue. An empty URL disables publishing.
func NewNotificationQueue(db DB, url string) *NotificationQueue {
	return &NotificationQueue{db: db, url: url}
}

func (q *NotificationQueue) Publish(ctx context.Context, event string, payload any) {
	if q.url == "" {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		slog.Error("notification payload marshal failed", "error", err, "event", event)
		return
	}
	_, err = q.db.Exec(ctx, `
		INSERT INTO notification_jobs (url, event, payload)
		VALUES ($1, $2, $3)`, q.url, event, body)
	if err != nil {
		slog.Error("notification enqueue failed", "error", err, "event", event)
	}
}
