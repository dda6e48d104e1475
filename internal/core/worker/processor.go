package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/excelkipini/zolltaxforex-sub003/internal/core/notifications"
)

const maxAttempts = 5

// DB is the slice of the connection pool the worker needs.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// StartNotificationWorker drains the notification_jobs queue in the
// background. Delivery failures retry with a growing delay; after maxAttempts
// the job is marked FAILED and forgotten. Core operations never wait on this.
func StartNotificationWorker(db DB, interval time.Duration) {
	go func() {
		slog.Info("notification worker started", "interval", interval.String())
		for {
			processJobs(db)
			time.Sleep(interval)
		}
	}()
}

// processJobs claims and delivers at most one due job. Claim, delivery and
// outcome update run in a single transaction, so the SKIP LOCKED row lock is
// held until the outcome is recorded and a concurrent worker cannot pick up
// the same job mid-delivery.
func processJobs(db DB) {
	ctx := context.Background()

	tx, err := db.Begin(ctx)
	if err != nil {
		return
	}
	defer tx.Rollback(ctx)

	var id string
	var url, event string
	var payload []byte
	var attempts int
	err = tx.QueryRow(ctx, `
		SELECT id, url, event, payload, attempts
		FROM notification_jobs
		WHERE status = 'PENDING' AND next_run_at <= NOW()
		ORDER BY created_at ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED`).Scan(&id, &url, &event, &payload, &attempts)
	if err != nil {
		return
	}

	slog.Info("delivering notification", "event", event, "job_id", id)

	if sendErr := notifications.SendWebhook(url, event, payload); sendErr != nil {
		slog.Error("notification delivery failed", "error", sendErr, "job_id", id, "attempts", attempts)
		if attempts+1 >= maxAttempts {
			_, err = tx.Exec(ctx, `UPDATE notification_jobs SET status = 'FAILED' WHERE id = $1`, id)
			slog.Error("notification job abandoned", "job_id", id)
		} else {
			nextRun := time.Now().Add(time.Duration(attempts*10+10) * time.Second)
			_, err = tx.Exec(ctx, `
				UPDATE notification_jobs
				SET attempts = attempts + 1, next_run_at = $2
				WHERE id = $1`, id, nextRun)
		}
		if err != nil {
			return
		}
		tx.Commit(ctx)
		return
	}

	if _, err := tx.Exec(ctx, `UPDATE notification_jobs SET status = 'COMPLETED' WHERE id = $1`, id); err != nil {
		return
	}
	if err := tx.Commit(ctx); err != nil {
		return
	}
	slog.Info("notification delivered", "event", event, "job_id", id)
}
