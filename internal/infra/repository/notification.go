package repository

import (
	"context"
	"log/slog"
	"time"

	"club-scheduler/internal/infra"
	"club-scheduler/internal/pkg/pgconv"
)

const createNotificationJobSQL = `INSERT INTO notification_jobs (kind, topic, payload, run_at, status)
	VALUES ($1, $2, $3, $4, 'queued')`

// NotificationRepository writes the outbox; delivery is a separate worker's job.
type NotificationRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewNotificationRepository(db DBTX, logger *slog.Logger) *NotificationRepository {
	return &NotificationRepository{
		db:     db,
		logger: logger,
	}
}

func (r *NotificationRepository) CreateJob(ctx context.Context, kind, topic string, payload []byte, runAt time.Time) error {
	if _, err := r.db.Exec(ctx, createNotificationJobSQL, kind, topic, payload, pgconv.TimeToPgtype(runAt)); err != nil {
		return infra.ClassifyPgErr(r.logger, "failed to create notification job", err)
	}
	return nil
}
