package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dmikh/workmarket/internal/logger"
	"github.com/dmikh/workmarket/internal/models"
)

type OutboxRepository interface {
	Create(ctx context.Context, e *models.OutboxEvent) error
	CreateTx(ctx context.Context, q Querier, e *models.OutboxEvent) error
	GetPending(ctx context.Context, limit int) ([]models.OutboxEvent, error)
	MarkPublished(ctx context.Context, id uuid.UUID) error
}

type outboxRepo struct {
	db *sql.DB
}

func NewOutboxRepository(db *sql.DB) OutboxRepository {
	return &outboxRepo{db: db}
}

func (r *outboxRepo) Create(ctx context.Context, e *models.OutboxEvent) error {
	return r.CreateTx(ctx, r.db, e)
}

func (r *outboxRepo) CreateTx(ctx context.Context, q Querier, e *models.OutboxEvent) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO outbox_events (id, event_type, key, payload, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, e.ID, e.Type, e.Key, e.Payload, e.Status, e.CreatedAt)
	return err
}

func (r *outboxRepo) GetPending(ctx context.Context, limit int) ([]models.OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, event_type, key, payload, status, created_at, published_at
		FROM outbox_events
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2
	`, models.OutboxStatusPending, limit)
	if err != nil {
		logger.Log.Error("failed to query outbox events", zap.Error(err))
		return nil, err
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			logger.Log.Error("failed to close rows", zap.Error(err))
		}
	}(rows)

	var events []models.OutboxEvent
	for rows.Next() {
		var e models.OutboxEvent
		if err := rows.Scan(&e.ID, &e.Type, &e.Key, &e.Payload, &e.Status, &e.CreatedAt, &e.PublishedAt); err != nil {
			logger.Log.Error("failed to scan outbox event", zap.Error(err))
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *outboxRepo) MarkPublished(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE outbox_events SET status = $1, published_at = $2 WHERE id = $3
	`, models.OutboxStatusPublished, time.Now(), id)
	return err
}
