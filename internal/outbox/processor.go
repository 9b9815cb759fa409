// Package outbox publishes platform events written by the services'
// transactions. Events stay pending until kafka has accepted them, so a
// crash between commit and publish replays rather than loses the event.
package outbox

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dmikh/workmarket/internal/kafka"
	"github.com/dmikh/workmarket/internal/logger"
	"github.com/dmikh/workmarket/internal/repository"
)

const batchSize = 10

type Processor struct {
	repo         repository.OutboxRepository
	producer     kafka.Producer
	pollInterval time.Duration
}

func NewProcessor(repo repository.OutboxRepository, producer kafka.Producer, interval time.Duration) *Processor {
	return &Processor{
		repo:         repo,
		producer:     producer,
		pollInterval: interval,
	}
}

func (p *Processor) Run(ctx context.Context) {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.publishPending(ctx)
		}
	}
}

func (p *Processor) publishPending(ctx context.Context) {
	events, err := p.repo.GetPending(ctx, batchSize)
	if err != nil {
		logger.Log.Error("failed to get pending outbox events", zap.Error(err))
		return
	}

	for _, e := range events {
		if err := p.producer.Produce(ctx, e.Key, e.Payload); err != nil {
			logger.Log.Warn("failed to publish outbox event",
				zap.String("event", e.ID.String()), zap.String("type", string(e.Type)), zap.Error(err))
			continue
		}

		if err := p.repo.MarkPublished(ctx, e.ID); err != nil {
			// at-least-once: the event may be published again on the next tick
			logger.Log.Error("failed to mark outbox event published",
				zap.String("event", e.ID.String()), zap.Error(err))
		}
	}
}
