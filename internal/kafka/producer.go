package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/dmikh/workmarket/internal/logger"
)

type Producer interface {
	Produce(ctx context.Context, key string, value []byte) error
	Close() error
}

type producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
	}

	return &producer{writer: writer}
}

func (p *producer) Produce(ctx context.Context, key string, value []byte) error {
	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
	}

	produceCtx, cancel := context.WithTimeout(ctx, p.writer.WriteTimeout)
	defer cancel()

	if err := p.writer.WriteMessages(produceCtx, msg); err != nil {
		logger.Log.Error("failed to produce kafka message", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to produce kafka message: %w", err)
	}
	return nil
}

func (p *producer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
