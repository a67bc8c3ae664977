package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/IBM/sarama"
)

type MessageHandler interface {
	Handle(ctx context.Context, msg *sarama.ConsumerMessage) error
}

// PayloadFunc handles the raw value of a message.
type PayloadFunc func(ctx context.Context, payload []byte) error

// PayloadHandler adapts a PayloadFunc to MessageHandler.
type PayloadHandler PayloadFunc

func (f PayloadHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	return f(ctx, msg.Value)
}

// retryBackoff is the pause before rejoining after a handler failure.
const retryBackoff = time.Second

type Consumer struct {
	group   sarama.ConsumerGroup
	handler MessageHandler
	logger  *slog.Logger
	backoff time.Duration
}

func NewConsumer(brokers []string, groupID string, cfg *sarama.Config, handler MessageHandler, logger *slog.Logger) (*Consumer, error) {
	if handler == nil {
		return nil, errors.New("kafka: consumer handler is required")
	}
	if cfg == nil {
		cfg = sarama.NewConfig()
	}
	cfg.Version = sarama.V2_5_0_0
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	g, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka: consumer group: %w", err)
	}
	return &Consumer{group: g, handler: handler, logger: logger, backoff: retryBackoff}, nil
}

// Run consumes topics until ctx is cancelled. A session ended by a handler
// failure is rejoined after a backoff, resuming from the last committed offset.
func (c *Consumer) Run(ctx context.Context, topics []string) error {
	h := &consumerGroupHandler{handler: c.handler, logger: c.logger}
	for {
		if err := c.group.Consume(ctx, topics, h); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if h.failed.Swap(false) {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.backoff):
			}
		}
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

type consumerGroupHandler struct {
	handler MessageHandler
	logger  *slog.Logger
	failed  atomic.Bool
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim stops at the first failed message without marking it, so its
// offset is never committed past and it is read again in the next session.
func (h *consumerGroupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		if err := h.handler.Handle(sess.Context(), message); err != nil {
			h.failed.Store(true)
			if h.logger != nil {
				h.logger.Error("kafka message failed", "topic", message.Topic, "partition", message.Partition, "offset", message.Offset, "error", err)
			}
			return fmt.Errorf("kafka: handle %s/%d@%d: %w", message.Topic, message.Partition, message.Offset, err)
		}
		sess.MarkMessage(message, "")
	}
	return nil
}
