package kafka

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
)

type MessageHandler interface {
	Handle(ctx context.Context, msg *sarama.ConsumerMessage) error
}

// Consumer feeds a consumer group's messages to one handler.
type Consumer struct {
	group   sarama.ConsumerGroup
	handler MessageHandler
	logger  *slog.Logger
	// Retry is the pause before each redelivery of a failed message. Once it
	// is exhausted the message is logged and skipped so the partition keeps
	// moving.
	Retry []time.Duration
}

var defaultRetry = []time.Duration{200 * time.Millisecond, time.Second, 5 * time.Second}

func NewConsumer(brokers []string, groupID string, cfg *sarama.Config, handler MessageHandler, logger *slog.Logger) (*Consumer, error) {
	if cfg == nil {
		cfg = sarama.NewConfig()
	}
	cfg.Version = sarama.V2_5_0_0
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategySticky()}
	group, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{group: group, handler: handler, logger: logger, Retry: defaultRetry}, nil
}

// Run consumes topics until ctx is cancelled, rejoining after each rebalance.
func (c *Consumer) Run(ctx context.Context, topics []string) error {
	for {
		err := c.group.Consume(ctx, topics, claimHandler{handler: c.handler, logger: c.logger, retry: c.Retry})
		switch {
		case errors.Is(err, sarama.ErrClosedConsumerGroup):
			return nil
		case err != nil:
			return err
		case ctx.Err() != nil:
			return ctx.Err()
		}
		c.logger.Info("consumer group rebalanced", "topics", topics)
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

type claimHandler struct {
	handler MessageHandler
	logger  *slog.Logger
	retry   []time.Duration
}

func (h claimHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h claimHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h claimHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case <-sess.Context().Done():
			return nil
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if !deliver(sess.Context(), h.handler, msg, h.retry, h.logger) {
				// session ended mid-retry; the message is redelivered to the next owner
				return nil
			}
			sess.MarkMessage(msg, "")
		}
	}
}

// deliver hands msg to handler, retrying failures with the given pauses. It
// returns false only when ctx ends before the message was settled.
func deliver(ctx context.Context, handler MessageHandler, msg *sarama.ConsumerMessage, retry []time.Duration, logger *slog.Logger) bool {
	attrs := []any{"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset}
	for attempt := 0; ; attempt++ {
		err := handler.Handle(ctx, msg)
		if err == nil {
			return true
		}
		if attempt >= len(retry) {
			logger.Error("message dropped after retries", append(attrs, "attempts", attempt+1, "error", err)...)
			return true
		}
		logger.Warn("message handling failed", append(attrs, "attempt", attempt+1, "error", err)...)
		select {
		case <-ctx.Done():
			return false
		case <-time.After(retry[attempt]):
		}
	}
}
