package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/fiootv/comms-gateway/internal/config"
)

// Consumer is a thin wrapper around segmentio/kafka-go Reader, bound to one
// channel topic.
type Consumer struct {
	r *kafka.Reader
}

func NewConsumer(cfg config.KafkaConfig, topic, groupID string) *Consumer {
	min := cfg.MinBytes
	if min <= 0 {
		min = 1 << 10 // 1KB
	}
	max := cfg.MaxBytes
	if max <= 0 {
		max = 10 << 20 // 10MB
	}
	ci := time.Duration(cfg.CommitInterval) * time.Millisecond
	if ci <= 0 {
		ci = time.Second
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        groupID,
		Topic:          topic,
		MinBytes:       min,
		MaxBytes:       max,
		CommitInterval: ci,
		MaxWait:        50 * time.Millisecond,
	})

	return &Consumer{r: r}
}

type Message = kafka.Message

func (c *Consumer) Fetch(ctx context.Context) (Message, error) {
	return c.r.FetchMessage(ctx)
}

func (c *Consumer) Commit(ctx context.Context, msgs ...Message) error {
	return c.r.CommitMessages(ctx, msgs...)
}

func (c *Consumer) Close() error { return c.r.Close() }
