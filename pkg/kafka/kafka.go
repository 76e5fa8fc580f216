// Package kafka publishes and consumes order events on a Kafka topic. The
// message key carries the event type so both brokers share one handler shape.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rewear/internal/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Config holds Kafka connection details.
type Config struct {
	Brokers []string
	Topic   string
	GroupID string
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Client pairs a writer and a consumer group reader on one topic.
type Client struct {
	topic  string
	writer messageWriter
	reader messageReader
}

func NewClient(cfg Config) (*Client, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: at least one broker is required")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka: topic is required")
	}
	if cfg.GroupID == "" {
		cfg.GroupID = "rewear-notifications"
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  5,
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	logger.L().Info("kafka client configured", zap.Strings("brokers", cfg.Brokers), zap.String("topic", cfg.Topic))
	return &Client{topic: cfg.Topic, writer: writer, reader: reader}, nil
}

// Publish writes one message keyed by routingKey.
func (c *Client) Publish(ctx context.Context, routingKey string, body []byte) error {
	err := c.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(routingKey),
		Value: body,
		Time:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", c.topic, err)
	}
	return nil
}

// Consume hands each message to handle and commits it, until ctx is done.
// Messages handle rejects are logged and committed so they are not redelivered.
func (c *Client) Consume(ctx context.Context, handle func(ctx context.Context, routingKey string, body []byte) error) error {
	log := logger.L().With(zap.String("topic", c.topic))
	log.Info("waiting for events")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to fetch message: %w", err)
		}
		if err := handle(ctx, string(msg.Key), msg.Value); err != nil {
			log.Warn("error processing message",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to commit offset %d: %w", msg.Offset, err)
		}
	}
}

func (c *Client) Close() error {
	return errors.Join(c.writer.Close(), c.reader.Close())
}
