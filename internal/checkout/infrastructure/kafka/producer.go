// Package kafka publishes checkout lifecycle events for downstream
// consumers (kitchen display, notifications, reporting).
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/tastevn/checkout-service/pkg/tracing"
)

type Writer struct {
	*kafka.Writer
}

func NewWriter(brokers []string, topic string) *Writer {
	return &Writer{
		Writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
		},
	}
}

// Publisher implements the application EventPublisher port. Events carry
// an event_type header plus trace propagation headers.
type Publisher struct {
	log    *slog.Logger
	writer *Writer
}

func NewPublisher(log *slog.Logger, writer *Writer) *Publisher {
	return &Publisher{log: log, writer: writer}
}

func (p *Publisher) Publish(ctx context.Context, eventType, key string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", eventType, err)
	}

	headers := []kafka.Header{{Key: "event_type", Value: []byte(eventType)}}
	headers = tracing.InjectKafkaHeaders(ctx, headers)

	msg := kafka.Message{
		Key:     []byte(key),
		Value:   value,
		Headers: headers,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	p.log.Info("lifecycle event published", "event_type", eventType, "key", key)
	return nil
}
