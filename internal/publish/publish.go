// Package publish sends computed scores to downstream consumers.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"supplyscore/internal/model"

	"github.com/segmentio/kafka-go"
)

// Publisher delivers a batch of scores.
type Publisher interface {
	Publish(ctx context.Context, operation string, scores []model.SupplierScore) error
	Close() error
}

// Message is the value of every published record.
type Message struct {
	SupplierID  string    `json:"fournisseurId"`
	Score       float64   `json:"score"`
	Operation   string    `json:"operation"`
	PublishedAt time.Time `json:"publishedAt"`
}

// kafkaMessageWriter abstracts kafka.Writer for testability.
type kafkaMessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes one message per supplier, keyed by supplier id,
// so every score of a supplier lands on the same partition.
type KafkaPublisher struct {
	writer kafkaMessageWriter
	now    func() time.Time
}

// NewKafkaPublisher creates a publisher for topic.
// brokers can be a comma-separated list of host:port.
func NewKafkaPublisher(brokers string, topic string) *KafkaPublisher {
	var addrs []string
	for _, a := range strings.Split(brokers, ",") {
		a = strings.TrimSpace(a)
		if a != "" {
			addrs = append(addrs, a)
		}
	}
	return NewKafkaPublisherWith(&kafka.Writer{
		Addr:         kafka.TCP(addrs...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	})
}

// NewKafkaPublisherWith wraps an existing writer.
func NewKafkaPublisherWith(w kafkaMessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w, now: time.Now}
}

// Publish writes one message per score in a single batch. An empty batch writes nothing.
func (p *KafkaPublisher) Publish(ctx context.Context, operation string, scores []model.SupplierScore) error {
	if len(scores) == 0 {
		return nil
	}
	now := p.now().UTC()
	msgs := make([]kafka.Message, 0, len(scores))
	for _, s := range scores {
		b, err := json.Marshal(Message{
			SupplierID:  s.SupplierID,
			Score:       s.Score,
			Operation:   operation,
			PublishedAt: now,
		})
		if err != nil {
			return fmt.Errorf("marshal: %w", err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(s.SupplierID), Value: b})
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d scores: %w", len(msgs), err)
	}
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
