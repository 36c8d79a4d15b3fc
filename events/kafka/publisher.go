// Package kafka publishes ledger changes to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/etnz/budget"
	"github.com/segmentio/kafka-go"
)

// DefaultTopic receives the changes when no topic is given.
const DefaultTopic = "budget-changes"

// MessageWriter is the part of kafka.Writer the Publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher is a budget.Notifier writing every change as a JSON message.
// Messages are keyed by collection so changes of one collection stay ordered.
type Publisher struct {
	writer  MessageWriter
	timeout time.Duration
}

var _ budget.Notifier = (*Publisher)(nil)

// NewPublisher writes to topic on brokers. Writes are asynchronous, failures
// are logged.
func NewPublisher(brokers []string, topic string) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return NewPublisherWithWriter(&kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
		Async:    true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				log.Printf("change-publish-failed topic=%q messages=%d err=%q", topic, len(messages), err)
			}
		},
	})
}

// NewPublisherWithWriter uses w.
func NewPublisherWithWriter(w MessageWriter) *Publisher {
	return &Publisher{writer: w, timeout: 10 * time.Second}
}

// Notify publishes c.
func (p *Publisher) Notify(c budget.Change) {
	data, err := json.Marshal(c)
	if err != nil {
		log.Printf("change-encode-failed change=%q err=%q", c, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	msg := kafka.Message{
		Key:   []byte(c.Collection),
		Value: data,
		Time:  c.At,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		log.Printf("change-publish-failed change=%q err=%q", c, err)
	}
}

// Close flushes pending messages.
func (p *Publisher) Close() error { return p.writer.Close() }
