// Package events publishes command audit events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// Envelope is the wire format for all audit events.
type Envelope struct {
	Type          string            `json:"type"`
	CorrelationID string            `json:"correlation_id"`
	SenderID      string            `json:"sender_id"`
	Timestamp     time.Time         `json:"timestamp"`
	Payload       map[string]string `json:"payload,omitempty"`
}

// Envelope type constants.
const (
	EnvelopeCommandReceived  = "command.received"
	EnvelopeCommandCompleted = "command.completed"
	EnvelopeCommandFailed    = "command.failed"
	EnvelopeLoginSucceeded   = "login.succeeded"
	EnvelopeLoginFailed      = "login.failed"
)

// Producer delivers envelopes to a topic.
type Producer interface {
	Produce(ctx context.Context, env *Envelope) error
	Close() error
}

// KafkaProducer implements Producer using segmentio/kafka-go.
type KafkaProducer struct {
	writer *kafka.Writer
}

// NewKafkaProducer creates a producer writing to the given topic.
func NewKafkaProducer(brokers, topic string) *KafkaProducer {
	return &KafkaProducer{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(strings.Split(brokers, ",")...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// Produce writes the envelope as JSON, keyed by its correlation id.
func (p *KafkaProducer) Produce(ctx context.Context, env *Envelope) error {
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode envelope: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(env.CorrelationID),
		Value: value,
	})
}

// Close flushes and closes the writer.
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

// ChannelProducer is a test/in-process Producer implementation backed by a
// Go channel.
type ChannelProducer struct {
	ch chan *Envelope
}

// NewChannelProducer creates an in-process producer for testing.
func NewChannelProducer() *ChannelProducer {
	return &ChannelProducer{ch: make(chan *Envelope, 100)}
}

// Produce pushes the envelope into the channel.
func (p *ChannelProducer) Produce(ctx context.Context, env *Envelope) error {
	p.ch <- env
	return nil
}

// Envelopes returns the envelope channel.
func (p *ChannelProducer) Envelopes() <-chan *Envelope { return p.ch }

// Close closes the channel.
func (p *ChannelProducer) Close() error {
	close(p.ch)
	return nil
}

// Publisher emits audit events through a Producer. A disabled publisher
// drops everything; produce failures are logged and never propagate into
// command handling.
type Publisher struct {
	producer Producer
}

// NewPublisher wraps a producer.
func NewPublisher(p Producer) *Publisher {
	return &Publisher{producer: p}
}

// Disabled returns a publisher that drops all events.
func Disabled() *Publisher {
	return &Publisher{}
}

// Close closes the underlying producer, if any.
func (p *Publisher) Close() error {
	if p.producer == nil {
		return nil
	}
	return p.producer.Close()
}

func (p *Publisher) emit(ctx context.Context, typ, sender string, payload map[string]string) {
	if p.producer == nil {
		return
	}
	env := &Envelope{
		Type:          typ,
		CorrelationID: fmt.Sprintf("%s-%d", typ, time.Now().UnixNano()),
		SenderID:      sender,
		Timestamp:     time.Now().UTC(),
		Payload:       payload,
	}
	if err := p.producer.Produce(ctx, env); err != nil {
		slog.Warn("Events: produce failed", "type", typ, "error", err)
	}
}

// CommandReceived records that a command arrived from a chat user.
func (p *Publisher) CommandReceived(ctx context.Context, command, sender string) {
	p.emit(ctx, EnvelopeCommandReceived, sender, map[string]string{"command": command})
}

// CommandCompleted records that a command handler finished.
func (p *Publisher) CommandCompleted(ctx context.Context, command, sender string) {
	p.emit(ctx, EnvelopeCommandCompleted, sender, map[string]string{"command": command})
}

// CommandFailed records a command handler error.
func (p *Publisher) CommandFailed(ctx context.Context, command, sender string, err error) {
	p.emit(ctx, EnvelopeCommandFailed, sender, map[string]string{
		"command": command,
		"error":   err.Error(),
	})
}

// LoginSucceeded records a successful panel login.
func (p *Publisher) LoginSucceeded(ctx context.Context, address string) {
	p.emit(ctx, EnvelopeLoginSucceeded, "", map[string]string{"address": address})
}

// LoginFailed records a failed panel login.
func (p *Publisher) LoginFailed(ctx context.Context, err error) {
	p.emit(ctx, EnvelopeLoginFailed, "", map[string]string{"error": err.Error()})
}
