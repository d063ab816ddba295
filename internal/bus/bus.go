// Package bus provides the in-process message bus connecting channels and
// the command dispatcher.
package bus

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// InboundMessage is a message received from a chat channel.
type InboundMessage struct {
	Channel   string
	SenderID  string
	ChatID    string
	Content   string
	Timestamp time.Time
}

// OutboundMessage is a message to be delivered to a chat channel.
type OutboundMessage struct {
	Channel string
	ChatID  string
	Content string
}

// MessageBus routes inbound messages to the dispatcher and outbound
// messages to the channel that owns the target chat.
type MessageBus struct {
	inbound chan *InboundMessage

	mu          sync.RWMutex
	subscribers map[string]func(*OutboundMessage)
	outbound    chan *OutboundMessage
}

// NewMessageBus creates a message bus with buffered queues.
func NewMessageBus() *MessageBus {
	return &MessageBus{
		inbound:     make(chan *InboundMessage, 100),
		outbound:    make(chan *OutboundMessage, 100),
		subscribers: make(map[string]func(*OutboundMessage)),
	}
}

// PublishInbound queues a message for the dispatcher.
func (b *MessageBus) PublishInbound(msg *InboundMessage) {
	select {
	case b.inbound <- msg:
	default:
		slog.Warn("MessageBus: inbound queue full, dropping message",
			"channel", msg.Channel, "chat_id", msg.ChatID)
	}
}

// ConsumeInbound blocks until a message is available or the context ends.
func (b *MessageBus) ConsumeInbound(ctx context.Context) (*InboundMessage, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case msg := <-b.inbound:
		return msg, nil
	}
}

// Subscribe registers the outbound handler for a channel name.
func (b *MessageBus) Subscribe(channel string, fn func(*OutboundMessage)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[channel] = fn
}

// PublishOutbound queues a message for delivery.
func (b *MessageBus) PublishOutbound(msg *OutboundMessage) {
	select {
	case b.outbound <- msg:
	default:
		slog.Warn("MessageBus: outbound queue full, dropping message",
			"channel", msg.Channel, "chat_id", msg.ChatID)
	}
}

// DispatchOutbound delivers queued outbound messages to their subscribers.
// Blocks until the context is cancelled.
func (b *MessageBus) DispatchOutbound(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-b.outbound:
			b.mu.RLock()
			fn, ok := b.subscribers[msg.Channel]
			b.mu.RUnlock()
			if !ok {
				slog.Warn("MessageBus: no subscriber for channel", "channel", msg.Channel)
				continue
			}
			fn(msg)
		}
	}
}
