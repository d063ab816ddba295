package bus

import (
	"context"
	"testing"
	"time"
)

func TestInboundRoundTrip(t *testing.T) {
	b := NewMessageBus()
	b.PublishInbound(&InboundMessage{Channel: "discord", ChatID: "1", Content: "!status"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	msg, err := b.ConsumeInbound(ctx)
	if err != nil {
		t.Fatalf("consume failed: %v", err)
	}
	if msg.Content != "!status" || msg.ChatID != "1" {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestConsumeInboundHonorsContext(t *testing.T) {
	b := NewMessageBus()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := b.ConsumeInbound(ctx); err == nil {
		t.Fatal("expected context error")
	}
}

func TestDispatchOutboundRoutesBySubscriber(t *testing.T) {
	b := NewMessageBus()
	got := make(chan *OutboundMessage, 1)
	b.Subscribe("discord", func(msg *OutboundMessage) { got <- msg })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.DispatchOutbound(ctx)

	b.PublishOutbound(&OutboundMessage{Channel: "discord", ChatID: "9", Content: "hi"})

	select {
	case msg := <-got:
		if msg.ChatID != "9" || msg.Content != "hi" {
			t.Fatalf("unexpected message: %+v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("outbound message was not delivered")
	}
}

func TestDispatchOutboundIgnoresUnknownChannel(t *testing.T) {
	b := NewMessageBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.DispatchOutbound(ctx)

	// Must not panic or block the dispatcher.
	b.PublishOutbound(&OutboundMessage{Channel: "nope", Content: "x"})

	got := make(chan *OutboundMessage, 1)
	b.Subscribe("discord", func(msg *OutboundMessage) { got <- msg })
	b.PublishOutbound(&OutboundMessage{Channel: "discord", Content: "y"})

	select {
	case msg := <-got:
		if msg.Content != "y" {
			t.Fatalf("unexpected message: %+v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("dispatcher stalled after unknown channel")
	}
}
