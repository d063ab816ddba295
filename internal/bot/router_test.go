package bot

import (
	"context"
	"testing"
	"time"

	"github.com/kamir/gopanelbot/internal/bus"
)

func newRouterHarness(t *testing.T) (*Router, chan *bus.OutboundMessage) {
	t.Helper()
	b := bus.NewMessageBus()
	out := make(chan *bus.OutboundMessage, 4)
	capture := func(msg *bus.OutboundMessage) { out <- msg }
	b.Subscribe("discord", capture)
	b.Subscribe("whatsapp", capture)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go b.DispatchOutbound(ctx)
	return NewRouter(b), out
}

func receive(t *testing.T, out chan *bus.OutboundMessage) *bus.OutboundMessage {
	t.Helper()
	select {
	case msg := <-out:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message delivered")
		return nil
	}
}

func TestReplyFallsBackToInvokerWhenUnbound(t *testing.T) {
	r, out := newRouterHarness(t)
	src := &bus.InboundMessage{Channel: "whatsapp", ChatID: "chat-7"}

	r.Reply(src, "hello")

	msg := receive(t, out)
	if msg.Channel != "whatsapp" || msg.ChatID != "chat-7" {
		t.Fatalf("reply misrouted: %+v", msg)
	}
}

func TestReplyUsesBindingAndDirectBypassesIt(t *testing.T) {
	r, out := newRouterHarness(t)
	r.Bind("discord", "100")
	src := &bus.InboundMessage{Channel: "whatsapp", ChatID: "chat-7"}

	r.Reply(src, "outcome")
	msg := receive(t, out)
	if msg.Channel != "discord" || msg.ChatID != "100" {
		t.Fatalf("reply ignored binding: %+v", msg)
	}

	r.Direct(src, "guard")
	msg = receive(t, out)
	if msg.Channel != "whatsapp" || msg.ChatID != "chat-7" {
		t.Fatalf("direct reply must go to the invoker: %+v", msg)
	}
}

func TestAnnounceRequiresBinding(t *testing.T) {
	r, out := newRouterHarness(t)
	if r.Announce("up") {
		t.Fatal("announce must fail while unbound")
	}

	r.Bind("discord", "100")
	if !r.Announce("up") {
		t.Fatal("announce failed despite binding")
	}
	msg := receive(t, out)
	if msg.ChatID != "100" || msg.Content != "up" {
		t.Fatalf("announcement misrouted: %+v", msg)
	}
}
