package channels

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/kamir/gopanelbot/internal/bus"
	"github.com/kamir/gopanelbot/internal/config"
)

func TestWhatsAppAllowList(t *testing.T) {
	msgBus := bus.NewMessageBus()

	wa := NewWhatsAppChannel(config.WhatsAppConfig{}, msgBus)
	if !wa.isAllowed("491700000001") {
		t.Fatal("empty allow-list must allow everyone")
	}

	wa = NewWhatsAppChannel(config.WhatsAppConfig{AllowFrom: []string{"491700000001"}}, msgBus)
	if !wa.isAllowed("491700000001") {
		t.Fatal("listed sender must be allowed")
	}
	if wa.isAllowed("491700000002") {
		t.Fatal("unlisted sender must be rejected")
	}
}

func TestWhatsAppOutboundUsesSendSeam(t *testing.T) {
	msgBus := bus.NewMessageBus()
	wa := NewWhatsAppChannel(config.WhatsAppConfig{Enabled: true}, msgBus)

	var called int32
	wa.sendFn = func(ctx context.Context, msg *bus.OutboundMessage) error {
		atomic.AddInt32(&called, 1)
		return nil
	}

	wa.handleOutbound(&bus.OutboundMessage{
		Channel: wa.Name(),
		ChatID:  "12345@s.whatsapp.net",
		Content: "test",
	})

	if atomic.LoadInt32(&called) != 1 {
		t.Fatalf("expected send to be invoked once")
	}
}

func TestWhatsAppStorePathDefaultsUnderHome(t *testing.T) {
	wa := NewWhatsAppChannel(config.WhatsAppConfig{StorePath: "/tmp/custom.db"}, bus.NewMessageBus())
	if got := wa.storePath(); got != "/tmp/custom.db" {
		t.Fatalf("configured store path ignored: %q", got)
	}

	wa = NewWhatsAppChannel(config.WhatsAppConfig{}, bus.NewMessageBus())
	if got := wa.storePath(); got == "" {
		t.Fatal("default store path must not be empty")
	}
}
