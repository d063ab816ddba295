// Package channels implements the chat gateways the bot listens on.
package channels

import (
	"context"

	"github.com/kamir/gopanelbot/internal/bus"
)

// Channel is a chat gateway. Start connects and begins publishing inbound
// messages to the bus; outbound delivery happens through the bus
// subscription registered during Start.
type Channel interface {
	Name() string
	Start(ctx context.Context) error
	Stop() error
	Send(ctx context.Context, msg *bus.OutboundMessage) error
}

// BaseChannel carries the pieces every channel shares.
type BaseChannel struct {
	Bus *bus.MessageBus
}
