// Package bot implements the command dispatcher and output routing.
package bot

import (
	"sync"

	"github.com/kamir/gopanelbot/internal/bus"
)

// Router decides where replies go. Outcome messages land in the bound
// output channel when one is configured; guard notices always go straight
// back to the invoker.
type Router struct {
	bus *bus.MessageBus

	mu      sync.RWMutex
	channel string
	chatID  string
}

// NewRouter creates an unbound router.
func NewRouter(b *bus.MessageBus) *Router {
	return &Router{bus: b}
}

// Bind sets the output channel. Called once, when the gateway resolves the
// configured channel at readiness; never rebound afterwards.
func (r *Router) Bind(channel, chatID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.channel = channel
	r.chatID = chatID
}

// Bound reports the output binding, if any.
func (r *Router) Bound() (channel, chatID string, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.channel, r.chatID, r.chatID != ""
}

// Reply sends an outcome message to the bound output channel, falling back
// to the chat the command came from.
func (r *Router) Reply(src *bus.InboundMessage, text string) {
	channel, chatID, ok := r.Bound()
	if !ok {
		channel, chatID = src.Channel, src.ChatID
	}
	r.bus.PublishOutbound(&bus.OutboundMessage{Channel: channel, ChatID: chatID, Content: text})
}

// Direct sends a message to the chat the command came from, bypassing the
// output binding. Used for the guard notices so a misdirected caller
// always gets feedback.
func (r *Router) Direct(src *bus.InboundMessage, text string) {
	r.bus.PublishOutbound(&bus.OutboundMessage{Channel: src.Channel, ChatID: src.ChatID, Content: text})
}

// Announce sends a startup message to the bound output channel. Reports
// false when no channel is bound.
func (r *Router) Announce(text string) bool {
	channel, chatID, ok := r.Bound()
	if !ok {
		return false
	}
	r.bus.PublishOutbound(&bus.OutboundMessage{Channel: channel, ChatID: chatID, Content: text})
	return true
}
