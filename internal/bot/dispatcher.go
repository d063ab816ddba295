package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/kamir/gopanelbot/internal/bus"
	"github.com/kamir/gopanelbot/internal/events"
	"github.com/kamir/gopanelbot/internal/panel"
)

// Prefix triggers command parsing on inbound messages.
const Prefix = "!"

// GameServer is the slice of the panel server handle the handlers need.
// *panel.Server satisfies it.
type GameServer interface {
	Address() string
	Fetch(ctx context.Context) (*panel.Status, error)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Confirm(ctx context.Context) error
}

// Dispatcher consumes inbound messages, gates them, and runs the command
// handlers. Every invocation gets its own goroutine so blocking panel
// calls never stall gateway event delivery.
type Dispatcher struct {
	bus      *bus.MessageBus
	router   *Router
	serverFn func() GameServer
	audit    *events.Publisher

	// serializes mutating panel operations; status is not serialized
	panelMu sync.Mutex
}

// NewDispatcher wires the dispatcher. serverFn returns the selected server
// handle, or nil while the session is not configured.
func NewDispatcher(b *bus.MessageBus, router *Router, serverFn func() GameServer, audit *events.Publisher) *Dispatcher {
	if audit == nil {
		audit = events.Disabled()
	}
	return &Dispatcher{bus: b, router: router, serverFn: serverFn, audit: audit}
}

// Run consumes the inbound bus until the context ends.
func (d *Dispatcher) Run(ctx context.Context) {
	slog.Info("Dispatcher: running", "prefix", Prefix)
	for {
		msg, err := d.bus.ConsumeInbound(ctx)
		if err != nil {
			return
		}
		go d.Handle(ctx, msg)
	}
}

// Handle processes one inbound message end to end. Messages that are not
// known commands are ignored silently.
func (d *Dispatcher) Handle(ctx context.Context, msg *bus.InboundMessage) {
	content := strings.TrimSpace(msg.Content)
	if !strings.HasPrefix(content, Prefix) {
		return
	}
	fields := strings.Fields(content[len(Prefix):])
	if len(fields) == 0 {
		return
	}
	name := fields[0]

	var handler func(context.Context, *bus.InboundMessage, GameServer) error
	switch name {
	case "startserver":
		handler = d.startServer
	case "status":
		handler = d.checkStatus
	case "stopserver":
		handler = d.stopServer
	default:
		return
	}

	if channel, chatID, ok := d.router.Bound(); ok && (msg.Channel != channel || msg.ChatID != chatID) {
		d.router.Direct(msg, fmt.Sprintf("Please use the dedicated channel: <#%s>", chatID))
		return
	}

	server := d.serverFn()
	if server == nil {
		d.router.Direct(msg, "Server is not configured or failed to log in.")
		return
	}

	slog.Info("Dispatcher: command", "name", name, "sender", msg.SenderID, "channel", msg.Channel)
	d.audit.CommandReceived(ctx, name, msg.SenderID)
	if err := handler(ctx, msg, server); err != nil {
		slog.Warn("Dispatcher: command failed", "name", name, "error", err)
		d.audit.CommandFailed(ctx, name, msg.SenderID, err)
		return
	}
	d.audit.CommandCompleted(ctx, name, msg.SenderID)
}

func (d *Dispatcher) startServer(ctx context.Context, msg *bus.InboundMessage, server GameServer) error {
	d.panelMu.Lock()
	defer d.panelMu.Unlock()

	status, err := server.Fetch(ctx)
	if err != nil {
		d.router.Reply(msg, fmt.Sprintf("Error starting server: %v", err))
		return err
	}
	if status.State == panel.StateOnline {
		d.router.Reply(msg, "Server is already **ONLINE**.")
		return nil
	}

	d.router.Reply(msg, fmt.Sprintf("Attempting to **START** server: `%s`...", server.Address()))

	if err := server.Start(ctx); err != nil {
		d.router.Reply(msg, fmt.Sprintf("Error starting server: %v", err))
		return err
	}

	if status.State == panel.StatePending {
		if err := server.Confirm(ctx); err != nil {
			d.router.Reply(msg, fmt.Sprintf("Error starting server: %v", err))
			return err
		}
		d.router.Reply(msg, "Start confirmed. Server is in the **STARTING QUEUE**.")
	}

	d.router.Reply(msg, "Start command sent. Use `!status` to track progress.")
	return nil
}

func (d *Dispatcher) checkStatus(ctx context.Context, msg *bus.InboundMessage, server GameServer) error {
	status, err := server.Fetch(ctx)
	if err != nil {
		d.router.Reply(msg, fmt.Sprintf("Error checking status: %v", err))
		return err
	}

	var text string
	switch status.State {
	case panel.StateOnline:
		text = fmt.Sprintf("Status: **ONLINE** ✅\nPlayers: **%d/%d**\nAddress: `%s`",
			status.Players, status.MaxPlayers, status.Address)
	case panel.StateOffline:
		text = "Status: **OFFLINE** 🛑"
	case panel.StateStarting:
		text = "Status: **STARTING** 🟡"
	case panel.StatePending:
		text = "Status: **IN QUEUE** ⏳ (Use `!startserver` to try to confirm)"
	default:
		text = fmt.Sprintf("Status: **%s** (Unknown)", strings.ToUpper(status.Raw))
	}
	d.router.Reply(msg, text)
	return nil
}

func (d *Dispatcher) stopServer(ctx context.Context, msg *bus.InboundMessage, server GameServer) error {
	d.panelMu.Lock()
	defer d.panelMu.Unlock()

	status, err := server.Fetch(ctx)
	if err != nil {
		d.router.Reply(msg, fmt.Sprintf("Error stopping server: %v", err))
		return err
	}
	if status.State == panel.StateOffline {
		d.router.Reply(msg, "Server is already **OFFLINE**.")
		return nil
	}

	d.router.Reply(msg, fmt.Sprintf("Attempting to **STOP** server: `%s`...", server.Address()))

	if err := server.Stop(ctx); err != nil {
		d.router.Reply(msg, fmt.Sprintf("Error stopping server: %v", err))
		return err
	}

	d.router.Reply(msg, "Stop command sent. Server should be shutting down.")
	return nil
}
