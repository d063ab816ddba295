package channels

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/kamir/gopanelbot/internal/bus"
	"github.com/kamir/gopanelbot/internal/config"
)

// DiscordChannel implements the primary Discord gateway.
type DiscordChannel struct {
	BaseChannel
	config  config.DiscordConfig
	session *discordgo.Session
	sendFn  func(ctx context.Context, msg *bus.OutboundMessage) error

	mu    sync.Mutex
	botID string

	// OnReady is invoked once, after the gateway signals readiness, with
	// the resolved output channel id (empty when unconfigured or
	// unresolvable). Channel lookup is unavailable before that point.
	OnReady func(outputChatID string)
}

// NewDiscordChannel creates a new Discord channel.
func NewDiscordChannel(cfg config.DiscordConfig, messageBus *bus.MessageBus) *DiscordChannel {
	return &DiscordChannel{
		BaseChannel: BaseChannel{Bus: messageBus},
		config:      cfg,
	}
}

func (c *DiscordChannel) Name() string { return "discord" }

func (c *DiscordChannel) Start(ctx context.Context) error {
	session, err := discordgo.New("Bot " + c.config.Token)
	if err != nil {
		return fmt.Errorf("failed to create discord session: %w", err)
	}
	c.session = session

	session.Identify.Intents = discordgo.IntentGuildMessages | discordgo.IntentMessageContent
	session.AddHandler(c.handleReady)
	session.AddHandler(c.handleMessageCreate)

	if err := session.Open(); err != nil {
		return fmt.Errorf("failed to connect to discord: %w", err)
	}

	c.Bus.Subscribe(c.Name(), func(msg *bus.OutboundMessage) {
		go c.handleOutbound(msg)
	})

	return nil
}

func (c *DiscordChannel) Stop() error {
	if c.session != nil {
		return c.session.Close()
	}
	return nil
}

// Send delivers one message to a Discord channel.
func (c *DiscordChannel) Send(ctx context.Context, msg *bus.OutboundMessage) error {
	if c.session == nil {
		return fmt.Errorf("session not initialized")
	}
	_, err := c.session.ChannelMessageSend(msg.ChatID, msg.Content)
	return err
}

func (c *DiscordChannel) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	c.mu.Lock()
	c.botID = r.User.ID
	c.mu.Unlock()
	slog.Info("Discord: logged in", "user", r.User.Username, "id", r.User.ID)

	chatID := c.resolveOutputChannel(s)
	if c.OnReady != nil {
		go c.OnReady(chatID)
	}
}

// resolveOutputChannel validates the configured channel id against the
// gateway. Failures are non-fatal; the bot degrades to replying in the
// invoking channel.
func (c *DiscordChannel) resolveOutputChannel(s *discordgo.Session) string {
	id, err := c.config.ParseOutputChannelID()
	if err != nil {
		slog.Warn("Discord: invalid OUTPUT_CHANNEL_ID", "error", err)
		return ""
	}
	if id == "" {
		slog.Warn("Discord: OUTPUT_CHANNEL_ID not set")
		return ""
	}
	channel, err := s.Channel(id)
	if err != nil {
		slog.Warn("Discord: could not resolve output channel", "id", id, "error", err)
		return ""
	}
	slog.Info("Discord: output channel set", "name", channel.Name, "id", channel.ID)
	return channel.ID
}

func (c *DiscordChannel) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	c.mu.Lock()
	own := m.Author.ID == c.botID
	c.mu.Unlock()
	if own {
		return
	}

	c.Bus.PublishInbound(&bus.InboundMessage{
		Channel:   c.Name(),
		SenderID:  m.Author.ID,
		ChatID:    m.ChannelID,
		Content:   m.Content,
		Timestamp: m.Timestamp,
	})
}

func (c *DiscordChannel) handleOutbound(msg *bus.OutboundMessage) {
	sendCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := c.sendOutbound(sendCtx, msg); err != nil {
		slog.Error("Discord: send failed", "chat_id", msg.ChatID, "error", err)
	}
}

func (c *DiscordChannel) sendOutbound(ctx context.Context, msg *bus.OutboundMessage) error {
	if c.sendFn != nil {
		return c.sendFn(ctx, msg)
	}
	return c.Send(ctx, msg)
}
