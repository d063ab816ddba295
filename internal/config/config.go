// Package config provides configuration types and loading for gopanelbot.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is the root configuration struct.
// Top-level groups: Discord, WhatsApp, Panel, Events.
type Config struct {
	Discord  DiscordConfig  `json:"discord"`
	WhatsApp WhatsAppConfig `json:"whatsapp"`
	Panel    PanelConfig    `json:"panel"`
	Events   EventsConfig   `json:"events"`
}

// ---------------------------------------------------------------------------
// Discord – primary chat gateway
// ---------------------------------------------------------------------------

// DiscordConfig configures the Discord channel.
type DiscordConfig struct {
	Token           string `json:"token" envconfig:"DISCORD_TOKEN"`
	OutputChannelID string `json:"outputChannelId" envconfig:"OUTPUT_CHANNEL_ID"`
}

// ParseOutputChannelID validates the configured output channel identifier.
// An empty value means no channel is configured. A malformed value is
// reported as an error; the caller logs it and runs without channel gating.
func (c DiscordConfig) ParseOutputChannelID() (string, error) {
	id := strings.TrimSpace(c.OutputChannelID)
	if id == "" {
		return "", nil
	}
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return "", fmt.Errorf("OUTPUT_CHANNEL_ID is not a valid channel id: %q", id)
	}
	return id, nil
}

// ---------------------------------------------------------------------------
// WhatsApp – optional secondary gateway
// ---------------------------------------------------------------------------

// WhatsAppConfig configures the WhatsApp channel.
type WhatsAppConfig struct {
	Enabled   bool     `json:"enabled" envconfig:"WHATSAPP_ENABLED"`
	OutputJID string   `json:"outputJid" envconfig:"WHATSAPP_OUTPUT_JID"`
	AllowFrom []string `json:"allowFrom" envconfig:"WHATSAPP_ALLOW_FROM"`
	StorePath string   `json:"storePath" envconfig:"WHATSAPP_STORE_PATH"`
}

// ---------------------------------------------------------------------------
// Panel – host-automation client
// ---------------------------------------------------------------------------

// PanelConfig configures the hosting-panel client.
type PanelConfig struct {
	BaseURL  string        `json:"baseUrl" envconfig:"PANEL_BASE_URL"`
	Username string        `json:"username" envconfig:"PANEL_USERNAME"`
	Password string        `json:"password" envconfig:"PANEL_PASSWORD"`
	Timeout  time.Duration `json:"timeout" envconfig:"PANEL_TIMEOUT"`
}

// ---------------------------------------------------------------------------
// Events – optional Kafka audit publisher
// ---------------------------------------------------------------------------

// EventsConfig configures the command audit-event publisher.
type EventsConfig struct {
	Enabled      bool   `json:"enabled" envconfig:"EVENTS_ENABLED"`
	KafkaBrokers string `json:"kafkaBrokers" envconfig:"KAFKA_BROKERS"`
	Topic        string `json:"topic" envconfig:"EVENTS_TOPIC"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Panel: PanelConfig{
			BaseURL: "https://panel.example.com/api/v1",
			Timeout: 30 * time.Second,
		},
		Events: EventsConfig{
			Topic: "gopanelbot.commands",
		},
	}
}

// Load builds the configuration from defaults overridden by the environment.
func Load() (*Config, error) {
	cfg := DefaultConfig()
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings required before the gateway may connect.
// Only the gateway token is fatal at startup; everything else degrades at
// runtime (bad channel id disables gating, bad credentials fail the login).
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Discord.Token) == "" {
		return fmt.Errorf("DISCORD_TOKEN is not set")
	}
	if c.Events.Enabled && strings.TrimSpace(c.Events.KafkaBrokers) == "" {
		return fmt.Errorf("EVENTS_ENABLED=true but KAFKA_BROKERS is not set")
	}
	return nil
}
