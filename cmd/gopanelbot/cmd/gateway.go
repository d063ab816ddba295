package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kamir/gopanelbot/internal/bot"
	"github.com/kamir/gopanelbot/internal/bus"
	"github.com/kamir/gopanelbot/internal/channels"
	"github.com/kamir/gopanelbot/internal/config"
	"github.com/kamir/gopanelbot/internal/events"
	"github.com/kamir/gopanelbot/internal/panel"
	"github.com/kamir/gopanelbot/internal/session"
)

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Start the bot gateway (Discord, optional WhatsApp)",
	Run:   runGateway,
}

func init() {
	rootCmd.AddCommand(gatewayCmd)
}

func runGateway(cmd *cobra.Command, args []string) {
	printHeader("🎮 GoPanelBot Gateway")
	fmt.Println("Starting GoPanelBot Gateway...")

	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Config error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Config error: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup Bus + Router
	msgBus := bus.NewMessageBus()
	router := bot.NewRouter(msgBus)

	// 3. Setup Panel Session
	panelClient := panel.NewClient(cfg.Panel.BaseURL, cfg.Panel.Username, cfg.Panel.Password, cfg.Panel.Timeout)
	sessionMgr := session.NewManager(panelClient)

	// 4. Setup Audit Events (conditional)
	audit := events.Disabled()
	if cfg.Events.Enabled {
		audit = events.NewPublisher(events.NewKafkaProducer(cfg.Events.KafkaBrokers, cfg.Events.Topic))
		fmt.Printf("📣 Audit events enabled on topic %s\n", cfg.Events.Topic)
	}
	defer audit.Close()

	// 5. Setup Dispatcher
	dispatcher := bot.NewDispatcher(msgBus, router, func() bot.GameServer {
		if server := sessionMgr.Server(); server != nil {
			return server
		}
		return nil
	}, audit)

	// 6. Start Everything
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Discord (primary). The panel login runs once, after the gateway
	// signals readiness, so the outcome can be announced to the bound
	// output channel.
	discord := channels.NewDiscordChannel(cfg.Discord, msgBus)
	var loginOnce sync.Once
	discord.OnReady = func(outputChatID string) {
		if outputChatID != "" {
			router.Bind(discord.Name(), outputChatID)
			router.Announce("GoPanelBot is online and ready! Commands: `!startserver`, `!status`, `!stopserver`")
		}
		loginOnce.Do(func() {
			loginPanel(ctx, sessionMgr, router, audit)
		})
	}
	if err := discord.Start(ctx); err != nil {
		fmt.Printf("Failed to start Discord: %v\n", err)
		os.Exit(1)
	}

	// WhatsApp (optional)
	whatsapp := channels.NewWhatsAppChannel(cfg.WhatsApp, msgBus)
	if cfg.WhatsApp.Enabled {
		if err := whatsapp.Start(ctx); err != nil {
			fmt.Printf("Failed to start WhatsApp: %v\n", err)
		}
	}

	go msgBus.DispatchOutbound(ctx)
	go dispatcher.Run(ctx)

	fmt.Println("Gateway running. Press Ctrl+C to stop.")
	<-sigChan

	fmt.Println("Shutting down...")
	discord.Stop()
	whatsapp.Stop()
}

// loginPanel performs the one-shot panel login and announces the outcome.
func loginPanel(ctx context.Context, mgr *session.Manager, router *bot.Router, audit *events.Publisher) {
	if err := mgr.Login(ctx); err != nil {
		fmt.Printf("Panel login failed: %v\n", err)
		router.Announce(fmt.Sprintf("FATAL ERROR: Failed to log into the panel. Check credentials and panel status. **Details:** `%v`", err))
		audit.LoginFailed(ctx, err)
		return
	}

	server := mgr.Server()
	if server == nil {
		fmt.Println("Panel login succeeded, but the account owns no servers.")
		router.Announce("Login successful, but no servers were found on the account.")
		return
	}

	fmt.Printf("Panel login successful. Server: %s\n", server.Address())
	router.Announce(fmt.Sprintf("Login successful! Server set to: `%s`", server.Address()))
	audit.LoginSucceeded(ctx, server.Address())
}
