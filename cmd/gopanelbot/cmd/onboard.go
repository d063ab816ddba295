package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Write an environment template",
	Run:   runOnboard,
}

var onboardForce bool

func init() {
	onboardCmd.Flags().BoolVarP(&onboardForce, "force", "f", false, "Overwrite existing gopanelbot.env")
	rootCmd.AddCommand(onboardCmd)
}

const envTemplate = `# gopanelbot configuration
# Source this file (or export the variables) before running 'gopanelbot gateway'.

# Discord gateway (required)
DISCORD_TOKEN=
# Numeric channel id for command replies; empty disables channel gating
OUTPUT_CHANNEL_ID=

# Hosting panel
PANEL_BASE_URL=https://panel.example.com/api/v1
PANEL_USERNAME=
PANEL_PASSWORD=
PANEL_TIMEOUT=30s

# WhatsApp gateway (optional)
WHATSAPP_ENABLED=false
WHATSAPP_OUTPUT_JID=
WHATSAPP_ALLOW_FROM=
WHATSAPP_STORE_PATH=

# Kafka audit events (optional)
EVENTS_ENABLED=false
KAFKA_BROKERS=
EVENTS_TOPIC=gopanelbot.commands
`

func runOnboard(cmd *cobra.Command, args []string) {
	printHeader("🚀 GoPanelBot Onboard")

	path := "gopanelbot.env"
	if _, err := os.Stat(path); err == nil && !onboardForce {
		fmt.Printf("Environment template already exists at: %s\n", path)
		fmt.Println("Use --force (-f) to overwrite.")
		return
	}

	if err := os.WriteFile(path, []byte(envTemplate), 0600); err != nil {
		fmt.Printf("Error writing template: %v\n", err)
		return
	}
	fmt.Printf("✅ Environment template created at: %s\n", path)

	fmt.Println("\nNext steps:")
	fmt.Println("1. Fill in DISCORD_TOKEN and the PANEL_* credentials.")
	fmt.Println("2. Export the variables and run 'gopanelbot gateway'.")
}
