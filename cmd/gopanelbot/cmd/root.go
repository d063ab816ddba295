// Package cmd implements the gopanelbot CLI.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gopanelbot",
	Short: "Chat bot that controls a game server through its hosting panel",
	Long: `GoPanelBot relays chat commands (!startserver, !status, !stopserver)
to a game-hosting control panel and reports results to a designated channel.`,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func printHeader(title string) {
	c := color.New(color.FgCyan, color.Bold)
	c.Println(title)
	fmt.Println(strings.Repeat("=", len([]rune(title))+2))
}
