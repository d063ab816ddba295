package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install gopanelbot to /usr/local/bin",
	Run:   runInstall,
}

func init() {
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) {
	printHeader("📦 GoPanelBot Install")

	exe, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to resolve executable: %v\n", err)
		return
	}

	targetDir := "/usr/local/bin"
	targetPath := filepath.Join(targetDir, "gopanelbot")
	cmdCopy := exec.Command("cp", exe, targetPath)
	cmdCopy.Stdout = os.Stdout
	cmdCopy.Stderr = os.Stderr
	if err := cmdCopy.Run(); err != nil {
		fmt.Printf("Install failed (try with sudo): %v\n", err)
		return
	}
	fmt.Printf("Installed to %s\n", targetPath)
}
