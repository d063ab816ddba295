package main

import "github.com/kamir/gopanelbot/cmd/gopanelbot/cmd"

func main() {
	cmd.Execute()
}
