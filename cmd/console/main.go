package main

import (
	"flag"
	"fmt"
	"os"

	"fleetdesk/cmd/console/ui"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	server := flag.String("server", "http://127.0.0.1:8080", "base URL of the fleet backend")
	flag.Parse()

	client := ui.NewClient(*server)
	p := tea.NewProgram(ui.NewRootModel(client), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "console error:", err)
		os.Exit(1)
	}
}
