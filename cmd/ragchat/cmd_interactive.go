package main

import (
	"fmt"

	"ragchat/cmd/ragchat/chat"

	tea "github.com/charmbracelet/bubbletea"
)

// runInteractive starts the terminal client
func runInteractive() error {
	client, err := newClient()
	if err != nil {
		return err
	}

	m := chat.New(chat.Config{
		Backend: client,
		Port:    client.Port(),
		UI:      cfg.UI,
	})
	defer m.Shutdown()

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		return failureErr(fmt.Errorf("interactive client failed: %w", err))
	}
	return nil
}
