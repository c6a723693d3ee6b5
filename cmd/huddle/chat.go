package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/getahuddle/huddle/internal/config"
	"github.com/getahuddle/huddle/internal/tui"
)

var participantA string
var participantB string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Schedule interactively in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
}

func runChat() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	a, err := buildApp(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	model := tui.NewChat(tui.ChatConfig{
		Sched:        a.sched,
		ParticipantA: participantA,
		ParticipantB: participantB,
	})
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
