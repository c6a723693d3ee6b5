package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "huddle",
	Short: "Two-party meeting scheduling assistant",
	Long: `Huddle turns a short conversation between two people into a scheduled
event: it reads intent, checks both calendars, proposes a concrete time and
place, and hands back add-to-calendar links.

With no arguments, launches the interactive chat.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&participantA, "a", "me", "First participant id")
	rootCmd.PersistentFlags().StringVar(&participantB, "b", "them", "Second participant id")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
