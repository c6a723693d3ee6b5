package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/getahuddle/huddle/internal/config"
	"github.com/getahuddle/huddle/internal/scheduler"
	"github.com/getahuddle/huddle/internal/stream"
	"github.com/getahuddle/huddle/pkg/models"
)

var scheduleEdit bool
var scheduleAllowConflict bool
var scheduleJSON bool

var scheduleCmd = &cobra.Command{
	Use:   "schedule [message]",
	Short: "Run a single scheduling turn",
	Long: `Runs one turn of the scheduling pipeline for the given message and
prints the outcome. Use --json to get the raw envelope stream instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSchedule(strings.Join(args, " "))
	},
}

func init() {
	scheduleCmd.Flags().BoolVar(&scheduleEdit, "edit", false, "Edit the cached event instead of building a new one")
	scheduleCmd.Flags().BoolVar(&scheduleAllowConflict, "allow-conflict", false, "Book an explicitly requested time even over a conflict")
	scheduleCmd.Flags().BoolVar(&scheduleJSON, "json", false, "Emit raw line-delimited JSON envelopes")
}

func runSchedule(message string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()
	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	var sink stream.Sink
	if scheduleJSON {
		sink = stream.NewWriterSink(os.Stdout)
	} else {
		sink = &consoleSink{}
	}

	a.sched.Run(ctx, scheduler.Request{
		ParticipantA:  participantA,
		ParticipantB:  participantB,
		Turns:         []models.ConversationTurn{{Role: models.RoleUser, Text: message}},
		Edit:          scheduleEdit,
		AllowConflict: scheduleAllowConflict,
	}, stream.NewEmitter(sink))
	return nil
}

// consoleSink renders envelopes for a human at a terminal.
type consoleSink struct{}

func (c *consoleSink) Send(env stream.Envelope) error {
	switch env.Type {
	case stream.TypeAcknowledgment, stream.TypeProgress:
		color.New(color.Faint).Println(env.Message)
	case stream.TypeContent:
		fmt.Println(env.Message)
	case stream.TypeEvent:
		if env.Event != nil {
			printEvent(env.Event)
		}
	case stream.TypeEnhancementPending:
		color.New(color.Faint).Printf("Still looking for more places (enrichment %s)\n", env.EnrichmentID)
	case stream.TypeError:
		color.New(color.FgRed).Fprintln(os.Stderr, env.Message)
	}
	return nil
}

func (c *consoleSink) Close() error { return nil }

func printEvent(event *models.FinalEvent) {
	bold := color.New(color.Bold)
	bold.Printf("\n%s\n", event.Title)
	fmt.Printf("  %s to %s\n",
		event.StartTime.Format("Monday, January 2 at 3:04 PM"),
		event.EndTime.Format("3:04 PM"))
	if event.Location != "" {
		fmt.Printf("  %s\n", event.Location)
	}
	if event.TravelBuffer.BeforeMinutes > 0 || event.TravelBuffer.AfterMinutes > 0 {
		fmt.Printf("  Calendar block: %s to %s\n",
			event.CalendarBlockStart.Format("3:04 PM"),
			event.CalendarBlockEnd.Format("3:04 PM"))
	}
	if event.CalendarURLs.Google != "" {
		color.New(color.FgCyan).Printf("  Add to Google Calendar: %s\n", event.CalendarURLs.Google)
	}
	if event.CalendarURLs.Outlook != "" {
		color.New(color.FgCyan).Printf("  Add to Outlook: %s\n", event.CalendarURLs.Outlook)
	}
}
