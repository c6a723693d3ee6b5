package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/getahuddle/huddle/internal/config"
	"github.com/getahuddle/huddle/internal/scheduler"
	"github.com/getahuddle/huddle/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduling HTTP server",
	Long: `Starts the HTTP server. POST /v1/schedule streams the pipeline's
progress as line-delimited JSON; GET /v1/enrichment/{id} fetches the result
of a background venue search.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}
		return runServe(cfg)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")
}

func runServe(cfg *config.Config) error {
	ctx := context.Background()
	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	// Reload the scheduling policy when the config file changes, so the
	// alternatives thresholds can be tuned without a restart.
	if path := config.WatchPath(); path != "" {
		stop, err := config.Watch(path, func(next *config.Config) {
			policy, err := scheduler.LoadPolicy(next.Scheduler.PolicyPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "policy reload: %v\n", err)
				return
			}
			a.sched.SetPolicy(policy)
			fmt.Printf("scheduling policy reloaded from %s\n", path)
		}, func(err error) {
			fmt.Fprintf(os.Stderr, "config watch: %v\n", err)
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "config watch disabled: %v\n", err)
		} else {
			defer stop()
		}
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           (&server.Server{Sched: a.sched, Cache: a.cache}).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("huddle listening on %s\n", cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-stop:
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
