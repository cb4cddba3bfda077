package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/spf13/cobra"
)

func daemonCmd() *cobra.Command {
	var interval time.Duration
	var remindAt string

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Ingest configured channels on a timer and send daily review reminders",
		Long: `Continuously ingest new videos from listening.channels and send a daily
reminder for learned words that have not been studied recently.
Designed for running inside a Docker container or as a background service.
Handles SIGINT/SIGTERM for graceful shutdown (finishes the running job).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval == 0 {
				d, err := time.ParseDuration(cfg.Daemon.Interval)
				if err != nil {
					return fmt.Errorf("invalid daemon.interval %q: %w", cfg.Daemon.Interval, err)
				}
				interval = d
			}

			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

			s := gocron.NewScheduler(time.Local)
			s.SingletonModeAll()

			cycle := 1
			_, err = s.Every(interval).Do(func() {
				start := time.Now()
				log.Printf("portal daemon: ingest cycle %d starting", cycle)
				results, err := engine.IngestConfiguredChannels(ctx)
				if err != nil {
					log.Printf("portal daemon: ingest cycle %d error: %v", cycle, err)
				} else {
					videos := 0
					for _, r := range results {
						videos += len(r.Runs)
					}
					log.Printf("portal daemon: ingest cycle %d processed %d videos in %s", cycle, videos, time.Since(start).Round(time.Millisecond))
				}
				cycle++
			})
			if err != nil {
				return fmt.Errorf("failed to schedule ingest: %w", err)
			}

			_, err = s.Every(1).Day().At(remindAt).Do(func() {
				res, err := engine.SendReviewReminders(ctx, 0)
				if err != nil {
					log.Printf("portal daemon: reminder error: %v", err)
					return
				}
				log.Printf("portal daemon: reminded about %d words", res.Words)
			})
			if err != nil {
				return fmt.Errorf("failed to schedule reminders: %w", err)
			}

			log.Printf("portal daemon: starting with interval %s, reminders at %s", interval, remindAt)
			s.StartAsync()

			<-sig
			log.Println("portal daemon: received shutdown signal, exiting")
			cancel()
			s.Stop()
			return nil
		},
	}

	cmd.Flags().DurationVarP(&interval, "interval", "i", 0, "duration between ingest cycles (default: daemon.interval)")
	cmd.Flags().StringVar(&remindAt, "remind-at", "09:00", "local time of the daily review reminder (HH:MM)")
	return cmd
}
