package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/spf13/cobra"

	apperrors "igsaved/pkg/errors"
	"igsaved/pkg/exporter"
	"igsaved/pkg/ui"
)

var watchInterval time.Duration

// watchCmd repeats the incremental export on an interval
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Export new saved posts periodically",
	Long: `Run an export right away and then again on every interval until
interrupted. Each run only fetches posts that are not in the ledger yet.
A run that is still going when the next one is due is not overlapped.

Watching stops when the session is rejected, since every further run would
fail the same way.`,
	Example: `  # Check for new saved posts every hour
  igsaved watch --interval 1h`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "time between runs (default from config, 6h)")
	watchCmd.Flags().StringVar(&collectionID, "collection", "", "collection ID to export (default: all saved posts)")
	watchCmd.Flags().StringVar(&archiveMode, "archive", "", "archive to create after each run: full, metadata or none")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	cfg, log, out := current.cfg, current.log, current.out

	session, err := resolveSession(cfg, log, nil, false)
	if err != nil {
		return err
	}

	exp := exporter.New(newClient(cfg, log), exporter.Options{
		OutputDir:       cfg.Output.Directory,
		LedgerPath:      cfg.Output.LedgerFile,
		CheckpointEvery: cfg.Download.CheckpointEvery,
	}, log, exporter.WithReporter(current.reporter))
	req := exporter.Request{
		SessionID:    session,
		CollectionID: cfg.Download.Collection,
		Archive:      cfg.Output.ArchiveMode,
	}
	notifier := ui.NewNotifier(cfg.Notifications, out)

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(cfg.Watch.Interval),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				return
			}
			log.Info("starting scheduled export")
			summary, err := exp.Run(ctx, req)
			if err != nil {
				notifier.NotifyRun(nil, err)
				if apperrors.IsType(err, apperrors.ErrorTypeAuth) {
					cancel(err)
				}
				return
			}
			ui.PrintSummary(out, &summary, cfg.Output.Directory)
			notifier.NotifyRun(&summary, nil)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule export: %w", err)
	}

	ui.PrintInfo(out, "Watching saved posts every", cfg.Watch.Interval.String())
	scheduler.Start()

	<-ctx.Done()
	log.Info("stopping watch")
	if err := scheduler.Shutdown(); err != nil {
		log.WithError(err).Warn("failed to shut down scheduler")
	}

	if cause := context.Cause(ctx); cause != nil && apperrors.IsType(cause, apperrors.ErrorTypeAuth) {
		return cause
	}
	return nil
}
