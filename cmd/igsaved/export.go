package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"igsaved/pkg/archive"
	"igsaved/pkg/config"
	apperrors "igsaved/pkg/errors"
	"igsaved/pkg/exporter"
	"igsaved/pkg/lister"
	"igsaved/pkg/logger"
	"igsaved/pkg/ui"
	"igsaved/pkg/ui/tui"
)

var (
	// Export command flags
	collectionID    string
	limit           int
	archiveMode     string
	checkpointEvery int
	noTUI           bool
)

// exportCmd runs a non-interactive export
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download new saved posts and archive them",
	Long: `Download every saved post that is not in the ledger yet, write its
metadata and refresh the ZIP backup.

Unlike running igsaved without a command, export never asks questions:
the collection and limit come from flags or configuration, and the session
must come from stored credentials, IGSAVED_SESSION_ID or --session-id.`,
	Example: `  # Export everything that is new
  igsaved export

  # Export the 20 newest posts of one collection without a ZIP
  igsaved export --collection 17890000000000000 --limit 20 --archive none

  # Plain progress output for logs and cron jobs
  igsaved export --no-tui`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd, exportOptions{noTUI: noTUI})
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	addExportFlags(exportCmd)

	rootCmd.Flags().BoolVar(&noTUI, "no-tui", false, "print plain progress lines instead of the full screen view")
	rootCmd.Flags().StringVar(&archiveMode, "archive", "", "archive to create after the run: full, metadata or none")
}

func addExportFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&collectionID, "collection", "", "collection ID to export (default: all saved posts)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "export at most this many posts (0 means all)")
	cmd.Flags().StringVar(&archiveMode, "archive", "", "archive to create after the run: full, metadata or none")
	cmd.Flags().IntVar(&checkpointEvery, "checkpoint-every", 0, "save the ledger after every N downloaded posts")
	cmd.Flags().BoolVar(&noTUI, "no-tui", false, "print plain progress lines instead of the full screen view")
}

type exportOptions struct {
	// interactive prompts for the session, collection and limit
	interactive bool
	noTUI       bool
}

func runExport(cmd *cobra.Command, opts exportOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, log, out := current.cfg, current.log, current.out
	p := newPrompter(os.Stdin, out)
	if opts.interactive {
		ui.PrintBanner(out)
	}

	session, err := resolveSession(cfg, log, p, opts.interactive)
	if err != nil {
		return err
	}

	client := newClient(cfg, log)
	req := exporter.Request{
		SessionID:    session,
		CollectionID: cfg.Download.Collection,
		Limit:        cfg.Download.Limit,
		Archive:      cfg.Output.ArchiveMode,
	}

	if opts.interactive {
		fmt.Fprintln(out, "\n🔐 Logging in to Instagram...")
		user, err := client.Login(ctx, session)
		if err != nil {
			return apperrors.Auth("login failed; check your session ID and try again", err)
		}
		ui.PrintSuccess(out, fmt.Sprintf("✅ Successfully logged in as @%s", user.Username))

		fmt.Fprintln(out, "\n📂 Fetching your collections...")
		collections, err := lister.New(client, log).ListCollections(ctx)
		if err != nil {
			log.WithError(err).Warn("failed to list collections")
			collections = nil
		}

		id, name, err := p.collection(collections)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\n📊 Selected: %s\n", name)
		req.CollectionID = id

		if req.Limit, err = p.limit(); err != nil {
			return err
		}
	}

	exp := exporter.New(client, exporter.Options{
		OutputDir:       cfg.Output.Directory,
		LedgerPath:      cfg.Output.LedgerFile,
		CheckpointEvery: cfg.Download.CheckpointEvery,
	}, log, exporter.WithReporter(current.reporter))

	notifier := ui.NewNotifier(cfg.Notifications, out)
	summary, runErr := runWithProgress(ctx, exp, req, opts.noTUI)
	if runErr != nil {
		notifier.NotifyRun(nil, runErr)
		return runErr
	}

	ui.PrintSummary(out, summary, cfg.Output.Directory)

	if opts.interactive && summary != nil && summary.UpToDate &&
		p.confirm("\n📦 Create ZIP backup anyway?") {
		if path, err := createArchive(cfg.Output.Directory, cfg.Output.ArchiveMode, log); err != nil {
			ui.PrintError(out, "❌ Failed to create ZIP backup", err)
		} else {
			ui.PrintSuccess(out, "✅ ZIP backup created: "+path)
		}
	}

	notifier.NotifyRun(summary, nil)
	if opts.interactive && summary != nil && !summary.Cancelled {
		fmt.Fprintln(out, "\n🎉 Download complete!")
	}
	return nil
}

// runWithProgress starts exp and shows its events until the run finishes.
// The full screen view is used only when stdout is a terminal.
func runWithProgress(ctx context.Context, exp *exporter.Exporter, req exporter.Request, plain bool) (*exporter.Summary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := exp.Start(ctx, req)

	if plain || verbose || !term.IsTerminal(int(os.Stdout.Fd())) {
		return ui.NewProgressDisplay(current.out, verbose).Consume(events)
	}

	outcome, err := tui.Run(events, cancel)
	if err != nil {
		current.log.WithError(err).Warn("progress view failed")
		if outcome.Summary == nil && outcome.Err == nil {
			return nil, err
		}
	}
	return outcome.Summary, outcome.Err
}

// createArchive builds the archive for mode. Mode none still builds a full
// backup, since the caller asked for one explicitly.
func createArchive(root, mode string, log logger.Logger) (string, error) {
	a := archive.New(log)
	if mode == config.ArchiveMetadata {
		return a.CreateMetadataOnly(root)
	}
	return a.CreateBackup(root)
}
