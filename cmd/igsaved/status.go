package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"igsaved/pkg/archive"
	"igsaved/pkg/ledger"
	"igsaved/pkg/storage"
	"igsaved/pkg/ui"
)

// statusCmd reports what has been exported so far
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what has been exported so far",
	Long: `Show the number of posts in the ledger, when it was last updated, what
the downloads folder contains and whether a backup archive exists.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, log, out := current.cfg, current.log, current.out

	led := ledger.Open(cfg.Output.LedgerFile, log)
	ui.PrintHighlight(out, "Ledger")
	ui.PrintInfo(out, "  File", led.Path())
	ui.PrintInfo(out, "  Downloaded posts", strconv.Itoa(led.Count()))
	if updated := led.LastUpdated(); !updated.IsZero() {
		ui.PrintInfo(out, "  Last updated", updated.Local().Format("2006-01-02 15:04:05"))
	} else {
		ui.PrintInfo(out, "  Last updated", "never")
	}

	stats, err := storage.OpenLayout(cfg.Output.Directory).Stats()
	if err != nil {
		return fmt.Errorf("failed to read downloads folder: %w", err)
	}
	fmt.Fprintln(out)
	ui.PrintHighlight(out, "Downloads")
	ui.PrintInfo(out, "  Folder", cfg.Output.Directory)
	ui.PrintInfo(out, "  Photos", strconv.Itoa(stats.Photos))
	ui.PrintInfo(out, "  Videos", strconv.Itoa(stats.Videos))
	ui.PrintInfo(out, "  Albums", strconv.Itoa(stats.Albums))
	ui.PrintInfo(out, "  Metadata files", strconv.Itoa(stats.Metadata))
	ui.PrintInfo(out, "  Total size", archive.FormatSize(stats.Bytes))

	fmt.Fprintln(out)
	ui.PrintHighlight(out, "Archives")
	root, err := filepath.Abs(cfg.Output.Directory)
	if err != nil {
		return err
	}
	for _, name := range []string{archive.BackupName, archive.MetadataName} {
		path := filepath.Join(filepath.Dir(root), name)
		info, err := os.Stat(path)
		if err != nil {
			ui.PrintInfo(out, "  "+name, "not created")
			continue
		}
		ui.PrintInfo(out, "  "+name, fmt.Sprintf("%s, %s", archive.FormatSize(info.Size()),
			info.ModTime().Local().Format("2006-01-02 15:04:05")))
	}
	return nil
}
