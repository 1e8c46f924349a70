package main

import (
	"os"

	"github.com/spf13/cobra"

	"igsaved/pkg/archive"
	"igsaved/pkg/config"
	"igsaved/pkg/ui"
)

var metadataOnly bool

// archiveCmd rebuilds the archive from what is already on disk
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Create a ZIP backup of the downloads folder",
	Long: `Create a ZIP backup of everything already downloaded, without contacting
Instagram. The archive is written next to the downloads folder and replaces
any previous one.`,
	Example: `  # Full backup
  igsaved archive

  # Only the metadata JSON files
  igsaved archive --metadata-only`,
	Args: cobra.NoArgs,
	RunE: runArchive,
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	archiveCmd.Flags().BoolVar(&metadataOnly, "metadata-only", false, "archive only the metadata JSON files")
}

func runArchive(cmd *cobra.Command, args []string) error {
	cfg, log, out := current.cfg, current.log, current.out

	mode := config.ArchiveFull
	if metadataOnly {
		mode = config.ArchiveMetadata
	}

	path, err := createArchive(cfg.Output.Directory, mode, log)
	if err != nil {
		return err
	}

	size := "unknown size"
	if info, err := os.Stat(path); err == nil {
		size = archive.FormatSize(info.Size())
	}
	ui.PrintSuccess(out, "📦 ZIP backup created: "+path+" ("+size+")")
	return nil
}
