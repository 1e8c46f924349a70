package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"igsaved/pkg/archive"
	"igsaved/pkg/exporter"
)

// PrintSummary prints the end-of-run report. It is printed for every run
// that got past login, whatever the failures.
func PrintSummary(w io.Writer, s *exporter.Summary, outputDir string) {
	if s == nil {
		return
	}
	line := strings.Repeat("=", 60)

	switch {
	case s.NoPosts:
		PrintWarning(w, "⚠️  No posts found or unable to fetch posts.")
		return
	case s.UpToDate:
		PrintSuccess(w, "✅ All saved posts are already downloaded!")
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, line)
	fmt.Fprintln(w, "📊 Download Summary")
	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "✅ Successfully downloaded: %d\n", s.Successful)
	fmt.Fprintf(w, "❌ Failed: %d\n", s.Failed)
	fmt.Fprintf(w, "⏭  Already downloaded: %d\n", s.Skipped)
	fmt.Fprintf(w, "📁 Total attempted: %d\n", s.Total)
	fmt.Fprintln(w, line)

	if s.LedgerErr != nil {
		PrintWarning(w, "⚠️  Could not save download history; these posts may be fetched again", s.LedgerErr)
	}

	switch {
	case s.Cancelled:
		PrintWarning(w, "\n⚠️  Export stopped early; run again to continue. No archive was created.")
	case s.ArchiveErr != nil:
		PrintError(w, "\n❌ Failed to create ZIP backup", s.ArchiveErr)
	case s.ArchivePath != "":
		PrintSuccess(w, fmt.Sprintf("\n📦 ZIP backup created: %s (%s)", s.ArchivePath, archive.FormatSize(s.ArchiveSize)))
	}

	if outputDir != "" {
		fmt.Fprintf(w, "📂 Downloads saved to: %s\n", outputDir)
	}
	fmt.Fprintln(w, Dim(fmt.Sprintf("run %s finished in %s", s.RunID, s.Duration.Round(time.Millisecond))))
}
