package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"igsaved/pkg/exporter"
)

// ProgressDisplay prints export events as a single updating progress line
// plus one line per stage and failure
type ProgressDisplay struct {
	out       io.Writer
	verbose   bool
	total     int
	completed int
	failed    int
	current   string
	startTime time.Time
}

// NewProgressDisplay creates a display writing to out. Verbose mode prints a
// line per post instead of redrawing one line.
func NewProgressDisplay(out io.Writer, verbose bool) *ProgressDisplay {
	return &ProgressDisplay{
		out:       out,
		verbose:   verbose,
		startTime: time.Now(),
	}
}

// Consume prints events until the channel closes and returns the summary and
// fatal error carried by the final event
func (p *ProgressDisplay) Consume(events <-chan exporter.Event) (*exporter.Summary, error) {
	var (
		summary *exporter.Summary
		runErr  error
	)
	for ev := range events {
		if ev.Kind == exporter.EventFinished {
			summary, runErr = ev.Summary, ev.Err
		}
		p.Handle(ev)
	}
	return summary, runErr
}

// Handle prints a single event
func (p *ProgressDisplay) Handle(ev exporter.Event) {
	switch ev.Kind {
	case exporter.EventStage:
		p.endLine()
		fmt.Fprintf(p.out, "%s %s\n", Magenta("→"), ev.Message)

	case exporter.EventWarning:
		p.endLine()
		msg := ev.Message
		if ev.Err != nil {
			msg += ": " + ev.Err.Error()
		}
		fmt.Fprintf(p.out, "%s %s\n", Yellow("⚠"), msg)

	case exporter.EventPostStarted:
		p.total = ev.Total
		p.current = fmt.Sprintf("%s from @%s", ev.Media, ev.Owner)
		if !p.verbose {
			p.printProgress()
		}

	case exporter.EventPostDone:
		p.total = ev.Total
		p.completed++
		p.current = ""
		if p.verbose {
			fmt.Fprintf(p.out, "%s [%d/%d] %s %s from @%s\n", Green("✓"), ev.Index, ev.Total, ev.Media, ev.PostID, ev.Owner)
		} else {
			p.printProgress()
		}

	case exporter.EventPostFailed:
		p.total = ev.Total
		p.failed++
		p.current = ""
		p.endLine()
		fmt.Fprintf(p.out, "%s [%d/%d] %s from @%s: %v\n", Red("✗"), ev.Index, ev.Total, ev.PostID, ev.Owner, ev.Err)

	case exporter.EventFinished:
		p.endLine()
	}
}

// printProgress redraws the progress line
func (p *ProgressDisplay) printProgress() {
	done := p.completed + p.failed
	progress := 0.0
	if p.total > 0 {
		progress = float64(done) / float64(p.total)
	}

	const barWidth = 20
	filled := int(progress * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}
	bar := strings.Repeat("━", filled) + strings.Repeat("─", barWidth-filled)

	line := fmt.Sprintf("[%s] %d/%d • %s", bar, done, p.total, p.formatDuration(time.Since(p.startTime)))
	if p.current != "" {
		line += " • " + p.current
	}
	if p.failed > 0 {
		line += " • " + Red(fmt.Sprintf("%d failed", p.failed))
	}

	fmt.Fprintf(p.out, "\r%s\r%s", strings.Repeat(" ", 100), line)
}

// endLine moves past the redrawn progress line, if one is showing
func (p *ProgressDisplay) endLine() {
	if !p.verbose && p.completed+p.failed+len(p.current) > 0 {
		fmt.Fprintln(p.out)
	}
}

// formatDuration formats a duration in a human-readable way
func (p *ProgressDisplay) formatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
