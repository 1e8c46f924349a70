package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"igsaved/pkg/exporter"
)

// PostState is where a post stands in the download loop
type PostState int

const (
	PostActive PostState = iota
	PostCompleted
	PostFailed
)

// PostItem is a post shown in the activity panels
type PostItem struct {
	ID    string
	Owner string
	Media string
	State PostState
	Err   error
}

// LogMessage represents a log entry
type LogMessage struct {
	Time    time.Time
	Level   string
	Message string
	Color   lipgloss.Color
}

// Model renders the progress of one export run
type Model struct {
	spinner  spinner.Model
	progress progress.Model

	events <-chan exporter.Event
	cancel context.CancelFunc

	stage     exporter.Stage
	username  string
	total     int
	completed int
	failed    int
	skipped   int
	current   *PostItem
	recent    []PostItem
	maxRecent int

	logMessages    []LogMessage
	maxLogMessages int

	startTime  time.Time
	cancelling bool
	finished   bool
	summary    *exporter.Summary
	runErr     error

	width    int
	height   int
	showHelp bool
}

// NewModel creates a model reading events; cancel is invoked when the user
// quits before the run has finished
func NewModel(events <-chan exporter.Event, cancel context.CancelFunc) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(pink)

	p := progress.New(progress.WithDefaultGradient())
	p.Width = 40

	return &Model{
		spinner:        s,
		progress:       p,
		events:         events,
		cancel:         cancel,
		stage:          exporter.StageIdle,
		maxRecent:      6,
		maxLogMessages: 50,
		startTime:      time.Now(),
	}
}

// Init starts the spinner and the event pump
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.events))
}

// Summary returns the run summary once the run has finished
func (m *Model) Summary() *exporter.Summary {
	return m.summary
}

// Err returns the fatal run error, if any
func (m *Model) Err() error {
	return m.runErr
}

// Finished reports whether the run has ended
func (m *Model) Finished() bool {
	return m.finished
}

// Cancelling reports whether the user asked to stop
func (m *Model) Cancelling() bool {
	return m.cancelling
}

// AddLogMessage adds a log message
func (m *Model) AddLogMessage(level, message string) {
	color := muted
	switch level {
	case "ERROR":
		color = red
	case "WARN":
		color = orange
	case "SUCCESS":
		color = green
	case "INFO":
		color = pink
	}

	m.logMessages = append(m.logMessages, LogMessage{
		Time:    time.Now(),
		Level:   level,
		Message: message,
		Color:   color,
	})

	if len(m.logMessages) > m.maxLogMessages {
		m.logMessages = m.logMessages[len(m.logMessages)-m.maxLogMessages:]
	}
}

// handleEvent folds one exporter event into the model
func (m *Model) handleEvent(ev exporter.Event) {
	switch ev.Kind {
	case exporter.EventStage:
		m.stage = ev.Stage
		m.AddLogMessage("INFO", ev.Message)

	case exporter.EventWarning:
		msg := ev.Message
		if ev.Err != nil {
			msg += ": " + ev.Err.Error()
		}
		m.AddLogMessage("WARN", msg)

	case exporter.EventPostStarted:
		m.total = ev.Total
		m.current = &PostItem{ID: ev.PostID, Owner: ev.Owner, Media: ev.Media, State: PostActive}

	case exporter.EventPostDone, exporter.EventPostFailed:
		m.total = ev.Total
		item := PostItem{ID: ev.PostID, Owner: ev.Owner, Media: ev.Media, State: PostCompleted}
		if ev.Kind == exporter.EventPostFailed {
			item.State = PostFailed
			item.Err = ev.Err
			m.failed++
			m.AddLogMessage("ERROR", fmt.Sprintf("%s from @%s failed", ev.PostID, ev.Owner))
		} else {
			m.completed++
		}
		m.current = nil
		m.recent = append(m.recent, item)
		if len(m.recent) > m.maxRecent {
			m.recent = m.recent[len(m.recent)-m.maxRecent:]
		}

	case exporter.EventFinished:
		m.stage = ev.Stage
		m.finished = true
		m.summary = ev.Summary
		m.runErr = ev.Err
		if ev.Summary != nil {
			m.username = ev.Summary.Username
			m.skipped = ev.Summary.Skipped
		}
		if ev.Err != nil {
			m.AddLogMessage("ERROR", ev.Err.Error())
		} else {
			m.AddLogMessage("SUCCESS", "export finished")
		}
	}
}

// Processed is the number of posts attempted so far
func (m *Model) Processed() int {
	return m.completed + m.failed
}

// Percent is the share of the work set attempted, between 0 and 1
func (m *Model) Percent() float64 {
	if m.total == 0 {
		return 0
	}
	p := float64(m.Processed()) / float64(m.total)
	if p > 1 {
		p = 1
	}
	return p
}

// ETA estimates the time left from the average time per post so far
func (m *Model) ETA() time.Duration {
	done := m.Processed()
	if done == 0 || m.total <= done {
		return 0
	}
	perPost := time.Since(m.startTime) / time.Duration(done)
	return perPost * time.Duration(m.total-done)
}
