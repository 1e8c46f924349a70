package ui

import (
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"

	"igsaved/pkg/config"
	"igsaved/pkg/exporter"
)

// NotificationSender interface for platform-specific notification implementations
type NotificationSender interface {
	Send(title, message string) error
}

// LinuxNotificationSender sends notifications on Linux using notify-send
type LinuxNotificationSender struct{}

func (l *LinuxNotificationSender) Send(title, message string) error {
	return exec.Command("notify-send", title, message).Run()
}

// MacOSNotificationSender sends notifications on macOS using osascript
type MacOSNotificationSender struct{}

func (m *MacOSNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`display notification %q with title %q`, message, title)
	return exec.Command("osascript", "-e", script).Run()
}

// WindowsNotificationSender sends notifications on Windows using PowerShell
type WindowsNotificationSender struct{}

func (w *WindowsNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`
		[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] | Out-Null
		[Windows.Data.Xml.Dom.XmlDocument, Windows.Data.Xml.Dom.XmlDocument, ContentType = WindowsRuntime] | Out-Null
		$xml = @"
<toast>
	<visual>
		<binding template="ToastText02">
			<text id="1">%s</text>
			<text id="2">%s</text>
		</binding>
	</visual>
</toast>
"@
		$doc = [Windows.Data.Xml.Dom.XmlDocument]::new()
		$doc.LoadXml($xml)
		$toast = [Windows.UI.Notifications.ToastNotification]::new($doc)
		[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier("igsaved").Show($toast)
	`, title, message)

	return exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", script).Run()
}

// Notifier announces finished runs on the terminal and, optionally, the desktop
type Notifier struct {
	out    io.Writer
	sender NotificationSender
}

// NewNotifier creates a Notifier from cfg. A disabled config or type "none"
// yields a Notifier that stays silent.
func NewNotifier(cfg config.NotificationConfig, out io.Writer) *Notifier {
	if !cfg.Enabled || strings.EqualFold(cfg.NotificationType, "none") {
		return &Notifier{}
	}

	n := &Notifier{out: out}
	if strings.EqualFold(cfg.NotificationType, "desktop") {
		n.sender = platformSender()
	}
	return n
}

// NewNotifierWithSender creates a Notifier using sender for desktop alerts
func NewNotifierWithSender(out io.Writer, sender NotificationSender) *Notifier {
	return &Notifier{out: out, sender: sender}
}

func platformSender() NotificationSender {
	switch runtime.GOOS {
	case "linux":
		return &LinuxNotificationSender{}
	case "darwin":
		return &MacOSNotificationSender{}
	case "windows":
		return &WindowsNotificationSender{}
	default:
		return nil
	}
}

// NotifyRun announces the outcome of an export
func (n *Notifier) NotifyRun(s *exporter.Summary, runErr error) {
	switch {
	case runErr != nil:
		n.send("igsaved: export failed", runErr.Error(), Red)
	case s == nil:
		return
	case s.Successful == 0 && s.Failed == 0:
		n.send("igsaved", "no new saved posts", Cyan)
	case s.Failed > 0:
		n.send("igsaved: export finished with failures",
			fmt.Sprintf("%d saved, %d failed", s.Successful, s.Failed), Yellow)
	default:
		n.send("igsaved: export finished", fmt.Sprintf("%d new posts saved", s.Successful), Green)
	}
}

func (n *Notifier) send(title, message string, color func(string) string) {
	if n.out != nil {
		fmt.Fprintf(n.out, "\n%s: %s\n", color(title), message)
	}
	if n.sender != nil {
		_ = n.sender.Send(title, message)
	}
}
