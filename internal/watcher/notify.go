package watcher

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
)

// Notifier delivers alerts to a writer and, optionally, to the desktop.
type Notifier struct {
	// Out receives every alert at or above MinLevel. Defaults to stderr.
	Out io.Writer

	// Desktop also raises a system notification via osascript on macOS or
	// notify-send on Linux.
	Desktop bool

	// MinLevel drops alerts below this level. Empty means info.
	MinLevel string
}

// Send delivers an alert. Desktop failures are not reported; the alert has
// already been written to Out by then.
func (n *Notifier) Send(alert Alert) error {
	if levelRank(alert.Level) < levelRank(n.MinLevel) {
		return nil
	}
	out := n.Out
	if out == nil {
		out = os.Stderr
	}
	if _, err := fmt.Fprintf(out, "%s [%s] %s: %s\n",
		alert.Time.Format("15:04:05"), alert.Level, alert.Title, alert.Message); err != nil {
		return err
	}
	if n.Desktop {
		_ = desktopNotify(alert)
	}
	return nil
}

func levelRank(level string) int {
	switch level {
	case LevelCritical:
		return 2
	case LevelWarning:
		return 1
	default:
		return 0
	}
}

func desktopNotify(alert Alert) error {
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf(
			`display notification %q with title "chapterdesk" subtitle %q`,
			alert.Message, alert.Title,
		)
		return exec.Command("osascript", "-e", script).Run()
	case "linux":
		if _, err := exec.LookPath("notify-send"); err != nil {
			return err
		}
		return exec.Command("notify-send", "chapterdesk: "+alert.Title, alert.Message).Run()
	default:
		return fmt.Errorf("desktop notifications unsupported on %s", runtime.GOOS)
	}
}
