package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/chapterdesk/internal/config"
	"github.com/blackwell-systems/chapterdesk/internal/output"
	"github.com/blackwell-systems/chapterdesk/internal/watcher"
)

// minWatchInterval keeps the watcher from hammering the database.
const minWatchInterval = 30 * time.Second

var (
	watchDaemon   bool
	watchInterval string
	watchStop     bool
	watchQuiet    bool
	watchNotify   bool
	watchMinLevel string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Monitor the chapter and alert on dues, budget and backlog changes",
	Long: `Run a monitor that periodically snapshots the chapter and compares it with
the previous snapshot. Alerts are raised when members become overdue on
dues, an event crosses its budget, the pending connection backlog grows,
or the collection rate drops. Identical alerts are not repeated until the
underlying data changes.

Examples:
  chapterdesk watch                      # run in foreground (ctrl-c to stop)
  chapterdesk watch --interval 1m        # check every minute
  chapterdesk watch --notify             # also raise desktop notifications
  chapterdesk watch --daemon             # background mode, write PID file
  chapterdesk watch --stop               # stop the background daemon`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "Run in background mode (write PID file, log to file)")
	watchCmd.Flags().StringVar(&watchInterval, "interval", "", "Check interval as duration string (default: watch.interval)")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "Stop a running background daemon")
	watchCmd.Flags().BoolVar(&watchQuiet, "quiet", false, "Suppress terminal output, only send notifications")
	watchCmd.Flags().BoolVar(&watchNotify, "notify", false, "Raise desktop notifications (default: watch.notify)")
	watchCmd.Flags().StringVar(&watchMinLevel, "min-level", watcher.LevelInfo, "Lowest alert level to report (info, warning, critical)")
	rootCmd.AddCommand(watchCmd)
}

// pidFilePath returns the path to the daemon PID file.
func pidFilePath() string {
	return filepath.Join(config.ConfigDir(), "watch.pid")
}

// logFilePath returns the path to the daemon log file.
func logFilePath() string {
	return filepath.Join(config.ConfigDir(), "watch.log")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchStop {
		return stopDaemon(cmd.OutOrStdout())
	}
	if _, ok := levelRanks[watchMinLevel]; !ok {
		return fmt.Errorf("unknown alert level %q (want info, warning or critical)", watchMinLevel)
	}

	e, err := openEnv(cmd, true)
	if err != nil {
		return err
	}
	defer e.Close()

	interval := e.cfg.Watch.Interval
	if watchInterval != "" {
		interval, err = time.ParseDuration(watchInterval)
		if err != nil {
			return fmt.Errorf("invalid interval %q: %w", watchInterval, err)
		}
	}
	if interval < minWatchInterval {
		return fmt.Errorf("interval must be at least %s, got %s", minWatchInterval, interval)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), shutdownSignals...)
	defer stop()

	desktop := e.cfg.Watch.Notify || watchNotify
	newWatcher := func(alertFn func(watcher.Alert)) *watcher.Watcher {
		w := watcher.New(e.db, e.chapterID, interval, alertFn)
		w.GraceDays = e.cfg.Dues.OverdueGraceDays
		return w
	}

	if watchDaemon {
		return runDaemon(ctx, newWatcher, desktop, interval)
	}
	return runForeground(ctx, e.out, newWatcher, desktop, interval)
}

// runForeground runs the watcher in the foreground with live terminal output.
func runForeground(ctx context.Context, out io.Writer, newWatcher func(func(watcher.Alert)) *watcher.Watcher, desktop bool, interval time.Duration) error {
	// Terminal output is styled here; the notifier only handles the desktop.
	n := &watcher.Notifier{Out: io.Discard, Desktop: desktop, MinLevel: watchMinLevel}
	w := newWatcher(func(a watcher.Alert) {
		if !watchQuiet && levelAtLeast(a.Level, watchMinLevel) {
			printAlert(out, a)
		}
		_ = n.Send(a)
	})

	initial, err := w.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("initial snapshot failed: %w", err)
	}
	if !watchQuiet {
		fmt.Fprintf(out, "chapterdesk watching... (checking every %s)\n", interval)
		overdue := 0
		for _, c := range initial.Cycles {
			overdue += len(c.Overdue)
		}
		fmt.Fprintf(out, "[%s] %s Baseline: %d open cycles, %d overdue, %d pending connections\n",
			initial.Timestamp.Format("15:04:05"), checkMark(),
			len(initial.Cycles), overdue, initial.PendingConnections)
	}

	err = w.Run(ctx)
	if errors.Is(err, context.Canceled) {
		if !watchQuiet {
			fmt.Fprintln(out, "\nStopped.")
		}
		return nil
	}
	return err
}

// runDaemon sets up PID and log files, then runs the watcher. The actual
// backgrounding should be done by the caller (nohup, &, etc.) since Go
// cannot reliably fork.
func runDaemon(ctx context.Context, newWatcher func(func(watcher.Alert)) *watcher.Watcher, desktop bool, interval time.Duration) error {
	if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	if pid, err := readPID(); err == nil {
		if processExists(pid) {
			return fmt.Errorf("daemon already running (PID %d). Use --stop to stop it", pid)
		}
		_ = os.Remove(pidFilePath())
	}

	pid := os.Getpid()
	if err := os.WriteFile(pidFilePath(), []byte(strconv.Itoa(pid)), 0o644); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer func() { _ = os.Remove(pidFilePath()) }()

	logFile, err := os.OpenFile(logFilePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()

	n := &watcher.Notifier{Out: logFile, Desktop: desktop, MinLevel: watchMinLevel}
	w := newWatcher(func(a watcher.Alert) { _ = n.Send(a) })

	writeLog(logFile, "chapterdesk daemon started (PID %d, interval %s)", pid, interval)
	err = w.Run(ctx)
	if errors.Is(err, context.Canceled) {
		writeLog(logFile, "daemon stopped")
		return nil
	}
	return err
}

// readPID reads the daemon PID from the PID file.
func readPID() (int, error) {
	data, err := os.ReadFile(pidFilePath())
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

// writeLog writes a timestamped line to the log file.
func writeLog(f io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	_, _ = fmt.Fprintf(f, "[%s] %s\n", timestamp, msg)
}

// printAlert formats and prints an alert to the terminal.
func printAlert(w io.Writer, a watcher.Alert) {
	timestamp := a.Time.Format("15:04:05")
	fmt.Fprintf(w, "[%s] %s %s\n", timestamp, alertIcon(a.Level), a.Title)
	if a.Message != "" {
		fmt.Fprintf(w, "         %s\n", output.StyleMuted.Render(a.Message))
	}
}

var levelRanks = map[string]int{watcher.LevelInfo: 0, watcher.LevelWarning: 1, watcher.LevelCritical: 2}

func levelAtLeast(level, floor string) bool {
	return levelRanks[level] >= levelRanks[floor]
}

// alertIcon returns the terminal indicator for an alert level.
func alertIcon(level string) string {
	switch level {
	case watcher.LevelCritical:
		return output.StyleError.Render("●")
	case watcher.LevelWarning:
		return output.StyleWarning.Render("▲")
	case watcher.LevelInfo:
		return output.StyleSuccess.Render(checkMark())
	default:
		return " "
	}
}

// checkMark returns a terminal check mark indicator.
func checkMark() string {
	return "✓"
}
