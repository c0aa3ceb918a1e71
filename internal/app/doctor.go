package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/chapterdesk/internal/chapter"
	"github.com/blackwell-systems/chapterdesk/internal/config"
	"github.com/blackwell-systems/chapterdesk/internal/output"
	"github.com/blackwell-systems/chapterdesk/internal/session"
	"github.com/blackwell-systems/chapterdesk/internal/store"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check whether the chapterdesk setup is healthy",
	Long: `Run a series of health checks against your chapterdesk configuration,
database and seed store. Prints a pass/fail line for each check and a
summary of how many checks passed.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// doctorCheck holds the result of a single health check.
type doctorCheck struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// doctorOutput is the JSON-serializable result of the doctor command.
type doctorOutput struct {
	Checks      []doctorCheck `json:"checks"`
	PassedCount int           `json:"passed"`
	TotalCount  int           `json:"total"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	setupOutput()

	checks := collectDoctorChecks(cmd.Context(), cfg)

	passed := 0
	for _, c := range checks {
		if c.Passed {
			passed++
		}
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		return writeJSON(out, doctorOutput{Checks: checks, PassedCount: passed, TotalCount: len(checks)})
	}

	fmt.Fprintln(out, output.Section("Doctor"))
	fmt.Fprintln(out)
	for _, c := range checks {
		renderDoctorCheck(out, c)
	}
	fmt.Fprintln(out)
	summary := fmt.Sprintf("%d/%d checks passed", passed, len(checks))
	if passed == len(checks) {
		fmt.Fprintf(out, " %s\n\n", output.StyleSuccess.Render(summary))
	} else {
		fmt.Fprintf(out, " %s\n\n", output.StyleWarning.Render(summary))
	}
	return nil
}

// collectDoctorChecks runs every check in order. Checks that need the
// database report a failure when it could not be opened.
func collectDoctorChecks(ctx context.Context, cfg *config.Config) []doctorCheck {
	checks := []doctorCheck{checkConfigFile(flagConfig)}

	dbCheck, db := checkDatabase(ctx, cfg.DBPath)
	checks = append(checks, dbCheck)
	if db != nil {
		defer db.Close()
	}
	checks = append(checks,
		checkChapter(ctx, db, cfg.ChapterID),
		checkMembers(ctx, db, cfg.ChapterID),
		checkSeedStore(ctx, cfg),
		checkWatchDaemon(),
	)
	return checks
}

// renderDoctorCheck prints a single check result line.
func renderDoctorCheck(w io.Writer, c doctorCheck) {
	indicator := output.StyleSuccess.Render(checkMark())
	if !c.Passed {
		indicator = output.StyleWarning.Render("✗")
	}
	label := output.StyleBold.Render(c.Name)
	detail := output.StyleMuted.Render(c.Message)
	fmt.Fprintf(w, "  %s  %-30s %s\n", indicator, label, detail)
}

// checkConfigFile reports whether a config file is present. Without one
// every setting comes from defaults and CHAPTERDESK_* variables.
func checkConfigFile(path string) doctorCheck {
	if path == "" {
		path = filepath.Join(config.ConfigDir(), config.DefaultConfigFile)
	}
	if _, err := os.Stat(path); err != nil {
		return doctorCheck{
			Name:    "Config file",
			Passed:  false,
			Message: fmt.Sprintf("not found: %s (using defaults)", path),
		}
	}
	return doctorCheck{Name: "Config file", Passed: true, Message: path}
}

// checkDatabase opens the database and compares its schema version with
// the one this build migrates to. The returned DB is nil on failure.
func checkDatabase(ctx context.Context, path string) (doctorCheck, *store.DB) {
	db, err := store.Open(path)
	if err != nil {
		return doctorCheck{Name: "SQLite database", Passed: false, Message: err.Error()}, nil
	}
	version, err := db.SchemaVersion(ctx)
	if err != nil {
		_ = db.Close()
		return doctorCheck{Name: "SQLite database", Passed: false, Message: err.Error()}, nil
	}
	if version != store.CurrentSchemaVersion {
		return doctorCheck{
			Name:    "SQLite database",
			Passed:  false,
			Message: fmt.Sprintf("schema v%d, expected v%d", version, store.CurrentSchemaVersion),
		}, db
	}
	return doctorCheck{
		Name:    "SQLite database",
		Passed:  true,
		Message: fmt.Sprintf("%s (schema v%d)", path, version),
	}, db
}

// checkChapter verifies the selected chapter exists.
func checkChapter(ctx context.Context, db *store.DB, chapterID string) doctorCheck {
	switch {
	case chapterID == "":
		return doctorCheck{Name: "Chapter", Passed: false, Message: "no chapter_id configured"}
	case db == nil:
		return doctorCheck{Name: "Chapter", Passed: false, Message: "skipped (database unavailable)"}
	}
	c, err := db.GetChapter(ctx, chapterID)
	if errors.Is(err, chapter.ErrNotFound) {
		return doctorCheck{
			Name:    "Chapter",
			Passed:  false,
			Message: fmt.Sprintf("%s not found; run 'chapterdesk import'", chapterID),
		}
	}
	if err != nil {
		return doctorCheck{Name: "Chapter", Passed: false, Message: err.Error()}
	}
	return doctorCheck{Name: "Chapter", Passed: true, Message: fmt.Sprintf("%s (%s)", c.Name, c.ID)}
}

// checkMembers verifies at least one member has been imported.
func checkMembers(ctx context.Context, db *store.DB, chapterID string) doctorCheck {
	if db == nil || chapterID == "" {
		return doctorCheck{Name: "Members", Passed: false, Message: "skipped (no chapter)"}
	}
	n, err := db.CountMembers(ctx, store.MemberFilter{ChapterID: chapterID})
	if err != nil {
		return doctorCheck{Name: "Members", Passed: false, Message: err.Error()}
	}
	if n == 0 {
		return doctorCheck{Name: "Members", Passed: false, Message: "no members imported"}
	}
	return doctorCheck{Name: "Members", Passed: true, Message: fmt.Sprintf("%d members", n)}
}

// checkSeedStore pings Redis when one is configured.
func checkSeedStore(ctx context.Context, cfg *config.Config) doctorCheck {
	if cfg.Redis.Addr == "" {
		return doctorCheck{Name: "Seed store", Passed: true, Message: "in-memory (redis.addr not set)"}
	}
	rs, err := session.NewRedisStore(ctx, session.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TTL:      cfg.Session.TTL,
		Prefix:   cfg.Redis.Prefix,
	})
	if err != nil {
		return doctorCheck{Name: "Seed store", Passed: false, Message: err.Error()}
	}
	_ = rs.Close()
	return doctorCheck{Name: "Seed store", Passed: true, Message: "redis at " + cfg.Redis.Addr}
}

// checkWatchDaemon checks whether the watch daemon PID file exists and the
// process is running.
func checkWatchDaemon() doctorCheck {
	pid, err := readPID()
	if err != nil {
		return doctorCheck{Name: "Watch daemon", Passed: false, Message: "not running (no PID file)"}
	}
	if !processExists(pid) {
		return doctorCheck{
			Name:    "Watch daemon",
			Passed:  false,
			Message: fmt.Sprintf("PID %d is not running (stale PID file)", pid),
		}
	}
	return doctorCheck{Name: "Watch daemon", Passed: true, Message: fmt.Sprintf("running (PID %d)", pid)}
}
