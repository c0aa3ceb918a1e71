package app

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/chapterdesk/internal/config"
	"github.com/blackwell-systems/chapterdesk/internal/logging"
	"github.com/blackwell-systems/chapterdesk/internal/output"
	"github.com/blackwell-systems/chapterdesk/internal/store"
)

// nowFunc is the clock every command reads; tests pin it.
var nowFunc = time.Now

// env is what most commands need: config, logger, an open store and the
// chapter being worked on.
type env struct {
	cfg       *config.Config
	log       *slog.Logger
	db        *store.DB
	chapterID string
	out       io.Writer
}

// loadConfig loads config and applies the --db and --chapter overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if flagDB != "" {
		cfg.DBPath = flagDB
	}
	if flagChapter != "" {
		cfg.ChapterID = flagChapter
	}
	return cfg, nil
}

// setupOutput turns color off for --no-color or when stdout is not a terminal.
func setupOutput() {
	fd := os.Stdout.Fd()
	if flagNoColor || !(isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)) {
		output.SetNoColor(true)
	}
}

// openEnv loads config, builds the logger and opens the database. The
// caller closes env.db. When needChapter is set a chapter ID is required.
func openEnv(cmd *cobra.Command, needChapter bool) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	setupOutput()

	log, err := logging.New(cmd.ErrOrStderr(), flagVerbose, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	if needChapter && cfg.ChapterID == "" {
		return nil, fmt.Errorf("no chapter selected: pass --chapter or set chapter_id")
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	log.Debug("database opened", "path", cfg.DBPath)

	return &env{cfg: cfg, log: log, db: db, chapterID: cfg.ChapterID, out: cmd.OutOrStdout()}, nil
}

func (e *env) Close() {
	_ = e.db.Close()
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
