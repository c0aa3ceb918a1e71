// Package app contains the Cobra command tree for chapterdesk.
package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
	flagDB      string
	flagChapter string
)

var rootCmd = &cobra.Command{
	Use:   "chapterdesk",
	Short: "Dashboards and action items for student chapter officers",
	Long: `chapterdesk keeps a chapter's members, events, dues and social feed in a
local database, ranks the networking spotlight, and turns budget and dues
analytics into action items for each officer.

Run 'chapterdesk' with no arguments to see a quick dashboard summary.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runDashboard,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/chapterdesk/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (overrides db_path)")
	rootCmd.PersistentFlags().StringVar(&flagChapter, "chapter", "", "Chapter ID (overrides chapter_id)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose output")
}
