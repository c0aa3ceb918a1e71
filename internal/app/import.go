package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/chapterdesk/internal/chapter"
	"github.com/blackwell-systems/chapterdesk/internal/output"
)

var importCmd = &cobra.Command{
	Use:   "import <fixture.json>",
	Short: "Load a chapter export into the local database",
	Long: `Import a JSON export of one chapter: members, connections, events, vendors,
dues cycles and assignments, posts and announcements. The whole file is
loaded in one transaction; re-importing the same file updates records in
place.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := chapter.LoadFixture(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	e, err := openEnv(cmd, false)
	if err != nil {
		return err
	}
	defer e.Close()

	stats, err := e.db.ImportFixture(cmd.Context(), f)
	if err != nil {
		return fmt.Errorf("importing %s: %w", args[0], err)
	}
	e.log.Info("chapter imported", "chapter_id", f.Chapter.ID, "members", stats.Members)

	if flagJSON {
		return writeJSON(e.out, struct {
			ChapterID string `json:"chapter_id"`
			Stats     any    `json:"stats"`
		}{f.Chapter.ID, stats})
	}

	fmt.Fprintln(e.out, output.Section("Imported "+f.Chapter.Name))
	fmt.Fprintln(e.out)
	tbl := output.NewTable("Records", "Count")
	tbl.AddRow("Members", fmt.Sprint(stats.Members))
	tbl.AddRow("Connections", fmt.Sprint(stats.Connections))
	tbl.AddRow("Events", fmt.Sprint(stats.Events))
	tbl.AddRow("Vendors", fmt.Sprint(stats.Vendors))
	tbl.AddRow("Dues cycles", fmt.Sprint(stats.DuesCycles))
	tbl.AddRow("Dues assignments", fmt.Sprint(stats.DuesAssignments))
	tbl.AddRow("Posts", fmt.Sprint(stats.Posts))
	tbl.AddRow("Announcements", fmt.Sprint(stats.Announcements))
	tbl.Print(e.out)
	if e.chapterID == "" {
		fmt.Fprintln(e.out)
		fmt.Fprintln(e.out, output.StyleMuted.Render(" Set chapter_id: "+f.Chapter.ID+" or pass --chapter "+f.Chapter.ID+" to use it."))
	}
	return nil
}
