package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/chapterdesk/internal/chapter"
	"github.com/blackwell-systems/chapterdesk/internal/output"
	"github.com/blackwell-systems/chapterdesk/internal/spotlight"
	"github.com/blackwell-systems/chapterdesk/internal/store"
)

var (
	membersRole  string
	membersQuery string
	membersPage  int
	membersLimit int
)

var membersCmd = &cobra.Command{
	Use:   "members",
	Short: "List and search chapter members",
	Long: `List the chapter's members ordered by name, optionally filtered by role
or a search term matched against name, company, industry and headline.

Examples:
  chapterdesk members --role alumni
  chapterdesk members --query globex --limit 5`,
	RunE: runMembers,
}

func init() {
	membersCmd.Flags().StringVar(&membersRole, "role", "", "Filter by role (alumni, active_member, admin, other)")
	membersCmd.Flags().StringVarP(&membersQuery, "query", "q", "", "Search term")
	membersCmd.Flags().IntVar(&membersPage, "page", 1, "Page number")
	membersCmd.Flags().IntVar(&membersLimit, "limit", 0, "Page size (default: pagination.default_limit)")
	rootCmd.AddCommand(membersCmd)
}

func runMembers(cmd *cobra.Command, args []string) error {
	f := store.MemberFilter{Query: membersQuery}
	if membersRole != "" {
		role, err := chapter.ParseRole(membersRole)
		if err != nil {
			return err
		}
		f.Role = role
	}

	e, err := openEnv(cmd, true)
	if err != nil {
		return err
	}
	defer e.Close()
	f.ChapterID = e.chapterID

	p := chapter.Page{Number: membersPage, Limit: membersLimit}.
		Normalize(e.cfg.Pagination.DefaultLimit, e.cfg.Pagination.MaxLimit)
	res, err := e.db.ListMembers(cmd.Context(), f, p)
	if err != nil {
		return fmt.Errorf("listing members: %w", err)
	}

	if flagJSON {
		return writeJSON(e.out, res)
	}

	fmt.Fprintln(e.out, output.Section("Members"))
	fmt.Fprintln(e.out)
	if len(res.Items) == 0 {
		fmt.Fprintln(e.out, " No members match.")
		return nil
	}
	tbl := output.NewTable("ID", "Name", "Role", "Company", "Profile")
	for _, m := range res.Items {
		tbl.AddRow(m.ID, m.FullName, string(m.Role), m.Company,
			fmt.Sprintf("%.0f%%", spotlight.Completeness(m)*100))
	}
	tbl.Print(e.out)
	fmt.Fprintln(e.out)
	footer := fmt.Sprintf(" Page %d, showing %d of %d", res.Page, len(res.Items), res.Total)
	if res.HasMore {
		footer += fmt.Sprintf(" (next: --page %d)", res.Page+1)
	}
	fmt.Fprintln(e.out, output.StyleMuted.Render(footer))
	return nil
}
