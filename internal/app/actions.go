package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/chapterdesk/internal/dashboard"
	"github.com/blackwell-systems/chapterdesk/internal/output"
	"github.com/blackwell-systems/chapterdesk/internal/suggest"
)

var (
	actionsRole     string
	actionsLimit    int
	actionsCategory string
)

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "Show ranked action items for an officer",
	Long: `Analyze dues, budget, events, membership and feed activity to produce
action items, ranked by impact. The president sees every item; other
officers see the categories they own.

Examples:
  chapterdesk actions --role treasurer
  chapterdesk actions --role vp --limit 3`,
	RunE: runActions,
}

func init() {
	actionsCmd.Flags().StringVar(&actionsRole, "role", string(suggest.President), "Officer role (president, vp, treasurer, social_chair)")
	actionsCmd.Flags().IntVar(&actionsLimit, "limit", 10, "Maximum number of action items to show")
	actionsCmd.Flags().StringVar(&actionsCategory, "category", "", "Filter by category (dues, budget, events, membership, engagement)")
	rootCmd.AddCommand(actionsCmd)
}

func runActions(cmd *cobra.Command, args []string) error {
	role, err := suggest.ParseOfficer(actionsRole)
	if err != nil {
		return err
	}

	e, err := openEnv(cmd, true)
	if err != nil {
		return err
	}
	defer e.Close()

	cc, err := dashboard.Build(cmd.Context(), e.db, e.chapterID, nowFunc(), e.cfg.Dues.OverdueGraceDays)
	if err != nil {
		return fmt.Errorf("building chapter context: %w", err)
	}

	actions := suggest.ForRole(suggest.NewEngine().Run(cc), role)
	if actionsCategory != "" {
		actions = filterByCategory(actions, actionsCategory)
	}
	if actionsLimit > 0 && len(actions) > actionsLimit {
		actions = actions[:actionsLimit]
	}

	if flagJSON {
		return writeJSON(e.out, actions)
	}
	renderActions(e.out, role, actions)
	return nil
}

func filterByCategory(actions []suggest.Suggestion, category string) []suggest.Suggestion {
	category = strings.ToLower(strings.TrimSpace(category))
	out := []suggest.Suggestion{}
	for _, s := range actions {
		if s.Category == category {
			out = append(out, s)
		}
	}
	return out
}

func renderActions(w io.Writer, role suggest.Officer, actions []suggest.Suggestion) {
	title := "Action Items: " + roleLabel(role)
	if len(actions) == 0 {
		fmt.Fprintln(w, output.Section(title))
		fmt.Fprintln(w)
		fmt.Fprintln(w, " Nothing needs attention right now.")
		return
	}

	fmt.Fprintln(w, output.Section(title))
	fmt.Fprintln(w)

	for i, s := range actions {
		label := priorityToLabel(s.Priority)
		fmt.Fprintf(w, " #%d %s %s\n", i+1, stylePriority(s.Priority, label), output.StyleBold.Render(s.Title))
		fmt.Fprintf(w, "    Impact: %.1f  |  Category: %s\n", s.ImpactScore, s.Category)
		fmt.Fprintf(w, "    %s\n", s.Description)
		fmt.Fprintln(w)
	}
}

func roleLabel(role suggest.Officer) string {
	words := strings.Split(string(role), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func priorityToLabel(priority int) string {
	switch priority {
	case suggest.PriorityCritical:
		return "[CRITICAL]"
	case suggest.PriorityHigh:
		return "[HIGH]"
	case suggest.PriorityMedium:
		return "[MEDIUM]"
	case suggest.PriorityLow:
		return "[LOW]"
	default:
		return "[UNKNOWN]"
	}
}

func stylePriority(priority int, label string) string {
	switch priority {
	case suggest.PriorityCritical, suggest.PriorityHigh:
		return output.StyleError.Render(label)
	case suggest.PriorityMedium:
		return output.StyleWarning.Render(label)
	default:
		return output.StyleMuted.Render(label)
	}
}
