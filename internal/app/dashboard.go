package app

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/chapterdesk/internal/dashboard"
	"github.com/blackwell-systems/chapterdesk/internal/output"
	"github.com/blackwell-systems/chapterdesk/internal/suggest"
)

// dashboardTopActions is how many action items the summary shows.
const dashboardTopActions = 3

func runDashboard(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd, true)
	if err != nil {
		return err
	}
	defer e.Close()

	cc, err := dashboard.Build(cmd.Context(), e.db, e.chapterID, nowFunc(), e.cfg.Dues.OverdueGraceDays)
	if err != nil {
		return fmt.Errorf("building chapter context: %w", err)
	}
	sum := dashboard.Summarize(cc, suggest.NewEngine().Run(cc), dashboardTopActions)

	if flagJSON {
		return writeJSON(e.out, sum)
	}
	renderDashboard(e.out, sum)
	return nil
}

func renderDashboard(w io.Writer, s dashboard.Summary) {
	fmt.Fprintln(w, output.Section(s.Chapter+" dashboard"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, output.Metric("Members", output.StyleValue.Render(fmt.Sprint(s.Members))))
	fmt.Fprintln(w, output.Metric("Pending connections", output.StyleValue.Render(fmt.Sprint(s.Pending))))
	fmt.Fprintln(w, output.Metric("Posts this week", output.StyleValue.Render(fmt.Sprint(s.PostsWeek))))
	fmt.Fprintln(w, output.Metric("Budget used",
		output.PercentBar(s.Budget.Utilization, 20, false)+"  "+
			output.StyleMuted.Render(output.Money(s.Budget.Spent)+" of "+output.Money(s.Budget.Total))))
	if s.Budget.OverBudget > 0 {
		fmt.Fprintln(w, output.Metric("Over-budget events", output.StyleError.Render(fmt.Sprint(s.Budget.OverBudget))))
	}
	for _, d := range s.Dues {
		fmt.Fprintln(w, output.Metric("Dues: "+d.Cycle,
			output.PercentBar(d.CollectionRate*100, 20, true)+"  "+
				output.StyleMuted.Render(fmt.Sprintf("%s outstanding, %d overdue", output.Money(d.Outstanding), d.Overdue))))
	}

	fmt.Fprintln(w)
	if len(s.Actions) == 0 {
		fmt.Fprintln(w, output.StyleSuccess.Render(" Nothing needs attention right now."))
		return
	}
	fmt.Fprintln(w, output.StyleBold.Render(" Top actions"))
	for i, a := range s.Actions {
		label := priorityToLabel(a.Priority)
		fmt.Fprintf(w, "  %d. %s %s\n", i+1, stylePriority(a.Priority, label), a.Title)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, output.StyleMuted.Render(" Run 'chapterdesk actions --role <role>' for the full list."))
}
