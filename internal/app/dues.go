package app

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/chapterdesk/internal/analyzer"
	"github.com/blackwell-systems/chapterdesk/internal/chapter"
	"github.com/blackwell-systems/chapterdesk/internal/output"
)

var (
	duesCycle  string
	duesAll    bool
	duesPay    string
	duesAmount float64
)

var duesCmd = &cobra.Command{
	Use:   "dues",
	Short: "Show dues collection and overdue members",
	Long: `Summarize dues collection for the chapter's open cycles: expected,
collected and outstanding amounts, collection rate, and members who are
still unpaid past the due date plus the grace period.

Examples:
  chapterdesk dues                          # every open cycle
  chapterdesk dues --cycle fall-2026        # one cycle, open or closed
  chapterdesk dues --pay <assignment-id> --amount 50`,
	RunE: runDues,
}

func init() {
	duesCmd.Flags().StringVar(&duesCycle, "cycle", "", "Cycle ID to summarize")
	duesCmd.Flags().BoolVar(&duesAll, "all", false, "Include closed cycles")
	duesCmd.Flags().StringVar(&duesPay, "pay", "", "Record a payment against this assignment ID")
	duesCmd.Flags().Float64Var(&duesAmount, "amount", 0, "Payment amount for --pay")
	rootCmd.AddCommand(duesCmd)
}

func runDues(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd, duesCycle == "" && duesPay == "")
	if err != nil {
		return err
	}
	defer e.Close()
	ctx := cmd.Context()
	now := nowFunc()

	if duesPay != "" {
		a, err := e.db.RecordPayment(ctx, duesPay, duesAmount, now)
		if err != nil {
			return fmt.Errorf("recording payment: %w", err)
		}
		e.log.Info("dues payment recorded", "assignment_id", a.ID, "amount", duesAmount)
		if flagJSON {
			return writeJSON(e.out, a)
		}
		fmt.Fprintf(e.out, " Recorded %s from %s: now %s (%s outstanding)\n",
			output.Money(duesAmount), a.MemberID, a.Status, output.Money(a.Outstanding()))
		return nil
	}

	var cycles []chapter.DuesCycle
	if duesCycle != "" {
		c, err := e.db.GetDuesCycle(ctx, duesCycle)
		if err != nil {
			return err
		}
		cycles = []chapter.DuesCycle{c}
	} else {
		all, err := e.db.ListDuesCycles(ctx, e.chapterID)
		if err != nil {
			return fmt.Errorf("listing dues cycles: %w", err)
		}
		for _, c := range all {
			if duesAll || !c.Closed {
				cycles = append(cycles, c)
			}
		}
	}

	summaries := make([]analyzer.DuesSummary, 0, len(cycles))
	names := make(map[string]string)
	for _, c := range cycles {
		assignments, err := e.db.ListAssignmentsByCycle(ctx, c.ID)
		if err != nil {
			return fmt.Errorf("listing assignments for %s: %w", c.ID, err)
		}
		s := analyzer.AnalyzeDues(c, assignments, now, e.cfg.Dues.OverdueGraceDays)
		for _, o := range s.Overdue {
			if _, ok := names[o.MemberID]; ok {
				continue
			}
			if m, err := e.db.GetMember(ctx, o.MemberID); err == nil {
				names[o.MemberID] = m.FullName
			}
		}
		summaries = append(summaries, s)
	}

	if flagJSON {
		return writeJSON(e.out, summaries)
	}
	if len(summaries) == 0 {
		fmt.Fprintln(e.out, output.Section("Dues"))
		fmt.Fprintln(e.out)
		fmt.Fprintln(e.out, " No open dues cycles.")
		return nil
	}
	for _, s := range summaries {
		renderDues(e.out, s, names)
	}
	return nil
}

func renderDues(w io.Writer, s analyzer.DuesSummary, names map[string]string) {
	fmt.Fprintln(w, output.Section("Dues: "+s.CycleName))
	fmt.Fprintln(w)
	fmt.Fprintln(w, output.Metric("Due", s.DueDate.Format("Jan 2, 2006")))
	fmt.Fprintln(w, output.Metric("Assigned", fmt.Sprintf("%d (%d exempt)", s.Assigned, s.Exempt)))
	fmt.Fprintln(w, output.Metric("Expected", output.Money(s.Expected)))
	fmt.Fprintln(w, output.Metric("Collected", output.StyleSuccess.Render(output.Money(s.Collected))))
	fmt.Fprintln(w, output.Metric("Outstanding", output.Money(s.Outstanding)))
	fmt.Fprintln(w, output.Metric("Collection rate", output.PercentBar(s.CollectionRate*100, 20, true)))

	if len(s.Overdue) == 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, output.StyleSuccess.Render(" No overdue members."))
		return
	}
	fmt.Fprintln(w)
	tbl := output.NewTable("Member", "Outstanding", "Days overdue", "Assignment")
	for _, o := range s.Overdue {
		name := names[o.MemberID]
		if name == "" {
			name = o.MemberID
		}
		tbl.AddRow(name, output.StyleError.Render(output.Money(o.Outstanding)), fmt.Sprint(o.DaysOverdue), o.AssignmentID)
	}
	tbl.Print(w)
}
