package app

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/chapterdesk/internal/analyzer"
	"github.com/blackwell-systems/chapterdesk/internal/chapter"
	"github.com/blackwell-systems/chapterdesk/internal/output"
)

var budgetVendorCategory string

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Show event budget versus actual spend",
	Long: `Roll up every chapter event into planned versus actual spend, by category
and by month, and list events that are over budget, upcoming without a
budget, or upcoming within 30 days without a vendor.

Pass --vendors <category> to also list vendor contacts for that category.`,
	RunE: runBudget,
}

func init() {
	budgetCmd.Flags().StringVar(&budgetVendorCategory, "vendors", "", "Also list vendor contacts in this category")
	rootCmd.AddCommand(budgetCmd)
}

func runBudget(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd, true)
	if err != nil {
		return err
	}
	defer e.Close()

	events, err := e.db.ListAllEvents(cmd.Context(), e.chapterID)
	if err != nil {
		return fmt.Errorf("listing events: %w", err)
	}
	summary := analyzer.AnalyzeBudget(events, nowFunc())

	var vendors []chapter.VendorContact
	if budgetVendorCategory != "" {
		vendors, err = e.db.ListVendors(cmd.Context(), e.chapterID, budgetVendorCategory)
		if err != nil {
			return fmt.Errorf("listing vendors: %w", err)
		}
	}

	if flagJSON {
		if budgetVendorCategory == "" {
			return writeJSON(e.out, summary)
		}
		if vendors == nil {
			vendors = []chapter.VendorContact{}
		}
		return writeJSON(e.out, struct {
			analyzer.BudgetSummary
			Vendors []chapter.VendorContact `json:"vendors"`
		}{summary, vendors})
	}

	renderBudget(e.out, summary)
	if budgetVendorCategory != "" {
		renderVendors(e.out, budgetVendorCategory, vendors)
	}
	return nil
}

func renderBudget(w io.Writer, s analyzer.BudgetSummary) {
	fmt.Fprintln(w, output.Section("Event Budget"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, output.Metric("Events", output.StyleValue.Render(fmt.Sprint(s.EventCount))))
	fmt.Fprintln(w, output.Metric("Budgeted", output.StyleValue.Render(output.Money(s.TotalBudget))))
	fmt.Fprintln(w, output.Metric("Spent", output.StyleValue.Render(output.Money(s.TotalSpent))))
	remaining := output.Money(s.Remaining)
	if s.Remaining < 0 {
		remaining = output.StyleError.Render(remaining)
	}
	fmt.Fprintln(w, output.Metric("Remaining", remaining))
	fmt.Fprintln(w, output.Metric("Utilization", output.PercentBar(s.UtilizationPercent, 20, false)))

	if len(s.ByCategory) > 0 {
		fmt.Fprintln(w, output.Section("By Category"))
		fmt.Fprintln(w)
		tbl := output.NewTable("Category", "Events", "Budget", "Spent")
		for _, c := range s.ByCategory {
			tbl.AddRow(c.Category, fmt.Sprint(c.Events), output.Money(c.Budget), output.Money(c.Spent))
		}
		tbl.Print(w)
	}

	if len(s.OverBudget) > 0 {
		fmt.Fprintln(w, output.Section("Over Budget"))
		fmt.Fprintln(w)
		tbl := output.NewTable("Event", "Budget", "Spent", "Over by")
		for _, v := range s.OverBudget {
			tbl.AddRow(v.Title, output.Money(v.Budget), output.Money(v.Spent), output.StyleError.Render(output.Money(v.Overage)))
		}
		tbl.Print(w)
	}

	if len(s.UnbudgetedUpcoming) > 0 || len(s.UpcomingWithoutVendor) > 0 {
		fmt.Fprintln(w, output.Section("Upcoming Gaps"))
		fmt.Fprintln(w)
		for _, ev := range s.UnbudgetedUpcoming {
			fmt.Fprintf(w, "  %s %s %s\n", output.StyleWarning.Render("no budget"), ev.Title, output.StyleMuted.Render(ev.StartAt.Format("Jan 2")))
		}
		for _, ev := range s.UpcomingWithoutVendor {
			fmt.Fprintf(w, "  %s %s %s\n", output.StyleWarning.Render("no vendor"), ev.Title, output.StyleMuted.Render(ev.StartAt.Format("Jan 2")))
		}
	}

	if len(s.MonthlySpend) > 0 {
		fmt.Fprintln(w, output.Section("Monthly Spend"))
		fmt.Fprintln(w)
		tbl := output.NewTable("Month", "Spent")
		for _, m := range s.MonthlySpend {
			tbl.AddRow(m.Month, output.Money(m.Spent))
		}
		tbl.Print(w)
	}
}

func renderVendors(w io.Writer, category string, vendors []chapter.VendorContact) {
	fmt.Fprintln(w, output.Section("Vendors: "+category))
	fmt.Fprintln(w)
	if len(vendors) == 0 {
		fmt.Fprintln(w, " No vendor contacts in this category.")
		return
	}
	tbl := output.NewTable("Name", "Email", "Phone")
	for _, v := range vendors {
		tbl.AddRow(v.Name, v.Email, v.Phone)
	}
	tbl.Print(w)
}
