package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/chapterdesk/internal/analyzer"
	"github.com/blackwell-systems/chapterdesk/internal/chapter"
	"github.com/blackwell-systems/chapterdesk/internal/dashboard"
	"github.com/blackwell-systems/chapterdesk/internal/output"
)

var feedLimit int

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show recent social feed activity",
	Long: `Show the newest posts in the chapter feed, post counts over the last 7
and 30 days, the most active authors, and the announcements currently
pinned to the dashboard.`,
	RunE: runFeed,
}

func init() {
	feedCmd.Flags().IntVar(&feedLimit, "limit", 5, "Number of recent posts to show")
	rootCmd.AddCommand(feedCmd)
}

type feedOutput struct {
	Digest        analyzer.FeedDigest    `json:"digest"`
	Recent        []chapter.Post         `json:"recent"`
	Announcements []chapter.Announcement `json:"announcements"`
}

func runFeed(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd, true)
	if err != nil {
		return err
	}
	defer e.Close()
	now := nowFunc()

	var (
		window []chapter.Post
		recent chapter.Paged[chapter.Post]
		ann    []chapter.Announcement
	)
	g, gctx := errgroup.WithContext(cmd.Context())
	g.Go(func() (err error) {
		window, err = e.db.ListPostsSince(gctx, e.chapterID, now.Add(-dashboard.FeedWindow))
		return err
	})
	g.Go(func() (err error) {
		p := chapter.Page{Limit: feedLimit}.Normalize(e.cfg.Pagination.DefaultLimit, e.cfg.Pagination.MaxLimit)
		recent, err = e.db.ListPosts(gctx, e.chapterID, p)
		return err
	})
	g.Go(func() (err error) {
		ann, err = e.db.ListAnnouncements(gctx, e.chapterID, now)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("loading feed: %w", err)
	}
	if ann == nil {
		ann = []chapter.Announcement{}
	}

	out := feedOutput{
		Digest:        analyzer.AnalyzeFeed(window, now),
		Recent:        recent.Items,
		Announcements: ann,
	}
	if flagJSON {
		return writeJSON(e.out, out)
	}
	renderFeed(e.out, out)
	return nil
}

func renderFeed(w io.Writer, f feedOutput) {
	fmt.Fprintln(w, output.Section("Feed"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, output.Metric("Posts, last 7 days", output.StyleValue.Render(fmt.Sprint(f.Digest.Last7Days))))
	fmt.Fprintln(w, output.Metric("Posts, last 30 days", output.StyleValue.Render(fmt.Sprint(f.Digest.Last30Days))))
	fmt.Fprintln(w, output.Metric("Likes and comments", output.StyleValue.Render(fmt.Sprint(f.Digest.TotalEngagement))))

	if len(f.Digest.TopAuthors) > 0 {
		fmt.Fprintln(w)
		tbl := output.NewTable("Author", "Posts", "Engagement")
		for _, a := range f.Digest.TopAuthors {
			tbl.AddRow(a.AuthorID, fmt.Sprint(a.Posts), fmt.Sprint(a.Engagement))
		}
		tbl.Print(w)
	}

	if len(f.Recent) > 0 {
		fmt.Fprintln(w, output.Section("Recent Posts"))
		fmt.Fprintln(w)
		for _, p := range f.Recent {
			fmt.Fprintf(w, "  %s %s\n", output.StyleMuted.Render(p.CreatedAt.Format("Jan 2 15:04")), output.StyleBold.Render(p.AuthorID))
			fmt.Fprintf(w, "    %s\n", truncate(p.Content, 72))
		}
	}

	fmt.Fprintln(w, output.Section("Announcements"))
	fmt.Fprintln(w)
	if len(f.Announcements) == 0 {
		fmt.Fprintln(w, " None active.")
		return
	}
	for _, a := range f.Announcements {
		fmt.Fprintf(w, "  %s %s\n", output.StyleMuted.Render(a.CreatedAt.Format("Jan 2")), a.Title)
	}
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
