package app

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/chapterdesk/internal/chapter"
	"github.com/blackwell-systems/chapterdesk/internal/output"
	"github.com/blackwell-systems/chapterdesk/internal/session"
	"github.com/blackwell-systems/chapterdesk/internal/shuffle"
	"github.com/blackwell-systems/chapterdesk/internal/spotlight"
	"github.com/blackwell-systems/chapterdesk/internal/store"
)

var (
	spotlightViewer  string
	spotlightSurface string
	spotlightSeed    int64
	spotlightSession string
	spotlightLoaded  int
)

var spotlightCmd = &cobra.Command{
	Use:   "spotlight",
	Short: "Preview the networking spotlight for a member",
	Long: `Assemble the "people you may know" list a member would see. Candidates
exclude the viewer and anyone they already have a connection record with,
prefer members with a photo, are grouped alumni first, and are ranked by a
blend of profile completeness, recent activity and a seeded shuffle.

Pass --seed to reproduce an order exactly, or --session to reuse the seed
stored for a session (in Redis when redis.addr is set, otherwise in the
local database).`,
	RunE: runSpotlight,
}

func init() {
	spotlightCmd.Flags().StringVar(&spotlightViewer, "viewer", "", "Member ID viewing the spotlight (required)")
	spotlightCmd.Flags().StringVar(&spotlightSurface, "surface", spotlight.Desktop.Name, "Surface: desktop or mobile")
	spotlightCmd.Flags().Int64Var(&spotlightSeed, "seed", 0, "Shuffle seed (default: random, or the session's seed)")
	spotlightCmd.Flags().StringVar(&spotlightSession, "session", "", "Session ID whose stored seed should be used")
	spotlightCmd.Flags().IntVar(&spotlightLoaded, "loaded", 0, "Mobile only: cards already shown")
	_ = spotlightCmd.MarkFlagRequired("viewer")
	rootCmd.AddCommand(spotlightCmd)
}

func runSpotlight(cmd *cobra.Command, args []string) error {
	if spotlightSurface != spotlight.Desktop.Name && spotlightSurface != spotlight.Mobile.Name {
		return fmt.Errorf("surface must be desktop or mobile, got %q", spotlightSurface)
	}

	e, err := openEnv(cmd, true)
	if err != nil {
		return err
	}
	defer e.Close()
	ctx := cmd.Context()

	seed, err := resolveSeed(cmd, e)
	if err != nil {
		return err
	}

	var (
		viewer  chapter.Member
		members []chapter.Member
		conns   []chapter.Connection
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		viewer, err = e.db.GetMember(gctx, spotlightViewer)
		return err
	})
	g.Go(func() (err error) {
		members, err = e.db.ListAllMembers(gctx, e.chapterID)
		return err
	})
	g.Go(func() (err error) {
		conns, err = e.db.ListConnections(gctx, spotlightViewer)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("loading spotlight candidates: %w", err)
	}
	if viewer.ChapterID != e.chapterID {
		return fmt.Errorf("member %s is not in chapter %s", viewer.ID, e.chapterID)
	}

	surface := e.cfg.Surface(spotlightSurface)
	res := spotlight.Assemble(viewer.ID, members, conns, spotlight.Options{
		Surface:       surface,
		Randomness:    e.cfg.Spotlight.Randomness,
		MinWithAvatar: e.cfg.Spotlight.MinWithAvatar,
		Weights:       e.cfg.Weights(),
		Now:           nowFunc(),
		Seed:          seed,
	})
	hasMore := false
	if surface.Name == spotlight.Mobile.Name {
		res.Members, hasMore = spotlight.Window(res.Members, spotlightLoaded, surface)
	}

	if flagJSON {
		return writeJSON(e.out, struct {
			spotlight.Result
			HasMore bool `json:"has_more"`
		}{res, hasMore})
	}
	renderSpotlight(e.out, viewer, res, hasMore)
	return nil
}

// resolveSeed picks the shuffle seed: --seed wins, then the session's stored
// seed, then a fresh one.
func resolveSeed(cmd *cobra.Command, e *env) (int64, error) {
	if cmd.Flags().Changed("seed") {
		return spotlightSeed, nil
	}
	if spotlightSession == "" {
		return shuffle.NewSeed(), nil
	}
	ctx := cmd.Context()
	seeds, closeFn, err := openSeedStore(ctx, e)
	if err != nil {
		return 0, err
	}
	defer closeFn()
	return session.SeedFor(ctx, seeds, spotlightSession)
}

// openSeedStore returns the Redis seed store when redis.addr is set and the
// sqlite one otherwise, so a session keeps its seed across runs either way.
func openSeedStore(ctx context.Context, e *env) (session.SeedStore, func(), error) {
	cfg := e.cfg
	if cfg.Redis.Addr == "" {
		seeds := store.NewSeedStore(e.db, cfg.Session.TTL)
		if n, err := seeds.Sweep(ctx); err != nil {
			e.log.Warn("sweeping expired session seeds", "error", err)
		} else if n > 0 {
			e.log.Debug("swept expired session seeds", "count", n)
		}
		return seeds, func() {}, nil
	}
	rs, err := session.NewRedisStore(ctx, session.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TTL:      cfg.Session.TTL,
		Prefix:   cfg.Redis.Prefix,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return rs, func() { _ = rs.Close() }, nil
}

func renderSpotlight(w io.Writer, viewer chapter.Member, res spotlight.Result, hasMore bool) {
	fmt.Fprintln(w, output.Section("Spotlight for "+viewer.FullName))
	fmt.Fprintln(w)
	if len(res.Members) == 0 {
		fmt.Fprintln(w, " No suggestions: everyone is already connected.")
		return
	}
	tbl := output.NewTable("#", "Name", "Role", "Headline", "Priority")
	for i, c := range res.Members {
		tbl.AddRow(fmt.Sprint(i+1), c.FullName, string(c.Role), c.Headline, fmt.Sprintf("%.2f", c.Priority))
	}
	tbl.Print(w)
	fmt.Fprintln(w)
	footer := fmt.Sprintf(" %s surface, pool of %d, seed %d", res.Surface, res.PoolSize, res.Seed)
	if hasMore {
		footer += ", more available with --loaded " + fmt.Sprint(len(res.Members))
	}
	fmt.Fprintln(w, output.StyleMuted.Render(footer))
}
