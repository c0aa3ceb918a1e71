package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/chapterdesk/internal/chapter"
	"github.com/blackwell-systems/chapterdesk/internal/session"
	"github.com/blackwell-systems/chapterdesk/internal/spotlight"
)

type spotlightResponse struct {
	spotlight.Result
	Loaded  int  `json:"loaded"`
	HasMore bool `json:"has_more"`
}

// Spotlight renders the "people you may know" list for a viewer. The order
// is stable for the lifetime of the session cookie.
func (s *Server) Spotlight(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	chapterID := chi.URLParam(r, "chapterID")
	q := r.URL.Query()

	viewerID := q.Get("viewer_id")
	if viewerID == "" {
		s.handleError(w, r, chapter.Invalidf("viewer_id is required"))
		return
	}
	surfaceName := q.Get("surface")
	switch surfaceName {
	case "":
		surfaceName = spotlight.Desktop.Name
	case spotlight.Desktop.Name, spotlight.Mobile.Name:
	default:
		s.handleError(w, r, chapter.Invalidf("surface must be desktop or mobile"))
		return
	}
	loaded, err := intParam(r, "loaded")
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	var (
		viewer  chapter.Member
		members []chapter.Member
		conns   []chapter.Connection
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		viewer, err = s.db.GetMember(gctx, viewerID)
		return err
	})
	g.Go(func() (err error) {
		members, err = s.chapterMembers(gctx, chapterID)
		return err
	})
	g.Go(func() (err error) {
		conns, err = s.db.ListConnections(gctx, viewerID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.handleError(w, r, err)
		return
	}
	if viewer.ChapterID != chapterID {
		s.handleError(w, r, fmt.Errorf("member %s in chapter %s: %w", viewerID, chapterID, chapter.ErrNotFound))
		return
	}

	// The session starts only once the render is known to succeed.
	seed, err := session.SeedFor(ctx, s.seeds, s.sessionID(w, r))
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	surface := s.cfg.Surface(surfaceName)
	res := spotlight.Assemble(viewerID, members, conns, spotlight.Options{
		Surface:       surface,
		Randomness:    s.cfg.Spotlight.Randomness,
		MinWithAvatar: s.cfg.Spotlight.MinWithAvatar,
		Weights:       s.cfg.Weights(),
		Now:           s.now(),
		Seed:          seed,
	})
	s.metrics.spotlightRenders.WithLabelValues(surface.Name).Inc()
	s.metrics.spotlightCandidates.Observe(float64(res.PoolSize))

	resp := spotlightResponse{Result: res}
	if surface.Name == spotlight.Mobile.Name {
		resp.Members, resp.HasMore = spotlight.Window(res.Members, loaded, surface)
	}
	resp.Loaded = len(resp.Members)
	writeJSON(w, http.StatusOK, resp)
}

// chapterMembers loads the candidate set, sharing one query between
// concurrent renders for the same chapter. The shared query outlives any one
// caller's cancellation.
func (s *Server) chapterMembers(ctx context.Context, chapterID string) ([]chapter.Member, error) {
	v, err, _ := s.candidates.Do(chapterID, func() (any, error) {
		return s.db.ListAllMembers(context.WithoutCancel(ctx), chapterID)
	})
	if err != nil {
		return nil, err
	}
	return v.([]chapter.Member), nil
}

// sessionID returns the session cookie value, issuing a new one when the
// request has none.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) string {
	name := s.cfg.Session.CookieName
	if c, err := r.Cookie(name); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.cfg.Session.TTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
