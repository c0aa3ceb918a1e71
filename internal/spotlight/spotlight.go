package spotlight

import (
	"time"

	"github.com/blackwell-systems/chapterdesk/internal/chapter"
	"github.com/blackwell-systems/chapterdesk/internal/shuffle"
)

// Surface describes one place the spotlight is rendered.
type Surface struct {
	Name      string `json:"name"`
	Pool      int    `json:"pool"`
	Display   int    `json:"display"`
	Increment int    `json:"increment"`
}

var (
	// Desktop shows a fixed handful of suggestions in a sidebar card.
	Desktop = Surface{Name: "desktop", Pool: 20, Display: 5, Increment: 5}

	// Mobile shows a longer carousel that lazy-loads in small steps.
	Mobile = Surface{Name: "mobile", Pool: 30, Display: 24, Increment: 6}
)

// SurfaceByName returns the named surface, defaulting to Desktop.
func SurfaceByName(name string) Surface {
	if name == Mobile.Name {
		return Mobile
	}
	return Desktop
}

// DefaultRandomness is the blend factor used by both surfaces.
const DefaultRandomness = 0.4

// DefaultMinWithAvatar is the number of avatar-bearing candidates required
// before avatar-less members are excluded.
const DefaultMinWithAvatar = 5

// bucketOrder is the fixed concatenation order after per-role shuffles.
var bucketOrder = []chapter.Role{
	chapter.RoleAlumni,
	chapter.RoleActiveMember,
	chapter.RoleAdmin,
	chapter.RoleOther,
}

// Options configures a single assembly run.
type Options struct {
	Surface Surface

	// Randomness is passed straight to the weighted shuffle; callers
	// normally use DefaultRandomness. Zero gives a pure priority order.
	Randomness    float64
	MinWithAvatar int
	Weights       Weights
	Now           time.Time
	Seed          int64

	// Rand drives the per-bucket weighted shuffle. When nil it is derived
	// from Seed so the whole result is stable for a session.
	Rand func() float64
}

// Candidate is a suggested member with the priority it was ranked by.
type Candidate struct {
	chapter.Member
	Priority float64 `json:"priority"`
}

// Result is the assembled spotlight.
type Result struct {
	Surface  string      `json:"surface"`
	Seed     int64       `json:"seed"`
	PoolSize int         `json:"pool_size"`
	Members  []Candidate `json:"members"`
}

// Assemble builds the spotlight for viewerID from the chapter's members and
// the viewer's connections. It never fails: missing data yields an empty
// result.
func Assemble(viewerID string, members []chapter.Member, conns []chapter.Connection, opts Options) Result {
	opts = withDefaults(opts)
	res := Result{Surface: opts.Surface.Name, Seed: opts.Seed, Members: []Candidate{}}

	eligible := Eligible(viewerID, members, conns)
	eligible = preferAvatars(eligible, opts.MinWithAvatar)
	if len(eligible) == 0 {
		return res
	}

	cands := make([]Candidate, len(eligible))
	for i, m := range eligible {
		cands[i] = Candidate{Member: m, Priority: Priority(m, opts.Now, opts.Weights)}
	}

	rnd := opts.Rand
	if rnd == nil {
		rnd = shuffle.SeededRandom(opts.Seed ^ 0x5bd1e995)
	}
	byPriority := func(c Candidate) float64 { return c.Priority }

	buckets := Partition(cands)
	ordered := make([]Candidate, 0, len(cands))
	for _, role := range bucketOrder {
		ordered = append(ordered, shuffle.WeightedShuffle(buckets[role], byPriority, opts.Randomness, rnd)...)
	}

	pool := ordered
	if len(pool) > opts.Surface.Pool {
		pool = pool[:opts.Surface.Pool]
	}
	res.PoolSize = len(pool)

	if len(pool) <= opts.Surface.Display {
		res.Members = pool
		return res
	}
	res.Members = shuffle.SeededShuffle(pool, opts.Seed)[:opts.Surface.Display]
	return res
}

// Eligible drops the viewer and anyone the viewer has a connection record
// with in either direction, whatever its status.
func Eligible(viewerID string, members []chapter.Member, conns []chapter.Connection) []chapter.Member {
	related := make(map[string]bool, len(conns))
	for _, c := range conns {
		if c.RequesterID == viewerID || c.RecipientID == viewerID {
			related[c.Other(viewerID)] = true
		}
	}
	out := make([]chapter.Member, 0, len(members))
	for _, m := range members {
		if m.ID == viewerID || related[m.ID] {
			continue
		}
		out = append(out, m)
	}
	return out
}

// preferAvatars keeps only members with an avatar unless that leaves fewer
// than minCount, in which case everyone is kept.
func preferAvatars(members []chapter.Member, minCount int) []chapter.Member {
	with := make([]chapter.Member, 0, len(members))
	for _, m := range members {
		if m.HasAvatar() {
			with = append(with, m)
		}
	}
	if len(with) < minCount {
		return members
	}
	return with
}

// Partition groups candidates into role buckets. Unknown roles land in
// RoleOther. Input order is preserved within each bucket.
func Partition(cands []Candidate) map[chapter.Role][]Candidate {
	buckets := make(map[chapter.Role][]Candidate, len(bucketOrder))
	for _, c := range cands {
		role := c.Role
		switch role {
		case chapter.RoleAlumni, chapter.RoleActiveMember, chapter.RoleAdmin:
		default:
			role = chapter.RoleOther
		}
		buckets[role] = append(buckets[role], c)
	}
	return buckets
}

// Window returns the slice visible after loaded items have already been
// shown and one more increment is requested, plus whether more remain.
func Window(items []Candidate, loaded int, s Surface) ([]Candidate, bool) {
	step := s.Increment
	if step <= 0 {
		step = s.Display
	}
	if loaded < 0 {
		loaded = 0
	}
	limit := min(loaded+step, s.Display, len(items))
	if limit < 0 {
		limit = 0
	}
	return items[:limit], limit < min(s.Display, len(items))
}

func withDefaults(o Options) Options {
	if o.Surface.Pool <= 0 || o.Surface.Display <= 0 {
		o.Surface = Desktop
	}
	if o.MinWithAvatar <= 0 {
		o.MinWithAvatar = DefaultMinWithAvatar
	}
	if o.Weights.Completeness+o.Weights.Recency <= 0 {
		o.Weights = DefaultWeights
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	return o
}
