package analyzer

import (
	"cmp"
	"slices"
	"time"

	"github.com/blackwell-systems/chapterdesk/internal/chapter"
)

// topAuthorLimit caps FeedDigest.TopAuthors.
const topAuthorLimit = 5

// FeedDigest summarises recent social feed activity.
type FeedDigest struct {
	TotalPosts      int              `json:"total_posts"`
	Last7Days       int              `json:"last_7_days"`
	Last30Days      int              `json:"last_30_days"`
	TotalEngagement int              `json:"total_engagement"`
	LastPostAt      time.Time        `json:"last_post_at,omitzero"`
	TopAuthors      []AuthorActivity `json:"top_authors"`
}

// AuthorActivity is one member's posting volume and the engagement it drew.
type AuthorActivity struct {
	AuthorID   string `json:"author_id"`
	Posts      int    `json:"posts"`
	Engagement int    `json:"engagement"`
}

// AnalyzeFeed counts posts by age and ranks authors by volume over the last
// 30 days.
func AnalyzeFeed(posts []chapter.Post, now time.Time) FeedDigest {
	d := FeedDigest{TopAuthors: []AuthorActivity{}}
	week := now.AddDate(0, 0, -7)
	month := now.AddDate(0, 0, -30)
	authors := make(map[string]*AuthorActivity)

	for _, p := range posts {
		d.TotalPosts++
		engagement := p.LikeCount + p.CommentCount
		d.TotalEngagement += engagement
		if p.CreatedAt.After(d.LastPostAt) {
			d.LastPostAt = p.CreatedAt
		}
		if p.CreatedAt.After(week) {
			d.Last7Days++
		}
		if !p.CreatedAt.After(month) {
			continue
		}
		d.Last30Days++
		a, ok := authors[p.AuthorID]
		if !ok {
			a = &AuthorActivity{AuthorID: p.AuthorID}
			authors[p.AuthorID] = a
		}
		a.Posts++
		a.Engagement += engagement
	}

	for _, a := range authors {
		d.TopAuthors = append(d.TopAuthors, *a)
	}
	slices.SortFunc(d.TopAuthors, func(a, b AuthorActivity) int {
		if c := cmp.Compare(b.Posts, a.Posts); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Engagement, a.Engagement); c != 0 {
			return c
		}
		return cmp.Compare(a.AuthorID, b.AuthorID)
	})
	if len(d.TopAuthors) > topAuthorLimit {
		d.TopAuthors = d.TopAuthors[:topAuthorLimit]
	}
	return d
}
