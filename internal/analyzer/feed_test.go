package analyzer

import (
	"fmt"
	"testing"

	"github.com/blackwell-systems/chapterdesk/internal/chapter"
)

func TestAnalyzeFeed(t *testing.T) {
	posts := []chapter.Post{
		{AuthorID: "a", CreatedAt: now.AddDate(0, 0, -1), LikeCount: 3, CommentCount: 1},
		{AuthorID: "a", CreatedAt: now.AddDate(0, 0, -2)},
		{AuthorID: "b", CreatedAt: now.AddDate(0, 0, -20), LikeCount: 10},
		{AuthorID: "c", CreatedAt: now.AddDate(0, 0, -60), LikeCount: 1},
	}

	d := AnalyzeFeed(posts, now)

	if d.TotalPosts != 4 || d.Last7Days != 2 || d.Last30Days != 3 {
		t.Errorf("counts = %d/%d/%d, want 4/2/3", d.TotalPosts, d.Last7Days, d.Last30Days)
	}
	if d.TotalEngagement != 15 {
		t.Errorf("TotalEngagement = %d, want 15", d.TotalEngagement)
	}
	if !d.LastPostAt.Equal(now.AddDate(0, 0, -1)) {
		t.Errorf("LastPostAt = %v", d.LastPostAt)
	}
	if len(d.TopAuthors) != 2 || d.TopAuthors[0].AuthorID != "a" || d.TopAuthors[0].Posts != 2 {
		t.Errorf("TopAuthors = %+v, want a first, c excluded", d.TopAuthors)
	}
}

func TestAnalyzeFeed_CapsTopAuthors(t *testing.T) {
	var posts []chapter.Post
	for i := 0; i < 8; i++ {
		posts = append(posts, chapter.Post{AuthorID: fmt.Sprint(i), CreatedAt: now})
	}
	d := AnalyzeFeed(posts, now)
	if len(d.TopAuthors) != topAuthorLimit {
		t.Errorf("TopAuthors len = %d, want %d", len(d.TopAuthors), topAuthorLimit)
	}
}

func TestAnalyzeMembers_FromFeedSuite(t *testing.T) {
	members := []chapter.Member{
		{ID: "full", Role: chapter.RoleAlumni, AvatarURL: "x", Headline: "h", Bio: "b", Industry: "i",
			Company: "c", Location: "l", GraduationYear: 2010, LastActiveAt: now},
		{ID: "bare", Role: chapter.RoleActiveMember},
		{ID: "stale", Role: chapter.RoleAlumni, AvatarURL: "x", Company: "c", Bio: "b", Location: "l",
			LastActiveAt: now.AddDate(0, -6, 0)},
	}

	s := AnalyzeMembers(members, 4, now)

	if s.Total != 3 || s.ByRole[chapter.RoleAlumni] != 2 || s.WithAvatar != 2 {
		t.Errorf("counts = %+v", s)
	}
	if len(s.Incomplete) != 1 || s.Incomplete[0] != "bare" {
		t.Errorf("Incomplete = %v, want [bare]", s.Incomplete)
	}
	if s.Inactive != 2 {
		t.Errorf("Inactive = %d, want 2", s.Inactive)
	}
	if s.PendingConnections != 4 {
		t.Errorf("PendingConnections = %d, want 4", s.PendingConnections)
	}
	want := (1.0 + 0 + 4.0/7.0) / 3
	if !approx(s.AvgCompleteness, want) {
		t.Errorf("AvgCompleteness = %.3f, want %.3f", s.AvgCompleteness, want)
	}
}
