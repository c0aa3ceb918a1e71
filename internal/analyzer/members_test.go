package analyzer

import (
	"math"
	"testing"

	"github.com/blackwell-systems/chapterdesk/internal/chapter"
)

func TestAnalyzeMembers(t *testing.T) {
	full := chapter.Member{
		ID: "full", Role: chapter.RoleAlumni, AvatarURL: "https://x/a.png",
		Headline: "Engineer", Bio: "Hi", Industry: "Software", Company: "Acme",
		Location: "Austin", GraduationYear: 2019, LastActiveAt: now.AddDate(0, 0, -3),
	}
	sparse := chapter.Member{
		ID: "sparse", Role: chapter.RoleActiveMember, GraduationYear: 2028,
		LastActiveAt: now.AddDate(0, 0, -120),
	}
	never := chapter.Member{ID: "never", Role: chapter.RoleActiveMember, Headline: "New", Company: "X", Location: "Y", Bio: "Z"}

	s := AnalyzeMembers([]chapter.Member{full, sparse, never}, 4, now)

	if s.Total != 3 || s.ByRole[chapter.RoleActiveMember] != 2 || s.ByRole[chapter.RoleAlumni] != 1 {
		t.Errorf("counts = %d %v", s.Total, s.ByRole)
	}
	if s.WithAvatar != 1 {
		t.Errorf("WithAvatar = %d, want 1", s.WithAvatar)
	}
	// 7/7, 1/7 and 4/7.
	if want := 12.0 / 21.0; math.Abs(s.AvgCompleteness-want) > 1e-9 {
		t.Errorf("AvgCompleteness = %v, want %v", s.AvgCompleteness, want)
	}
	if len(s.Incomplete) != 1 || s.Incomplete[0] != "sparse" {
		t.Errorf("Incomplete = %v, want [sparse]", s.Incomplete)
	}
	if s.Inactive != 2 {
		t.Errorf("Inactive = %d, want 2 (stale and never active)", s.Inactive)
	}
	if s.PendingConnections != 4 {
		t.Errorf("PendingConnections = %d", s.PendingConnections)
	}
}

func TestAnalyzeMembers_Empty(t *testing.T) {
	s := AnalyzeMembers(nil, 0, now)
	if s.Total != 0 || s.AvgCompleteness != 0 || s.Incomplete == nil {
		t.Errorf("unexpected empty summary %+v", s)
	}
}
