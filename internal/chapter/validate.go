package chapter

import (
	"math"
	"strings"
)

// ParseRole maps a raw role string to a Role. Unknown values are an error;
// empty input maps to RoleOther.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAlumni, "alum", "alumnus", "alumna":
		return RoleAlumni, nil
	case RoleActiveMember, "active", "member":
		return RoleActiveMember, nil
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleOther, "":
		return RoleOther, nil
	default:
		return "", Invalidf("unknown role %q", s)
	}
}

// ParseConnectionStatus maps a raw status string to a ConnectionStatus.
func ParseConnectionStatus(s string) (ConnectionStatus, error) {
	switch st := ConnectionStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case ConnectionPending, ConnectionAccepted, ConnectionDeclined, ConnectionBlocked:
		return st, nil
	default:
		return "", Invalidf("unknown connection status %q", s)
	}
}

// ParseDuesStatus maps a raw status string to a DuesStatus.
func ParseDuesStatus(s string) (DuesStatus, error) {
	switch st := DuesStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case DuesPending, DuesPartial, DuesPaid, DuesExempt:
		return st, nil
	case "":
		return DuesPending, nil
	default:
		return "", Invalidf("unknown dues status %q", s)
	}
}

func (m Member) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return Invalidf("member id is required")
	}
	if strings.TrimSpace(m.ChapterID) == "" {
		return Invalidf("member %s: chapter_id is required", m.ID)
	}
	if strings.TrimSpace(m.FullName) == "" {
		return Invalidf("member %s: full_name is required", m.ID)
	}
	if _, err := ParseRole(string(m.Role)); err != nil {
		return err
	}
	return nil
}

func (c Connection) Validate() error {
	if c.RequesterID == "" || c.RecipientID == "" {
		return Invalidf("connection requires requester_id and recipient_id")
	}
	if c.RequesterID == c.RecipientID {
		return Invalidf("member %s cannot connect to themselves", c.RequesterID)
	}
	_, err := ParseConnectionStatus(string(c.Status))
	return err
}

func (e Event) Validate() error {
	if strings.TrimSpace(e.ChapterID) == "" {
		return Invalidf("event chapter_id is required")
	}
	if strings.TrimSpace(e.Title) == "" {
		return Invalidf("event title is required")
	}
	if e.StartAt.IsZero() {
		return Invalidf("event %q: start_at is required", e.Title)
	}
	if e.Budget < 0 || e.Spent < 0 || math.IsNaN(e.Budget) || math.IsNaN(e.Spent) {
		return Invalidf("event %q: budget and spent must be non-negative", e.Title)
	}
	return nil
}

func (v VendorContact) Validate() error {
	if strings.TrimSpace(v.ChapterID) == "" || strings.TrimSpace(v.Name) == "" {
		return Invalidf("vendor requires chapter_id and name")
	}
	if v.Email == "" && v.Phone == "" {
		return Invalidf("vendor %q: email or phone is required", v.Name)
	}
	return nil
}

func (c DuesCycle) Validate() error {
	if strings.TrimSpace(c.ChapterID) == "" || strings.TrimSpace(c.Name) == "" {
		return Invalidf("dues cycle requires chapter_id and name")
	}
	if c.Amount <= 0 {
		return Invalidf("dues cycle %q: amount must be positive", c.Name)
	}
	if c.DueDate.IsZero() {
		return Invalidf("dues cycle %q: due_date is required", c.Name)
	}
	return nil
}

func (a DuesAssignment) Validate() error {
	if a.CycleID == "" || a.MemberID == "" {
		return Invalidf("dues assignment requires cycle_id and member_id")
	}
	if a.AmountDue < 0 || a.AmountPaid < 0 {
		return Invalidf("dues assignment amounts must be non-negative")
	}
	_, err := ParseDuesStatus(string(a.Status))
	return err
}

func (p Post) Validate() error {
	if p.ChapterID == "" || p.AuthorID == "" {
		return Invalidf("post requires chapter_id and author_id")
	}
	if strings.TrimSpace(p.Content) == "" {
		return Invalidf("post content is required")
	}
	return nil
}

func (a Announcement) Validate() error {
	if a.ChapterID == "" || strings.TrimSpace(a.Title) == "" {
		return Invalidf("announcement requires chapter_id and title")
	}
	return nil
}
