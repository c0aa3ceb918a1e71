// Package chapter defines the records chapterdesk mirrors from the chapter
// database: members, connections, events, vendors, dues, posts and
// announcements.
package chapter

import (
	"strings"
	"time"
)

// Role is a member's standing within the chapter.
type Role string

const (
	RoleAlumni       Role = "alumni"
	RoleActiveMember Role = "active_member"
	RoleAdmin        Role = "admin"
	RoleOther        Role = "other"
)

// ConnectionStatus is the state of a connection request between two members.
type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionDeclined ConnectionStatus = "declined"
	ConnectionBlocked  ConnectionStatus = "blocked"
)

// DuesStatus is the payment state of a single dues assignment. Overdue is not
// stored; it is derived from the cycle due date.
type DuesStatus string

const (
	DuesPending DuesStatus = "pending"
	DuesPartial DuesStatus = "partial"
	DuesPaid    DuesStatus = "paid"
	DuesExempt  DuesStatus = "exempt"
)

// Chapter is the tenant boundary for almost every query.
type Chapter struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	University string `json:"university,omitempty"`
}

// Member is a person attached to a chapter.
type Member struct {
	ID             string    `json:"id"`
	ChapterID      string    `json:"chapter_id"`
	FullName       string    `json:"full_name"`
	Email          string    `json:"email,omitempty"`
	Role           Role      `json:"role"`
	AvatarURL      string    `json:"avatar_url,omitempty"`
	Headline       string    `json:"headline,omitempty"`
	Bio            string    `json:"bio,omitempty"`
	Industry       string    `json:"industry,omitempty"`
	Company        string    `json:"company,omitempty"`
	Location       string    `json:"location,omitempty"`
	GraduationYear int       `json:"graduation_year,omitempty"`
	LastActiveAt   time.Time `json:"last_active_at,omitzero"`
	JoinedAt       time.Time `json:"joined_at,omitzero"`
}

// HasAvatar reports whether the member has a non-blank avatar URL.
func (m Member) HasAvatar() bool {
	return strings.TrimSpace(m.AvatarURL) != ""
}

// Connection is a directed request from Requester to Recipient.
type Connection struct {
	RequesterID string           `json:"requester_id"`
	RecipientID string           `json:"recipient_id"`
	Status      ConnectionStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at,omitzero"`
}

// Other returns the member on the opposite end of the connection from id.
func (c Connection) Other(id string) string {
	if c.RequesterID == id {
		return c.RecipientID
	}
	return c.RequesterID
}

// Event is a chapter event with its planned and actual spend.
type Event struct {
	ID        string    `json:"id"`
	ChapterID string    `json:"chapter_id"`
	Title     string    `json:"title"`
	Category  string    `json:"category,omitempty"`
	Location  string    `json:"location,omitempty"`
	StartAt   time.Time `json:"start_at"`
	Budget    float64   `json:"budget"`
	Spent     float64   `json:"spent"`
	VendorID  string    `json:"vendor_id,omitempty"`
	CreatedBy string    `json:"created_by,omitempty"`
}

// Remaining is the unspent budget; negative when the event is over budget.
func (e Event) Remaining() float64 { return e.Budget - e.Spent }

// OverBudget reports whether a budgeted event has spent more than planned.
func (e Event) OverBudget() bool { return e.Budget > 0 && e.Spent > e.Budget }

// VendorContact is a supplier the social chair keeps on file.
type VendorContact struct {
	ID        string `json:"id"`
	ChapterID string `json:"chapter_id"`
	Name      string `json:"name"`
	Category  string `json:"category,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// DuesCycle is one billing period, e.g. "Fall 2026".
type DuesCycle struct {
	ID        string    `json:"id"`
	ChapterID string    `json:"chapter_id"`
	Name      string    `json:"name"`
	Amount    float64   `json:"amount"`
	DueDate   time.Time `json:"due_date"`
	Closed    bool      `json:"closed"`
}

// DuesAssignment is what one member owes for one cycle.
type DuesAssignment struct {
	ID         string     `json:"id"`
	CycleID    string     `json:"cycle_id"`
	MemberID   string     `json:"member_id"`
	AmountDue  float64    `json:"amount_due"`
	AmountPaid float64    `json:"amount_paid"`
	Status     DuesStatus `json:"status"`
	PaidAt     time.Time  `json:"paid_at,omitzero"`
}

// Outstanding is the unpaid balance; exempt assignments owe nothing.
func (a DuesAssignment) Outstanding() float64 {
	if a.Status == DuesExempt {
		return 0
	}
	if rem := a.AmountDue - a.AmountPaid; rem > 0 {
		return rem
	}
	return 0
}

// Settled reports whether nothing more is owed.
func (a DuesAssignment) Settled() bool {
	return a.Status == DuesExempt || a.Outstanding() == 0
}

// Post is an entry in the chapter's social feed.
type Post struct {
	ID           string    `json:"id"`
	ChapterID    string    `json:"chapter_id"`
	AuthorID     string    `json:"author_id"`
	Content      string    `json:"content"`
	LikeCount    int       `json:"like_count"`
	CommentCount int       `json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// Announcement is an officer notice pinned to the chapter dashboard.
type Announcement struct {
	ID        string    `json:"id"`
	ChapterID string    `json:"chapter_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// Active reports whether the announcement should still be shown at now.
func (a Announcement) Active(now time.Time) bool {
	return a.ExpiresAt.IsZero() || now.Before(a.ExpiresAt)
}
