package chapter

import (
	"encoding/json"
	"fmt"
	"os"
)

// Fixture is a JSON export of one chapter's records, as produced by the
// hosted database's export endpoint or written by hand for demos.
type Fixture struct {
	Chapter         Chapter          `json:"chapter"`
	Members         []Member         `json:"members"`
	Connections     []Connection     `json:"connections"`
	Events          []Event          `json:"events"`
	Vendors         []VendorContact  `json:"vendors"`
	DuesCycles      []DuesCycle      `json:"dues_cycles"`
	DuesAssignments []DuesAssignment `json:"dues_assignments"`
	Posts           []Post           `json:"posts"`
	Announcements   []Announcement   `json:"announcements"`
}

// LoadFixture reads and validates a chapter export.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseFixture(data)
}

// ParseFixture decodes a chapter export, fills chapter IDs that were left
// blank on child records, normalises role and status aliases, and validates
// every record.
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding fixture: %w", err)
	}
	if f.Chapter.ID == "" {
		return nil, Invalidf("fixture chapter.id is required")
	}
	cid := f.Chapter.ID

	for i := range f.Members {
		m := &f.Members[i]
		if m.ChapterID == "" {
			m.ChapterID = cid
		}
		role, err := ParseRole(string(m.Role))
		if err != nil {
			return nil, fmt.Errorf("member %s: %w", m.ID, err)
		}
		m.Role = role
		if err := m.Validate(); err != nil {
			return nil, err
		}
	}
	for i := range f.Connections {
		c := &f.Connections[i]
		if c.Status == "" {
			c.Status = ConnectionPending
		}
		if err := c.Validate(); err != nil {
			return nil, err
		}
	}
	for i := range f.Events {
		if f.Events[i].ChapterID == "" {
			f.Events[i].ChapterID = cid
		}
		if err := f.Events[i].Validate(); err != nil {
			return nil, err
		}
	}
	for i := range f.Vendors {
		if f.Vendors[i].ChapterID == "" {
			f.Vendors[i].ChapterID = cid
		}
		if err := f.Vendors[i].Validate(); err != nil {
			return nil, err
		}
	}
	for i := range f.DuesCycles {
		if f.DuesCycles[i].ChapterID == "" {
			f.DuesCycles[i].ChapterID = cid
		}
		if err := f.DuesCycles[i].Validate(); err != nil {
			return nil, err
		}
	}
	for i := range f.DuesAssignments {
		a := &f.DuesAssignments[i]
		st, err := ParseDuesStatus(string(a.Status))
		if err != nil {
			return nil, err
		}
		a.Status = st
		if err := a.Validate(); err != nil {
			return nil, err
		}
	}
	for i := range f.Posts {
		if f.Posts[i].ChapterID == "" {
			f.Posts[i].ChapterID = cid
		}
		if err := f.Posts[i].Validate(); err != nil {
			return nil, err
		}
	}
	for i := range f.Announcements {
		if f.Announcements[i].ChapterID == "" {
			f.Announcements[i].ChapterID = cid
		}
		if err := f.Announcements[i].Validate(); err != nil {
			return nil, err
		}
	}
	return &f, nil
}
