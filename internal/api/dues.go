package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/blackwell-systems/chapterdesk/internal/analyzer"
	"github.com/blackwell-systems/chapterdesk/internal/chapter"
)

// ListCycles serves a chapter's dues cycles, newest due date first.
func (s *Server) ListCycles(w http.ResponseWriter, r *http.Request) {
	chapterID, err := s.chapterID(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	cycles, err := s.db.ListDuesCycles(r.Context(), chapterID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeList(w, cycles)
}

// CycleSummary serves collection analytics for one cycle.
func (s *Server) CycleSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "cycleID")
	cycle, err := s.db.GetDuesCycle(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	assignments, err := s.db.ListAssignmentsByCycle(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analyzer.AnalyzeDues(cycle, assignments, s.now(), s.cfg.Dues.OverdueGraceDays))
}

// AssignDues bills a member for a cycle.
func (s *Server) AssignDues(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID  string             `json:"member_id"`
		AmountDue float64            `json:"amount_due"`
		Status    chapter.DuesStatus `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}
	status, err := chapter.ParseDuesStatus(string(req.Status))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	cycleID := chi.URLParam(r, "cycleID")
	cycle, err := s.db.GetDuesCycle(r.Context(), cycleID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	m, err := s.db.GetMember(r.Context(), req.MemberID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if m.ChapterID != cycle.ChapterID {
		s.handleError(w, r, chapter.Invalidf("member %s is not in chapter %s", m.ID, cycle.ChapterID))
		return
	}
	a, err := s.db.AssignDues(r.Context(), chapter.DuesAssignment{
		CycleID:   cycleID,
		MemberID:  req.MemberID,
		AmountDue: req.AmountDue,
		Status:    status,
	})
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// RecordPayment applies a payment to an assignment.
func (s *Server) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount float64   `json:"amount"`
		PaidAt time.Time `json:"paid_at"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}
	if req.PaidAt.IsZero() {
		req.PaidAt = s.now()
	}
	id := chi.URLParam(r, "assignmentID")
	a, err := s.db.RecordPayment(r.Context(), id, req.Amount, req.PaidAt)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.log.Info("dues payment recorded", "assignment_id", id, "amount", req.Amount, "status", a.Status)
	writeJSON(w, http.StatusOK, a)
}

// MemberDues serves every assignment billed to one member.
func (s *Server) MemberDues(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "memberID")
	if _, err := s.db.GetMember(r.Context(), id); err != nil {
		s.handleError(w, r, fmt.Errorf("dues for member: %w", err))
		return
	}
	list, err := s.db.ListAssignmentsByMember(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeList(w, list)
}
