// Package watcher provides background monitoring of a chapter's dues, event
// spend and networking backlog, emitting alerts when notable changes occur.
package watcher

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/chapterdesk/internal/analyzer"
	"github.com/blackwell-systems/chapterdesk/internal/chapter"
)

// Alert levels.
const (
	LevelInfo     = "info"
	LevelWarning  = "warning"
	LevelCritical = "critical"
)

// Store is the subset of the chapter store the watcher reads.
type Store interface {
	ListAllEvents(ctx context.Context, chapterID string) ([]chapter.Event, error)
	ListDuesCycles(ctx context.Context, chapterID string) ([]chapter.DuesCycle, error)
	ListChapterAssignments(ctx context.Context, chapterID string) (map[string][]chapter.DuesAssignment, error)
	CountPendingConnections(ctx context.Context, chapterID string) (int, error)
}

// WatchState captures a point-in-time snapshot of chapter health.
type WatchState struct {
	Timestamp          time.Time
	PendingConnections int
	TotalSpent         float64

	// Cycles holds one entry per open dues cycle, keyed by cycle ID.
	Cycles map[string]CycleState

	// OverBudget maps event ID to title for events spending past budget.
	OverBudget map[string]string
}

// CycleState is the per-cycle part of a snapshot.
type CycleState struct {
	Name           string
	CollectionRate float64
	Overdue        map[string]float64 // member ID -> outstanding
}

// Alert represents a notable event detected by the watcher.
type Alert struct {
	Level   string // "info", "warning", "critical"
	Title   string
	Message string
	Time    time.Time
}

// Watcher polls a chapter at a regular interval and emits alerts when notable
// changes are detected.
type Watcher struct {
	store         Store
	chapterID     string
	interval      time.Duration
	previous      *WatchState
	alertFn       func(Alert)     // callback for emitting alerts
	lastAlertKeys map[string]bool // dedup: suppress repeated identical alerts

	// GraceDays is added to each cycle's due date before dues count as
	// overdue.
	GraceDays int

	now func() time.Time
}

// New creates a Watcher for one chapter.
func New(store Store, chapterID string, interval time.Duration, alertFn func(Alert)) *Watcher {
	return &Watcher{
		store:         store,
		chapterID:     chapterID,
		interval:      interval,
		alertFn:       alertFn,
		lastAlertKeys: make(map[string]bool),
		now:           time.Now,
	}
}

// Run starts the watch loop. It takes an initial snapshot, then checks at
// every interval. Blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	initial, err := w.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("initial snapshot: %w", err)
	}
	w.previous = initial

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for _, a := range w.Check(ctx) {
				if w.alertFn != nil {
					w.alertFn(a)
				}
			}
		}
	}
}

// Check performs a single check cycle: takes a new snapshot, compares against
// the previous state, updates the previous state, and returns any alerts.
// Identical alerts are suppressed until the underlying data changes.
func (w *Watcher) Check(ctx context.Context) []Alert {
	curr, err := w.Snapshot(ctx)
	if err != nil {
		return []Alert{{
			Level:   LevelWarning,
			Title:   "Snapshot failed",
			Message: fmt.Sprintf("Could not read chapter data: %v", err),
			Time:    w.now(),
		}}
	}

	var raw []Alert
	if w.previous != nil {
		raw = Compare(w.previous, curr)
	}

	currentKeys := make(map[string]bool, len(raw))
	var alerts []Alert
	for _, a := range raw {
		key := a.Level + ":" + a.Title + ":" + a.Message
		currentKeys[key] = true
		if !w.lastAlertKeys[key] {
			alerts = append(alerts, a)
		}
	}
	w.lastAlertKeys = currentKeys

	w.previous = curr
	return alerts
}

// Snapshot loads the chapter's events, open dues and connection backlog in
// parallel and reduces them to a WatchState.
func (w *Watcher) Snapshot(ctx context.Context) (*WatchState, error) {
	var (
		events      []chapter.Event
		cycles      []chapter.DuesCycle
		assignments map[string][]chapter.DuesAssignment
		pending     int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		events, err = w.store.ListAllEvents(gctx, w.chapterID)
		return err
	})
	g.Go(func() (err error) {
		cycles, err = w.store.ListDuesCycles(gctx, w.chapterID)
		return err
	})
	g.Go(func() (err error) {
		assignments, err = w.store.ListChapterAssignments(gctx, w.chapterID)
		return err
	})
	g.Go(func() (err error) {
		pending, err = w.store.CountPendingConnections(gctx, w.chapterID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := w.now()
	state := &WatchState{
		Timestamp:          now,
		PendingConnections: pending,
		Cycles:             make(map[string]CycleState),
		OverBudget:         make(map[string]string),
	}

	budget := analyzer.AnalyzeBudget(events, now)
	state.TotalSpent = budget.TotalSpent
	for _, v := range budget.OverBudget {
		state.OverBudget[v.EventID] = v.Title
	}

	for _, c := range cycles {
		if c.Closed {
			continue
		}
		d := analyzer.AnalyzeDues(c, assignments[c.ID], now, w.GraceDays)
		cs := CycleState{
			Name:           c.Name,
			CollectionRate: d.CollectionRate,
			Overdue:        make(map[string]float64, len(d.Overdue)),
		}
		for _, o := range d.Overdue {
			cs.Overdue[o.MemberID] = o.Outstanding
		}
		state.Cycles[c.ID] = cs
	}
	return state, nil
}
