package watcher

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestNotifier_WritesAlert(t *testing.T) {
	var buf bytes.Buffer
	n := &Notifier{Out: &buf}

	err := n.Send(Alert{
		Level:   LevelWarning,
		Title:   "Over budget: Formal",
		Message: "Recorded spend now exceeds the event budget",
		Time:    time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := buf.String()
	if !strings.Contains(got, "09:30:00 [warning] Over budget: Formal") {
		t.Errorf("unexpected output %q", got)
	}
}

func TestNotifier_MinLevel(t *testing.T) {
	tests := []struct {
		min, level string
		want       bool
	}{
		{"", LevelInfo, true},
		{LevelWarning, LevelInfo, false},
		{LevelWarning, LevelWarning, true},
		{LevelWarning, LevelCritical, true},
		{LevelCritical, LevelWarning, false},
	}
	for _, tc := range tests {
		var buf bytes.Buffer
		n := &Notifier{Out: &buf, MinLevel: tc.min}
		if err := n.Send(Alert{Level: tc.level, Title: "t"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := buf.Len() > 0; got != tc.want {
			t.Errorf("min=%q level=%q: wrote=%v, want %v", tc.min, tc.level, got, tc.want)
		}
	}
}
