package tui

import (
	"testing"

	"github.com/strandtools/strand/internal/api"
)

func sampleSessions() []api.Session {
	return []api.Session{
		{ID: "s1", Title: "RNA-seq batch 12"},
		{ID: "s2", Title: "Variant calling"},
		{ID: "s3", Title: "rna quality check"},
	}
}

func TestSessionListFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter string
		want   []string
	}{
		{name: "empty matches all", filter: "", want: []string{"s1", "s2", "s3"}},
		{name: "case insensitive", filter: "RNA", want: []string{"s1", "s3"}},
		{name: "no match", filter: "proteomics", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newSessionList()
			l.SetSessions(sampleSessions())
			l.SetFilter(tt.filter)

			var got []string
			for _, s := range l.filtered {
				got = append(got, s.ID)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("filtered = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("filtered[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSessionListCursor(t *testing.T) {
	l := newSessionList()
	l.SetSessions(sampleSessions())

	l.MoveUp() // already at top
	if s, _ := l.Selected(); s.ID != "s1" {
		t.Errorf("selected = %q, want s1", s.ID)
	}

	l.MoveDown()
	l.MoveDown()
	l.MoveDown() // clamped at bottom
	if s, _ := l.Selected(); s.ID != "s3" {
		t.Errorf("selected = %q, want s3", s.ID)
	}
}

func TestSessionListKeepsSelectionAcrossUpdate(t *testing.T) {
	l := newSessionList()
	l.SetSessions(sampleSessions())
	l.MoveDown() // s2

	// Reordered list, same sessions.
	l.SetSessions([]api.Session{
		{ID: "s3", Title: "rna quality check"},
		{ID: "s2", Title: "Variant calling"},
		{ID: "s1", Title: "RNA-seq batch 12"},
	})

	if s, ok := l.Selected(); !ok || s.ID != "s2" {
		t.Errorf("selected = %q, want s2", s.ID)
	}
}

func TestSessionListSelectedEmpty(t *testing.T) {
	l := newSessionList()
	if _, ok := l.Selected(); ok {
		t.Error("Selected() on empty list should report no selection")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "fits", in: "short", max: 10, want: "short"},
		{name: "truncated", in: "a very long title here", max: 10, want: "a very lo…"},
		{name: "non-positive max keeps input", in: "abc", max: 0, want: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncate(tt.in, tt.max); got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}
