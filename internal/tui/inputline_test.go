package tui

import "testing"

func TestInputLineTakeRecordsHistory(t *testing.T) {
	i := newInputLine()
	i.SetValue("first")
	if got := i.Take(); got != "first" {
		t.Fatalf("Take() = %q, want %q", got, "first")
	}
	if i.Value() != "" {
		t.Error("composer should be empty after Take")
	}

	i.SetValue("second")
	i.Take()

	i.HistoryPrev()
	if i.Value() != "second" {
		t.Errorf("after HistoryPrev, value = %q, want %q", i.Value(), "second")
	}
	i.HistoryPrev()
	if i.Value() != "first" {
		t.Errorf("after second HistoryPrev, value = %q, want %q", i.Value(), "first")
	}
	i.HistoryPrev() // clamped at oldest
	if i.Value() != "first" {
		t.Errorf("history should clamp at oldest, value = %q", i.Value())
	}

	i.HistoryNext()
	if i.Value() != "second" {
		t.Errorf("after HistoryNext, value = %q, want %q", i.Value(), "second")
	}
	i.HistoryNext() // past newest clears
	if i.Value() != "" {
		t.Errorf("navigating past newest should clear, value = %q", i.Value())
	}
}

func TestInputLineEmptyTakeNotRecorded(t *testing.T) {
	i := newInputLine()
	i.Take()
	i.HistoryPrev()
	if i.Value() != "" {
		t.Errorf("empty take should not enter history, value = %q", i.Value())
	}
}
