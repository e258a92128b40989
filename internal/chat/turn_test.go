package chat

import (
	"testing"

	"github.com/strandtools/strand/internal/plan"
	"github.com/strandtools/strand/internal/stream"
)

func TestTurn_AccumulatesTokens(t *testing.T) {
	turn := NewTurn()
	turn.AppendToken("Hel")
	got := turn.AppendToken("lo")
	if got != "Hello" {
		t.Errorf("accumulated content = %q, want %q", got, "Hello")
	}
}

func TestTurn_PlanReplacedNotMerged(t *testing.T) {
	turn := NewTurn()
	turn.SetPlan(`{"type":"single","workflow_name":"bwa"}`)
	turn.SetPlan(`{"type":"multi","steps":[{"step":1,"tool":"fastqc"}]}`)

	p := turn.CurrentPlan()
	if p == nil || p.Type != plan.TypeMulti {
		t.Errorf("CurrentPlan() = %+v, want the latest multi plan", p)
	}
}

func TestTurn_CurrentPlanSuppressedOnBadPayload(t *testing.T) {
	turn := NewTurn()
	turn.SetPlan(`{broken`)
	if p := turn.CurrentPlan(); p != nil {
		t.Errorf("CurrentPlan() = %+v, want nil for unparsable payload", p)
	}
	// The raw payload is still retained for the committed message.
	if turn.PlanData() != `{broken` {
		t.Errorf("PlanData() = %q", turn.PlanData())
	}
}

func TestTurn_Finalize(t *testing.T) {
	tests := []struct {
		name         string
		tokens       []string
		planData     string
		done         stream.Envelope
		wantContent  string
		wantPlanData string
	}{
		{
			name:         "tokens and accumulated plan",
			tokens:       []string{"Hel", "lo"},
			planData:     `{"type":"single","strategy":"x"}`,
			done:         stream.Envelope{Type: stream.TypeDone},
			wantContent:  "Hello",
			wantPlanData: `{"type":"single","strategy":"x"}`,
		},
		{
			name:        "empty content falls back to Done.",
			done:        stream.Envelope{Type: stream.TypeDone},
			wantContent: "Done.",
		},
		{
			name:         "done plan takes precedence",
			tokens:       []string{"ok"},
			planData:     `{"type":"single","strategy":"old"}`,
			done:         stream.Envelope{Type: stream.TypeDone, PlanData: `{"type":"single","strategy":"new"}`},
			wantContent:  "ok",
			wantPlanData: `{"type":"single","strategy":"new"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			turn := NewTurn()
			for _, tok := range tt.tokens {
				turn.AppendToken(tok)
			}
			if tt.planData != "" {
				turn.SetPlan(tt.planData)
			}

			msg := turn.Finalize(tt.done)
			if msg.Content != tt.wantContent {
				t.Errorf("Content = %q, want %q", msg.Content, tt.wantContent)
			}
			if msg.PlanData != tt.wantPlanData {
				t.Errorf("PlanData = %q, want %q", msg.PlanData, tt.wantPlanData)
			}
			if msg.Role != "assistant" {
				t.Errorf("Role = %q", msg.Role)
			}
			if msg.CreatedAt == nil {
				t.Error("CreatedAt not set")
			}
		})
	}
}
