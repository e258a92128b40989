package chat

import (
	"strings"
	"time"

	"github.com/strandtools/strand/internal/api"
	"github.com/strandtools/strand/internal/plan"
	"github.com/strandtools/strand/internal/stream"
)

// doneFallback is the assistant content used when a turn completes
// without emitting any token.
const doneFallback = "Done."

// Turn accumulates one assistant reply as it streams: text is
// append-only, the plan payload is replaced wholesale on each plan
// envelope.
type Turn struct {
	content  strings.Builder
	planData string
}

// NewTurn returns an empty accumulator.
func NewTurn() *Turn {
	return &Turn{}
}

// AppendToken appends delta text and returns the full accumulated
// content so far.
func (t *Turn) AppendToken(delta string) string {
	t.content.WriteString(delta)
	return t.content.String()
}

// SetPlan replaces the accumulated plan payload.
func (t *Turn) SetPlan(planData string) {
	t.planData = planData
}

// Content returns the accumulated text.
func (t *Turn) Content() string {
	return t.content.String()
}

// PlanData returns the latest accumulated plan payload, or "".
func (t *Turn) PlanData() string {
	return t.planData
}

// CurrentPlan parses the accumulated plan payload for live rendering.
// Returns nil if there is no payload or it doesn't parse; a bad plan
// suppresses the plan card, never the message.
func (t *Turn) CurrentPlan() *plan.Plan {
	if t.planData == "" {
		return nil
	}
	p, err := plan.Parse(t.planData)
	if err != nil {
		return nil
	}
	return p
}

// Finalize builds the committed assistant message from the accumulated
// state and the terminating done envelope. Empty content falls back to
// a literal acknowledgment; a plan payload on the done envelope takes
// precedence over the accumulated one.
func (t *Turn) Finalize(done stream.Envelope) api.Message {
	content := t.content.String()
	if content == "" {
		content = doneFallback
	}

	planData := t.planData
	if done.PlanData != "" {
		planData = done.PlanData
	}

	now := time.Now()
	return api.Message{
		Role:      api.RoleAssistant,
		Content:   content,
		CreatedAt: &now,
		PlanData:  planData,
	}
}
