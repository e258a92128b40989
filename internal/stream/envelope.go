// Package stream decodes the chat streaming protocol: a chunked HTTP
// response body carrying newline-terminated "data: <json>" lines.
package stream

import "encoding/json"

// EnvelopeType discriminates the streamed event union.
type EnvelopeType string

const (
	// TypeToken carries an incremental piece of assistant text.
	TypeToken EnvelopeType = "token"

	// TypePlan carries a JSON-encoded execution plan. A later plan
	// envelope replaces an earlier one wholesale.
	TypePlan EnvelopeType = "plan"

	// TypeDone terminates the turn, optionally carrying a final plan.
	TypeDone EnvelopeType = "done"

	// TypeError terminates the turn with a server-reported failure.
	TypeError EnvelopeType = "error"
)

// Envelope is one discrete event in the streamed protocol.
type Envelope struct {
	Type     EnvelopeType `json:"type"`
	Content  string       `json:"content,omitempty"`   // token
	PlanData string       `json:"plan_data,omitempty"` // plan, done
	Message  string       `json:"message,omitempty"`   // error
}

// IsTerminal reports whether the envelope ends the turn.
func (e Envelope) IsTerminal() bool {
	return e.Type == TypeDone || e.Type == TypeError
}

// parseEnvelope decodes a single data payload. Unknown types are returned
// as-is; the dispatcher ignores what it doesn't recognize.
func parseEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, err
	}
	return env, nil
}
