package api

import "time"

// Session is a persisted conversation thread scoped to a project.
type Session struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Summary      string    `json:"summary,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

// Message is one entry in a session's history. ID is empty for an
// optimistic message the server has not yet confirmed.
type Message struct {
	ID        string     `json:"id,omitempty"`
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	PlanData  string     `json:"plan_data,omitempty"`
	TaskID    string     `json:"task_id,omitempty"`
}

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// StreamRequest starts an assistant turn.
type StreamRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	ProjectID string `json:"project_id"`
}

// CreateSessionRequest creates a conversation in a project.
type CreateSessionRequest struct {
	Title string `json:"title"`
}

// RenameSessionRequest updates a conversation title.
type RenameSessionRequest struct {
	Title string `json:"title"`
}

// UpdateMessageRequest edits a committed message's content.
type UpdateMessageRequest struct {
	Content string `json:"content"`
}

// ConfirmRequest submits a confirmed plan for execution.
type ConfirmRequest struct {
	PlanData  string `json:"plan_data"`
	SessionID string `json:"session_id"`
}

// ConfirmResponse identifies the tracked analysis the backend started.
type ConfirmResponse struct {
	AnalysisID string `json:"analysis_id"`
}
