// Package plan models the machine-actionable execution plans the
// assistant embeds in its replies. A plan is parsed from a JSON-encoded
// string once, at the boundary, into a closed tagged union; nothing
// downstream pokes at dynamic fields.
package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Type discriminates the plan union.
type Type string

const (
	TypeSingle             Type = "single"
	TypeMulti              Type = "multi"
	TypeToolChoice         Type = "tool_choice"
	TypeToolRecommendation Type = "tool_recommendation"
)

// Errors returned by Parse.
var (
	ErrEmptyPlan   = errors.New("plan: empty plan data")
	ErrUnknownType = errors.New("plan: unknown plan type")
)

// Single is a one-shot workflow execution.
type Single struct {
	Strategy     string         `json:"strategy,omitempty"`
	WorkflowName string         `json:"workflow_name,omitempty"`
	WorkflowRef  string         `json:"workflow_ref,omitempty"`
	Params       map[string]any `json:"params,omitempty"`
}

// Workflow returns whichever workflow identifier the plan carries.
func (s *Single) Workflow() string {
	if s.WorkflowName != "" {
		return s.WorkflowName
	}
	return s.WorkflowRef
}

// Step is one stage of a multi-step chain.
type Step struct {
	Step   int            `json:"step" yaml:"step"`
	Tool   string         `json:"tool" yaml:"tool"`
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// MultiStep is an ordered chain of tool executions tracked as one task.
type MultiStep struct {
	Strategy string `json:"strategy,omitempty"`
	Steps    []Step `json:"steps"`
}

// MatchedTool is a candidate tool offered to the user.
type MatchedTool struct {
	ToolID         string         `json:"tool_id" yaml:"tool_id"`
	ToolName       string         `json:"tool_name" yaml:"tool_name"`
	MatchScore     float64        `json:"match_score,omitempty" yaml:"match_score,omitempty"`
	InferredParams map[string]any `json:"inferred_params,omitempty" yaml:"inferred_params,omitempty"`
	Description    string         `json:"description,omitempty" yaml:"description,omitempty"`
}

// ToolMatch holds the candidates for tool_choice and tool_recommendation
// plans; the two types share a shape and differ only in intent.
type ToolMatch struct {
	Strategy     string        `json:"strategy,omitempty"`
	MatchedTools []MatchedTool `json:"matched_tools"`
}

// Plan is the closed union. Exactly one variant field is non-nil,
// matching Type.
type Plan struct {
	Type   Type
	Single *Single
	Multi  *MultiStep
	Tools  *ToolMatch
}

// wirePlan is the flat JSON shape the backend emits. All variants share
// it; Parse validates it into the union.
type wirePlan struct {
	Type         string         `json:"type,omitempty"`
	Strategy     string         `json:"strategy,omitempty"`
	WorkflowName string         `json:"workflow_name,omitempty"`
	WorkflowRef  string         `json:"workflow_ref,omitempty"`
	Params       map[string]any `json:"params,omitempty"`
	Steps        []Step         `json:"steps,omitempty"`
	MatchedTools []MatchedTool  `json:"matched_tools,omitempty"`
}

// Parse decodes a JSON-encoded plan string. A missing type defaults to
// single; an unrecognized type is an error. Callers render nothing on
// error rather than failing the surrounding message.
func Parse(planData string) (*Plan, error) {
	if strings.TrimSpace(planData) == "" {
		return nil, ErrEmptyPlan
	}

	var w wirePlan
	if err := json.Unmarshal([]byte(planData), &w); err != nil {
		return nil, fmt.Errorf("plan: decode: %w", err)
	}

	typ := Type(w.Type)
	if w.Type == "" {
		typ = TypeSingle
	}

	switch typ {
	case TypeSingle:
		return &Plan{Type: TypeSingle, Single: &Single{
			Strategy:     w.Strategy,
			WorkflowName: w.WorkflowName,
			WorkflowRef:  w.WorkflowRef,
			Params:       w.Params,
		}}, nil
	case TypeMulti:
		return &Plan{Type: TypeMulti, Multi: &MultiStep{
			Strategy: w.Strategy,
			Steps:    w.Steps,
		}}, nil
	case TypeToolChoice, TypeToolRecommendation:
		return &Plan{Type: typ, Tools: &ToolMatch{
			Strategy:     w.Strategy,
			MatchedTools: w.MatchedTools,
		}}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, w.Type)
	}
}

// MarshalJSON re-emits the flat wire shape, so a parsed plan round-trips
// without field loss.
func (p *Plan) MarshalJSON() ([]byte, error) {
	w := wirePlan{Type: string(p.Type)}
	switch p.Type {
	case TypeSingle:
		if p.Single != nil {
			w.Strategy = p.Single.Strategy
			w.WorkflowName = p.Single.WorkflowName
			w.WorkflowRef = p.Single.WorkflowRef
			w.Params = p.Single.Params
		}
	case TypeMulti:
		if p.Multi != nil {
			w.Strategy = p.Multi.Strategy
			w.Steps = p.Multi.Steps
		}
	case TypeToolChoice, TypeToolRecommendation:
		if p.Tools != nil {
			w.Strategy = p.Tools.Strategy
			w.MatchedTools = p.Tools.MatchedTools
		}
	}
	return json.Marshal(w)
}

// UnmarshalJSON lets a Plan be decoded directly from embedded JSON.
func (p *Plan) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*p = *parsed
	return nil
}

// IsMulti reports whether the plan routes to the chain-execution
// endpoint. Everything else goes to single execution.
func (p *Plan) IsMulti() bool {
	return p.Type == TypeMulti
}

// Strategy returns the strategy text of whichever variant is set.
func (p *Plan) Strategy() string {
	switch p.Type {
	case TypeSingle:
		if p.Single != nil {
			return p.Single.Strategy
		}
	case TypeMulti:
		if p.Multi != nil {
			return p.Multi.Strategy
		}
	case TypeToolChoice, TypeToolRecommendation:
		if p.Tools != nil {
			return p.Tools.Strategy
		}
	}
	return ""
}

// Summary returns a one-line description for list views and the plan
// card header.
func (p *Plan) Summary() string {
	switch p.Type {
	case TypeSingle:
		if p.Single != nil && p.Single.Workflow() != "" {
			return fmt.Sprintf("run %s", p.Single.Workflow())
		}
		return "run workflow"
	case TypeMulti:
		n := 0
		if p.Multi != nil {
			n = len(p.Multi.Steps)
		}
		return fmt.Sprintf("%d-step chain", n)
	case TypeToolChoice:
		return fmt.Sprintf("choose from %d tools", p.toolCount())
	case TypeToolRecommendation:
		return fmt.Sprintf("%d recommended tools", p.toolCount())
	}
	return string(p.Type)
}

func (p *Plan) toolCount() int {
	if p.Tools == nil {
		return 0
	}
	return len(p.Tools.MatchedTools)
}
