package plan

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// renderable flattens a plan for YAML display. YAML reads better than
// raw JSON in a terminal, and keeps field names stable across variants.
type renderable struct {
	Type         string         `yaml:"type"`
	Strategy     string         `yaml:"strategy,omitempty"`
	Workflow     string         `yaml:"workflow,omitempty"`
	Params       map[string]any `yaml:"params,omitempty"`
	Steps        []Step         `yaml:"steps,omitempty"`
	MatchedTools []MatchedTool  `yaml:"matched_tools,omitempty"`
}

// RenderYAML returns a human-readable YAML rendering of the plan for
// `strand plan show` and the TUI plan card detail.
func (p *Plan) RenderYAML() (string, error) {
	r := renderable{Type: string(p.Type), Strategy: p.Strategy()}
	switch p.Type {
	case TypeSingle:
		if p.Single != nil {
			r.Workflow = p.Single.Workflow()
			r.Params = p.Single.Params
		}
	case TypeMulti:
		if p.Multi != nil {
			r.Steps = p.Multi.Steps
		}
	case TypeToolChoice, TypeToolRecommendation:
		if p.Tools != nil {
			r.MatchedTools = p.Tools.MatchedTools
		}
	}

	out, err := yaml.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("plan: render: %w", err)
	}
	return strings.TrimRight(string(out), "\n"), nil
}
