package plan

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		planData string
		wantType Type
		wantErr  error
	}{
		{
			name:     "single",
			planData: `{"type":"single","strategy":"align reads","workflow_name":"bwa-mem","params":{"genome":"hg38"}}`,
			wantType: TypeSingle,
		},
		{
			name:     "missing type defaults to single",
			planData: `{"strategy":"align reads","workflow_ref":"wf-12"}`,
			wantType: TypeSingle,
		},
		{
			name:     "multi",
			planData: `{"type":"multi","strategy":"qc then align","steps":[{"step":1,"tool":"fastqc"},{"step":2,"tool":"bwa-mem"}]}`,
			wantType: TypeMulti,
		},
		{
			name:     "tool_choice",
			planData: `{"type":"tool_choice","strategy":"pick one","matched_tools":[{"tool_id":"t1","tool_name":"salmon","match_score":0.92}]}`,
			wantType: TypeToolChoice,
		},
		{
			name:     "tool_recommendation",
			planData: `{"type":"tool_recommendation","matched_tools":[{"tool_id":"t2","tool_name":"star"}]}`,
			wantType: TypeToolRecommendation,
		},
		{
			name:     "empty",
			planData: "   ",
			wantErr:  ErrEmptyPlan,
		},
		{
			name:     "invalid json",
			planData: `{"type":`,
		},
		{
			name:     "unknown type",
			planData: `{"type":"quantum"}`,
			wantErr:  ErrUnknownType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(tt.planData)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if tt.wantType == "" {
				if err == nil {
					t.Fatal("Parse() succeeded on malformed input")
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if p.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", p.Type, tt.wantType)
			}
		})
	}
}

func TestParse_VariantFields(t *testing.T) {
	p, err := Parse(`{"type":"multi","strategy":"s","steps":[{"step":1,"tool":"fastqc","params":{"threads":4}},{"step":2,"tool":"multiqc"}]}`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if p.Single != nil || p.Tools != nil {
		t.Error("non-multi variants populated")
	}
	if len(p.Multi.Steps) != 2 || p.Multi.Steps[1].Tool != "multiqc" {
		t.Errorf("steps = %+v", p.Multi.Steps)
	}
}

func TestPlan_RoundTrip(t *testing.T) {
	inputs := map[string]string{
		"single":      `{"type":"single","strategy":"x","workflow_name":"bwa","params":{"genome":"hg38","threads":8}}`,
		"multi":       `{"type":"multi","strategy":"y","steps":[{"step":1,"tool":"fastqc","params":{"k":"v"}}]}`,
		"tool_choice": `{"type":"tool_choice","strategy":"z","matched_tools":[{"tool_id":"t1","tool_name":"salmon","match_score":0.9,"inferred_params":{"index":"tx"},"description":"quant"}]}`,
	}

	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			first, err := Parse(data)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			encoded, err := json.Marshal(first)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			second, err := Parse(string(encoded))
			if err != nil {
				t.Fatalf("re-Parse() error = %v", err)
			}
			if !reflect.DeepEqual(first, second) {
				t.Errorf("round trip lost fields:\n first: %+v\nsecond: %+v", first, second)
			}
		})
	}
}

func TestPlan_UnmarshalJSON(t *testing.T) {
	var p Plan
	if err := json.Unmarshal([]byte(`{"type":"single","workflow_ref":"wf-9"}`), &p); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if p.Single == nil || p.Single.Workflow() != "wf-9" {
		t.Errorf("plan = %+v", p)
	}
}

func TestPlan_IsMulti(t *testing.T) {
	multi := &Plan{Type: TypeMulti}
	if !multi.IsMulti() {
		t.Error("multi plan not routed to chain execution")
	}
	for _, typ := range []Type{TypeSingle, TypeToolChoice, TypeToolRecommendation} {
		if (&Plan{Type: typ}).IsMulti() {
			t.Errorf("%s plan routed to chain execution", typ)
		}
	}
}

func TestPlan_Summary(t *testing.T) {
	tests := []struct {
		name string
		plan *Plan
		want string
	}{
		{"single with workflow", &Plan{Type: TypeSingle, Single: &Single{WorkflowName: "bwa"}}, "run bwa"},
		{"single bare", &Plan{Type: TypeSingle, Single: &Single{}}, "run workflow"},
		{"multi", &Plan{Type: TypeMulti, Multi: &MultiStep{Steps: []Step{{}, {}, {}}}}, "3-step chain"},
		{"tool choice", &Plan{Type: TypeToolChoice, Tools: &ToolMatch{MatchedTools: []MatchedTool{{}, {}}}}, "choose from 2 tools"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.plan.Summary(); got != tt.want {
				t.Errorf("Summary() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPlan_RenderYAML(t *testing.T) {
	p, err := Parse(`{"type":"multi","strategy":"qc","steps":[{"step":1,"tool":"fastqc"}]}`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	out, err := p.RenderYAML()
	if err != nil {
		t.Fatalf("RenderYAML() error = %v", err)
	}
	for _, want := range []string{"type: multi", "strategy: qc", "tool: fastqc"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderYAML() missing %q in:\n%s", want, out)
		}
	}
}

func TestPlan_RenderYAMLKeepsWireKeys(t *testing.T) {
	p, err := Parse(`{"type":"tool_choice","strategy":"pick aligner","matched_tools":[{"tool_id":"t1","tool_name":"bwa-mem","match_score":0.9,"inferred_params":{"genome":"hg38"}}]}`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	out, err := p.RenderYAML()
	if err != nil {
		t.Fatalf("RenderYAML() error = %v", err)
	}
	for _, want := range []string{"tool_id: t1", "tool_name: bwa-mem", "match_score: 0.9", "inferred_params:"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderYAML() missing %q in:\n%s", want, out)
		}
	}
	for _, bad := range []string{"toolid", "toolname", "matchscore", "inferredparams"} {
		if strings.Contains(out, bad) {
			t.Errorf("RenderYAML() emitted lowercased field name %q in:\n%s", bad, out)
		}
	}
}
