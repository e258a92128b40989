package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"

	"github.com/strandtools/strand/internal/api"
	"github.com/strandtools/strand/internal/chat"
	"github.com/strandtools/strand/internal/plan"
)

// chatView renders the active conversation: committed messages, the text
// of an in-flight assistant turn, and the current plan card.
type chatView struct {
	viewport viewport.Model

	messages  []chat.Message
	streaming string
	plan      *plan.Plan
	planData  string

	width  int
	height int
}

func newChatView() chatView {
	return chatView{
		viewport: viewport.New(0, 0),
	}
}

func (v *chatView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.viewport.Width = width
	v.viewport.Height = height
	v.refresh()
}

func (v *chatView) SetMessages(messages []chat.Message) {
	v.messages = messages
	v.refresh()
	v.viewport.GotoBottom()
}

func (v *chatView) SetStreaming(content string) {
	v.streaming = content
	v.refresh()
	v.viewport.GotoBottom()
}

func (v *chatView) SetPlan(p *plan.Plan, planData string) {
	v.plan = p
	v.planData = planData
	v.refresh()
	v.viewport.GotoBottom()
}

// ClearTurn drops in-flight turn state after a turn commits or fails.
// Plan state is kept so the card stays visible for confirmation.
func (v *chatView) ClearTurn() {
	v.streaming = ""
	v.refresh()
}

// ClearPlan drops the plan card, typically after confirmation.
func (v *chatView) ClearPlan() {
	v.plan = nil
	v.planData = ""
	v.refresh()
}

// Plan returns the plan currently shown, if any.
func (v *chatView) Plan() (*plan.Plan, string) {
	return v.plan, v.planData
}

func (v *chatView) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return cmd
}

func (v *chatView) refresh() {
	wrap := v.width - 2
	if wrap < 20 {
		wrap = 20
	}

	var b strings.Builder
	for _, m := range v.messages {
		b.WriteString(renderMessage(m, wrap))
		b.WriteString("\n\n")
	}

	if v.streaming != "" {
		b.WriteString(chatAssistantStyle.Render("strand"))
		b.WriteString("\n")
		b.WriteString(wordwrap.String(v.streaming, wrap))
		b.WriteString(chatPendingStyle.Render(" ▌"))
		b.WriteString("\n\n")
	}

	if v.plan != nil {
		b.WriteString(renderPlanCard(v.plan, wrap))
		b.WriteString("\n")
	}

	content := strings.TrimRight(b.String(), "\n")
	if content == "" {
		content = chatEmptyStyle.Render("Send a message to begin.")
	}
	v.viewport.SetContent(content)
}

func renderMessage(m chat.Message, wrap int) string {
	var b strings.Builder
	switch m.Role {
	case api.RoleUser:
		label := chatUserStyle.Render("you")
		switch m.State {
		case chat.LifecyclePending:
			label += chatPendingStyle.Render(" (sending…)")
		case chat.LifecycleFailed:
			label += chatFailedStyle.Render(" (failed)")
		}
		b.WriteString(label)
	default:
		b.WriteString(chatAssistantStyle.Render("strand"))
	}
	b.WriteString("\n")
	b.WriteString(wordwrap.String(m.Content, wrap))
	return b.String()
}

func renderPlanCard(p *plan.Plan, wrap int) string {
	var b strings.Builder
	b.WriteString(planTitleStyle.Render("Proposed plan"))
	b.WriteString("\n")
	b.WriteString(planBodyStyle.Render(wordwrap.String(p.Summary(), wrap-4)))

	yml, err := p.RenderYAML()
	if err == nil {
		b.WriteString("\n\n")
		b.WriteString(planBodyStyle.Render(strings.TrimRight(yml, "\n")))
	}

	b.WriteString("\n")
	b.WriteString(planHintStyle.Render("ctrl+r to run"))
	return planCardStyle.Width(wrap).Render(b.String())
}

func (v *chatView) View() string {
	return v.viewport.View()
}
