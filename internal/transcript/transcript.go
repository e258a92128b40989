// Package transcript exports a session's message history as a
// standalone HTML page, rendering assistant markdown with goldmark.
package transcript

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/strandtools/strand/internal/api"
	"github.com/strandtools/strand/internal/plan"
)

// pageTemplate is the exported transcript layout.
const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; }
.message { margin: 1.5rem 0; }
.role { font-weight: bold; color: #555; }
.plan { background: #f4f4f4; border-left: 3px solid #888; padding: 0.5rem 1rem; white-space: pre-wrap; font-family: monospace; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{range .Messages}}<div class="message">
<div class="role">{{.Role}}</div>
<div class="body">{{.Body}}</div>
{{if .Plan}}<pre class="plan">{{.Plan}}</pre>{{end}}
</div>
{{end}}<footer>Exported {{.ExportedAt}}</footer>
</body>
</html>
`

// Writer renders transcripts.
type Writer struct {
	md   goldmark.Markdown
	tmpl *template.Template
}

// NewWriter creates a transcript writer.
func NewWriter() *Writer {
	return &Writer{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.Table,
				extension.Linkify,
			),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
			),
		),
		tmpl: template.Must(template.New("transcript").Parse(pageTemplate)),
	}
}

type pageData struct {
	Title      string
	Messages   []messageData
	ExportedAt string
}

type messageData struct {
	Role string
	Body template.HTML
	Plan string
}

// Write renders the session transcript to w.
func (t *Writer) Write(w io.Writer, session api.Session, messages []api.Message) error {
	data := pageData{
		Title:      session.Title,
		ExportedAt: time.Now().Format(time.RFC1123),
	}

	for _, m := range messages {
		var buf bytes.Buffer
		if err := t.md.Convert([]byte(m.Content), &buf); err != nil {
			return fmt.Errorf("render message: %w", err)
		}

		md := messageData{
			Role: m.Role,
			Body: template.HTML(buf.String()),
		}
		// An unparsable plan suppresses the plan block, nothing more.
		if p, err := plan.Parse(m.PlanData); err == nil {
			if rendered, err := p.RenderYAML(); err == nil {
				md.Plan = rendered
			}
		}
		data.Messages = append(data.Messages, md)
	}

	return t.tmpl.Execute(w, data)
}
