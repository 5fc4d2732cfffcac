package export

import (
	"bytes"
	"embed"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var draftTemplate = template.Must(template.New("draft.html").Funcs(template.FuncMap{
	"formatDate": func(t time.Time, layout string) string {
		return t.Format(layout)
	},
}).ParseFS(templateFS, "templates/draft.html"))

type TemplateData struct {
	Title       string
	Topic       string
	Version     int
	CreatedAt   time.Time
	ContentHTML template.HTML
}

// RenderDraftHTML renders a full standalone page for a draft.
func RenderDraftHTML(draft Draft) (string, error) {
	data := TemplateData{
		Title:   Title(draft.Content, draft.Topic),
		Topic:   draft.Topic,
		Version: draft.Version,
		// MarkdownToHTML escapes all text it emits
		ContentHTML: template.HTML(MarkdownToHTML(draft.Content)),
		CreatedAt:   draft.CreatedAt,
	}
	var buf bytes.Buffer
	if err := draftTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
