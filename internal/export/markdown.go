package export

import (
	"html"
	"strings"
)

// MarkdownToHTML converts the markdown subset drafts are written in:
// ATX headings, "- " list items, **bold** spans and blank-line paragraphs.
func MarkdownToHTML(markdown string) string {
	var b strings.Builder
	var paragraph []string
	inList := false

	flushParagraph := func() {
		if len(paragraph) == 0 {
			return
		}
		b.WriteString("<p>")
		b.WriteString(renderInline(strings.Join(paragraph, " ")))
		b.WriteString("</p>")
		paragraph = paragraph[:0]
	}
	closeList := func() {
		if inList {
			b.WriteString("</ul>")
			inList = false
		}
	}

	for _, raw := range strings.Split(markdown, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			flushParagraph()
			closeList()
		case strings.HasPrefix(line, "#"):
			flushParagraph()
			closeList()
			level := 0
			for level < len(line) && level < 6 && line[level] == '#' {
				level++
			}
			text := strings.TrimSpace(line[level:])
			tag := "h" + string(rune('0'+level))
			b.WriteString("<" + tag + ">" + renderInline(text) + "</" + tag + ">")
		case strings.HasPrefix(line, "- "):
			flushParagraph()
			if !inList {
				b.WriteString("<ul>")
				inList = true
			}
			b.WriteString("<li>" + renderInline(strings.TrimPrefix(line, "- ")) + "</li>")
		default:
			closeList()
			paragraph = append(paragraph, line)
		}
	}
	flushParagraph()
	closeList()
	return b.String()
}

// renderInline escapes text and turns **x** into <strong>x</strong>. An
// unpaired marker is left as literal text.
func renderInline(text string) string {
	parts := strings.Split(text, "**")
	if len(parts)%2 == 0 {
		return html.EscapeString(text)
	}
	var b strings.Builder
	for i, part := range parts {
		if i%2 == 1 {
			b.WriteString("<strong>" + html.EscapeString(part) + "</strong>")
			continue
		}
		b.WriteString(html.EscapeString(part))
	}
	return b.String()
}

// Title returns the first level-one heading of a draft, or fallback.
func Title(markdown, fallback string) string {
	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return fallback
}
