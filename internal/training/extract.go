// Package training turns fetched pages and pasted text into the inputs of a
// style profile.
package training

import (
	"strings"

	"golang.org/x/net/html"
)

var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"head":     true,
}

var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"article": true, "section": true, "blockquote": true, "pre": true,
	"tr": true, "table": true, "header": true, "footer": true, "main": true,
}

// ExtractPlainText strips every tag from document and returns the readable
// text. Script and style bodies are dropped, entities are decoded and block
// elements become line breaks. Runs of whitespace within a line collapse to a
// single space.
func ExtractPlainText(document string) string {
	if strings.TrimSpace(document) == "" {
		return ""
	}
	root, err := html.Parse(strings.NewReader(document))
	if err != nil {
		// html.Parse only fails on reader errors, which a strings.Reader never
		// returns.
		return ""
	}

	var lines []string
	var current strings.Builder
	flush := func() {
		line := strings.Join(strings.Fields(current.String()), " ")
		if line != "" {
			lines = append(lines, line)
		}
		current.Reset()
	}

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		switch node.Type {
		case html.TextNode:
			current.WriteString(node.Data)
			return
		case html.CommentNode, html.DoctypeNode:
			return
		case html.ElementNode:
			if skippedElements[node.Data] {
				return
			}
		}
		isBlock := node.Type == html.ElementNode && blockElements[node.Data]
		if isBlock {
			flush()
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
		if isBlock {
			flush()
		}
	}
	walk(root)
	flush()

	return strings.Join(lines, "\n")
}
