// Package writing renders drafts for writing requests.
package writing

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const MaxDraftContentLen = 20000

type DraftInput struct {
	Topic        string
	TitleHint    *string
	KeyPoints    *string
	Constraints  *string
	StyleSummary string
}

// GenerateDraft renders a markdown draft. The same input always yields the
// same output, and a title hint appears verbatim as the heading.
func GenerateDraft(in DraftInput) string {
	topic := in.Topic
	title := topic + ": A Comprehensive Guide"
	if hint := deref(in.TitleHint); hint != "" {
		title = hint
	}

	var b strings.Builder
	section := func(heading string, paragraphs ...string) {
		fmt.Fprintf(&b, "## %s\n\n", heading)
		for _, p := range paragraphs {
			b.WriteString(p)
			b.WriteString("\n\n")
		}
	}

	fmt.Fprintf(&b, "# %s\n\n", title)

	intro := fmt.Sprintf("This article explores %s.", topic)
	if in.StyleSummary != "" {
		intro += " " + in.StyleSummary
	}
	section("Introduction", intro)

	if points := splitKeyPoints(deref(in.KeyPoints)); len(points) > 0 {
		b.WriteString("## Key Points\n\n")
		for _, point := range points {
			fmt.Fprintf(&b, "- **%s**: An important aspect of %s worth examining.\n", point, topic)
		}
		b.WriteString("\n")
	}

	section("Discussion",
		fmt.Sprintf("When examining %s, multiple dimensions come into play. Understanding the nuances helps form a well-rounded perspective on the subject.", topic),
		fmt.Sprintf("The topic of %s has gained significant attention. Practitioners and researchers alike have contributed valuable insights.", topic),
	)

	if constraints := deref(in.Constraints); constraints != "" {
		section("Scope", "This piece is scoped to: "+constraints)
	}

	section("Conclusion",
		fmt.Sprintf("In summary, %s is a rich and multifaceted subject. The perspectives presented here lay a foundation for further exploration.", topic),
	)

	return truncate(strings.TrimRight(b.String(), "\n")+"\n", MaxDraftContentLen)
}

// splitKeyPoints accepts comma or newline separated points.
func splitKeyPoints(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == '\n' })
	points := make([]string, 0, len(fields))
	for _, f := range fields {
		if p := strings.TrimSpace(f); p != "" {
			points = append(points, p)
		}
	}
	return points
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
