package mdx

import (
	"strings"
)

// Format serializes elements back to markup. Parsing the result yields the same
// elements.
func Format(elements []Element) string {
	blocks := make([]string, 0, len(elements))
	for _, el := range elements {
		switch e := el.(type) {
		case Heading:
			blocks = append(blocks, strings.Repeat("#", e.Level)+" "+e.Text)
		case Paragraph:
			blocks = append(blocks, e.RawText)
		case CodeBlock:
			var b strings.Builder
			b.WriteString(fence)
			if e.HasSource() {
				b.WriteString("@" + e.Source)
			}
			b.WriteByte('\n')
			if e.Code != "" {
				b.WriteString(strings.ReplaceAll(e.Code, fence, `\`+fence))
				b.WriteByte('\n')
			}
			b.WriteString(fence)
			blocks = append(blocks, b.String())
		}
	}
	return strings.Join(blocks, "\n\n")
}
