package mdx

import (
	"strings"
	"unicode"
)

// Element is one structural block of a document: Heading, Paragraph or CodeBlock.
type Element interface {
	element()
}

// Heading is a `#`-prefixed title line. Level is the number of leading `#`.
type Heading struct {
	Level int
	Text  string
}

// Paragraph holds unprocessed paragraph text with newlines folded to spaces.
type Paragraph struct {
	RawText string
}

// CodeBlock is a fenced block. An empty Source means the fence carried no label.
type CodeBlock struct {
	Source string
	Code   string
}

func (Heading) element()   {}
func (Paragraph) element() {}
func (CodeBlock) element() {}

// ID derives an anchor id from the heading text.
func (h Heading) ID() string {
	var b strings.Builder
	for _, r := range h.Text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte('-')
		}
	}
	return b.String()
}

// HasSource reports whether the block carries a source label.
func (c CodeBlock) HasSource() bool {
	return c.Source != ""
}
