package mdx

import "strings"

const notePrefix = "@note "

// SpanKind identifies the kind of an inline span.
type SpanKind int

const (
	SpanText SpanKind = iota
	SpanNote
	SpanCode
)

func (k SpanKind) String() string {
	switch k {
	case SpanNote:
		return "note"
	case SpanCode:
		return "code"
	default:
		return "text"
	}
}

// Span is a resolved piece of paragraph text. Number is set for notes only.
type Span struct {
	Kind   SpanKind
	Text   string
	Number int
}

// NoteNumberer hands out note numbers. Each call returns the next number.
type NoteNumberer interface {
	NextNoteNumber() int
}

// Resolve splits paragraph text into text, note and inline code spans.
//
// The text is scanned once, left to right. At each unescaped backtick the closing
// unescaped backtick is located; a span whose content starts with "@note " becomes
// a note and takes the next number from notes, any other span is inline code.
// A backslash before a backtick escapes it everywhere; an unclosed backtick is
// kept as literal text.
func Resolve(p Paragraph, notes NoteNumberer) []Span {
	s := p.RawText
	var spans []Span
	var text strings.Builder

	flush := func() {
		if text.Len() > 0 {
			spans = append(spans, Span{Kind: SpanText, Text: text.String()})
			text.Reset()
		}
	}

	for i := 0; i < len(s); {
		switch {
		case isEscapedBacktick(s, i):
			text.WriteByte('`')
			i += 2
		case s[i] == '`':
			end := closingBacktick(s, i+1)
			if end < 0 {
				text.WriteByte('`')
				i++
				continue
			}
			flush()
			raw := s[i+1 : end]
			if strings.HasPrefix(raw, notePrefix) {
				spans = append(spans, Span{
					Kind:   SpanNote,
					Text:   unescapeBackticks(raw[len(notePrefix):]),
					Number: notes.NextNoteNumber(),
				})
			} else {
				spans = append(spans, Span{Kind: SpanCode, Text: unescapeBackticks(raw)})
			}
			i = end + 1
		default:
			text.WriteByte(s[i])
			i++
		}
	}
	flush()
	return spans
}

func isEscapedBacktick(s string, i int) bool {
	return s[i] == '\\' && i+1 < len(s) && s[i+1] == '`'
}

// closingBacktick returns the index of the first unescaped backtick at or after from, or -1.
func closingBacktick(s string, from int) int {
	for i := from; i < len(s); i++ {
		if isEscapedBacktick(s, i) {
			i++
			continue
		}
		if s[i] == '`' {
			return i
		}
	}
	return -1
}

func unescapeBackticks(s string) string {
	return strings.ReplaceAll(s, "\\`", "`")
}
