package mdx

import (
	"strings"
)

const fence = "```"

// Parse segments a document body into elements, preserving source order.
// A whitespace-only body yields no elements.
func Parse(body string) ([]Element, error) {
	normalized := strings.ReplaceAll(body, "\r\n", "\n")
	text := strings.TrimLeftFunc(normalized, isSpace)
	p := &parser{
		text:      strings.TrimRightFunc(text, isSpace),
		lineShift: strings.Count(normalized[:len(normalized)-len(text)], "\n"),
	}
	return p.parse()
}

type parser struct {
	text      string
	pos       int
	lineShift int
}

func (p *parser) parse() ([]Element, error) {
	var elements []Element
	for p.pos < len(p.text) {
		rest := p.text[p.pos:]
		switch {
		case strings.HasPrefix(rest, fence):
			block, err := p.codeBlock()
			if err != nil {
				return nil, err
			}
			elements = append(elements, block)
			p.skipSpace()
		case rest[0] == '#':
			heading, err := p.heading()
			if err != nil {
				return nil, err
			}
			elements = append(elements, heading)
			p.skipSpace()
		default:
			if para, ok := p.paragraph(); ok {
				elements = append(elements, para)
			}
		}
	}
	return elements, nil
}

// codeBlock parses "```[@label]code```" starting at p.pos.
func (p *parser) codeBlock() (CodeBlock, error) {
	start := p.pos
	i := start + len(fence)

	var label string
	if i < len(p.text) && p.text[i] == '@' {
		j := i + 1
		for j < len(p.text) && !isLabelTerminator(p.text[j]) {
			j++
		}
		label = p.text[i+1 : j]
		i = j
	}

	end := closingFence(p.text, i)
	if end < 0 {
		return CodeBlock{}, p.malformed(start, "code fence is never closed")
	}

	code := strings.TrimSpace(p.text[i:end])
	p.pos = end + len(fence)
	return CodeBlock{
		Source: label,
		Code:   strings.ReplaceAll(code, `\`+fence, fence),
	}, nil
}

// closingFence returns the index of the next fence at or after from that is not
// preceded by a backslash, or -1.
func closingFence(text string, from int) int {
	for i := from; i+len(fence) <= len(text); {
		idx := strings.Index(text[i:], fence)
		if idx < 0 {
			return -1
		}
		at := i + idx
		if at == 0 || text[at-1] != '\\' {
			return at
		}
		i = at + 1
	}
	return -1
}

// heading parses a `#` marker line. Everything after the marker run up to the
// newline is the heading text.
func (p *parser) heading() (Heading, error) {
	start := p.pos
	i := start
	for i < len(p.text) && p.text[i] == '#' {
		i++
	}
	level := i - start

	end := strings.IndexByte(p.text[i:], '\n')
	if end < 0 {
		end = len(p.text)
	} else {
		end += i
	}
	text := strings.TrimSpace(p.text[i:end])
	if text == "" {
		return Heading{}, p.malformed(start, "heading marker has no text")
	}
	p.pos = end
	return Heading{Level: level, Text: text}, nil
}

// paragraph consumes text up to a blank-line separator, a code fence, or the end
// of input. Separators are consumed along with any whitespace that follows them.
func (p *parser) paragraph() (Paragraph, bool) {
	start := p.pos
	end := len(p.text)
	next := len(p.text)

	for i := start; i < len(p.text); i++ {
		if strings.HasPrefix(p.text[i:], fence) {
			end, next = i, i
			break
		}
		if p.text[i] == '\n' {
			if sepEnd, ok := blankLine(p.text, i); ok {
				end, next = i, sepEnd
				break
			}
		}
	}

	p.pos = next
	text := strings.TrimSpace(strings.ReplaceAll(p.text[start:end], "\n", " "))
	if text == "" {
		return Paragraph{}, false
	}
	return Paragraph{RawText: text}, true
}

// blankLine reports whether the newline at i starts a separator (a newline, optional
// whitespace, another newline) and returns the index after all following whitespace.
func blankLine(text string, i int) (int, bool) {
	j := i + 1
	blank := false
	for j < len(text) && isSpaceByte(text[j]) {
		if text[j] == '\n' {
			blank = true
		}
		j++
	}
	return j, blank
}

func (p *parser) skipSpace() {
	for p.pos < len(p.text) && isSpaceByte(p.text[p.pos]) {
		p.pos++
	}
}

func (p *parser) malformed(pos int, reason string) *MalformedBlockError {
	return &MalformedBlockError{
		Line:   p.lineShift + strings.Count(p.text[:pos], "\n") + 1,
		Reason: reason,
	}
}

func isLabelTerminator(c byte) bool {
	return c == '`' || isSpaceByte(c)
}

func isSpaceByte(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func isSpace(r rune) bool {
	return r < 0x80 && isSpaceByte(byte(r))
}
