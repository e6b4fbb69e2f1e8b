package mdx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []Element
	}{
		{
			name: "whitespace only",
			body: "  \n\t\n  ",
			want: nil,
		},
		{
			name: "heading and paragraphs",
			body: "# Title\n\nHello\nworld\n\n\n\nSecond",
			want: []Element{
				Heading{Level: 1, Text: "Title"},
				Paragraph{RawText: "Hello world"},
				Paragraph{RawText: "Second"},
			},
		},
		{
			name: "blank line with spaces separates paragraphs",
			body: "one\n   \t\n  two",
			want: []Element{
				Paragraph{RawText: "one"},
				Paragraph{RawText: "two"},
			},
		},
		{
			name: "labelled code block",
			body: "```@main.go\nfmt.Println()\n```\nAfter",
			want: []Element{
				CodeBlock{Source: "main.go", Code: "fmt.Println()"},
				Paragraph{RawText: "After"},
			},
		},
		{
			name: "code block without label",
			body: "```\n  code\n```",
			want: []Element{CodeBlock{Code: "code"}},
		},
		{
			name: "empty label counts as absent",
			body: "```@ code```",
			want: []Element{CodeBlock{Code: "code"}},
		},
		{
			name: "escaped fence inside code",
			body: "```@a\nx \\``` y\n```",
			want: []Element{CodeBlock{Source: "a", Code: "x ``` y"}},
		},
		{
			name: "fence ends a paragraph",
			body: "intro ```@f\nc\n```",
			want: []Element{
				Paragraph{RawText: "intro"},
				CodeBlock{Source: "f", Code: "c"},
			},
		},
		{
			name: "heading without space after marker",
			body: "#Intro\n\nbody",
			want: []Element{
				Heading{Level: 1, Text: "Intro"},
				Paragraph{RawText: "body"},
			},
		},
		{
			name: "heading text is trimmed and ends at newline",
			body: "## Sub heading  \nnext line",
			want: []Element{
				Heading{Level: 2, Text: "Sub heading"},
				Paragraph{RawText: "next line"},
			},
		},
		{
			name: "tab after marker",
			body: "###\tDeep",
			want: []Element{Heading{Level: 3, Text: "Deep"}},
		},
		{
			name: "crlf line endings",
			body: "a\r\nb\r\n\r\nc\r\n",
			want: []Element{
				Paragraph{RawText: "a b"},
				Paragraph{RawText: "c"},
			},
		},
		{
			name: "paragraph keeps inline spans raw",
			body: "see `code` and `@note aside`",
			want: []Element{Paragraph{RawText: "see `code` and `@note aside`"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.body)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantLine int
		reason   string
	}{
		{"unterminated fence", "text\n\n```@x\nno close", 3, "never closed"},
		{"only escaped close", "```@x\ncode \\```", 1, "never closed"},
		{"bare heading marker", "\n\n#", 3, "no text"},
		{"heading marker then newline", "para\n\n## \nmore", 3, "no text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.body)
			var malformed *MalformedBlockError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, tt.wantLine, malformed.Line)
			assert.Contains(t, malformed.Reason, tt.reason)
		})
	}
}

func TestHeadingID(t *testing.T) {
	assert.Equal(t, "Hello-World-2", Heading{Text: "Hello, World 2"}.ID())
	assert.Equal(t, "über-straße", Heading{Text: "über straße!"}.ID())
	assert.Equal(t, "", Heading{Text: "?!"}.ID())
}
