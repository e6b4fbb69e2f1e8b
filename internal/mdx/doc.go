// Package mdx parses the article markup dialect.
//
// A document body is segmented into an ordered sequence of elements (headings,
// paragraphs and fenced code blocks) by Parse. Paragraph text is kept raw; inline
// spans (code, numbered notes, escaped backticks) are resolved later by Resolve,
// at render time, so note numbers follow the order in which pages are rendered.
package mdx
