// Package page models the addressable units of the site: the index and articles,
// some of which belong to a numbered series.
package page

import (
	"fmt"
	"strings"
	"time"

	"git.home.luguber.info/inful/mdxsite/internal/mdx"
)

// Kind distinguishes the index from articles.
type Kind string

const (
	KindIndex   Kind = "index"
	KindArticle Kind = "article"
)

// Date layouts used in metadata and on rendered pages.
const (
	DateLayout      = "Jan 02, 2006"
	dateParseLayout = "Jan 2, 2006"
	linkDateLayout  = "01-02-06"
)

const previewLength = 300

// Series is the membership of an article in a named series.
type Series struct {
	Name        string
	ArticleName string
	Number      int
}

// Page is one output page. Title, Date and Elements are empty for the index.
type Page struct {
	Kind     Kind
	Title    string
	Date     time.Time
	Elements []mdx.Element
	Series   *Series
	// Source is the document the page was built from, relative to the source root.
	Source string
}

// IsArticle reports whether the page is an article, standalone or in a series.
func (p *Page) IsArticle() bool {
	return p.Kind == KindArticle
}

// InSeries reports whether the page belongs to a series.
func (p *Page) InSeries() bool {
	return p.Series != nil
}

// Preview returns the first 300 characters of the first paragraph, trimmed.
func (p *Page) Preview() string {
	for _, el := range p.Elements {
		if para, ok := el.(mdx.Paragraph); ok {
			runes := []rune(para.RawText)
			if len(runes) > previewLength {
				runes = runes[:previewLength]
			}
			return strings.TrimSpace(string(runes))
		}
	}
	return ""
}

// DisplayName is the label used for the page in the index.
func (p *Page) DisplayName() string {
	if p.Series == nil {
		return p.Title
	}
	return fmt.Sprintf("%s / Part %d – %s", p.Title, p.Series.Number, p.Series.ArticleName)
}

// FormattedDate renders the date as shown on pages, e.g. "Jan 05, 2024".
func (p *Page) FormattedDate() string {
	return p.Date.Format(DateLayout)
}

func (p *Page) String() string {
	if p.Kind == KindIndex {
		return "index"
	}
	return fmt.Sprintf("%s %q (%s)", p.Kind, p.DisplayName(), p.Link())
}
