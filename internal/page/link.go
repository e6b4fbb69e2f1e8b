package page

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// IndexLink is the fixed link of the index page.
const IndexLink = "/index.html"

const slugLength = 20

// Link returns the site-absolute output path of the page. It depends only on the
// page's own fields.
func (p *Page) Link() string {
	if p.Kind == KindIndex {
		return IndexLink
	}
	date := p.Date.Format(linkDateLayout)
	if p.Series != nil {
		return fmt.Sprintf("/articles/%s-%d-%s.html", Slug(p.Title), p.Series.Number, date)
	}
	return fmt.Sprintf("/articles/%s-%s.html", Slug(p.Title), date)
}

// Slug takes the first 20 characters of title, trims and lowercases them and
// replaces spaces with hyphens.
func Slug(title string) string {
	runes := []rune(title)
	if len(runes) > slugLength {
		runes = runes[:slugLength]
	}
	s := cases.Lower(language.Und).String(strings.TrimSpace(string(runes)))
	return strings.ReplaceAll(s, " ", "-")
}
