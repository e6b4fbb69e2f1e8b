package linkverify

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Link represents an extracted link from HTML content.
type Link struct {
	URL       string // The URL or path as written
	Tag       string // HTML tag (a, img, script, link)
	Attribute string // Attribute containing the link (href or src)
	Text      string // Link text, alt text or rel, for diagnostics
}

// linkAttributes maps each checked element to the attribute carrying its target.
var linkAttributes = []struct {
	tag, attr string
}{
	{"a", "href"},
	{"link", "href"},
	{"img", "src"},
	{"script", "src"},
}

// ExtractLinks returns every link of the document in document order.
func ExtractLinks(r io.Reader) ([]Link, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}
	doc := goquery.NewDocumentFromNode(root)

	selectors := make([]string, 0, len(linkAttributes))
	attrFor := make(map[string]string, len(linkAttributes))
	for _, la := range linkAttributes {
		selectors = append(selectors, la.tag+"["+la.attr+"]")
		attrFor[la.tag] = la.attr
	}

	var links []Link
	doc.Find(strings.Join(selectors, ", ")).Each(func(_ int, sel *goquery.Selection) {
		tag := goquery.NodeName(sel)
		attr := attrFor[tag]
		target, _ := sel.Attr(attr)
		if strings.TrimSpace(target) == "" {
			return
		}
		links = append(links, Link{
			URL:       target,
			Tag:       tag,
			Attribute: attr,
			Text:      describe(sel, tag),
		})
	})
	return links, nil
}

func describe(sel *goquery.Selection, tag string) string {
	switch tag {
	case "img":
		return sel.AttrOr("alt", "")
	case "link":
		return sel.AttrOr("rel", "")
	default:
		return strings.TrimSpace(sel.Text())
	}
}
