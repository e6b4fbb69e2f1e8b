package site

import (
	"fmt"
	"html/template"
	"strings"

	"git.home.luguber.info/inful/mdxsite/internal/mdx"
	"git.home.luguber.info/inful/mdxsite/internal/page"
	"git.home.luguber.info/inful/mdxsite/internal/render"
)

// RenderPage renders one page. The first call seals the registry.
func (r *Registry) RenderPage(p *page.Page, renderer render.Renderer) (template.HTML, error) {
	r.Seal()

	var (
		out template.HTML
		err error
	)
	switch {
	case p.Kind == page.KindIndex:
		out, err = renderer.Render(render.TargetIndex, r.indexFields())
	case p.Series != nil:
		out, err = r.renderSeriesArticle(p, renderer)
	default:
		out, err = r.renderArticle(p, renderer)
	}
	if err != nil {
		return "", fmt.Errorf("render %s: %w", p.Link(), err)
	}
	return out, nil
}

// RenderAll renders every page in registration order and hands each result to
// visit. Rendering stops at the first error.
func (r *Registry) RenderAll(renderer render.Renderer, visit func(p *page.Page, html template.HTML) error) error {
	r.Seal()
	for _, p := range r.pages {
		out, err := r.RenderPage(p, renderer)
		if err != nil {
			return err
		}
		if err := visit(p, out); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) indexFields() render.IndexFields {
	articles := r.ArticlesByDateDescending()
	entries := make([]render.IndexEntry, 0, len(articles))
	for _, a := range articles {
		entries = append(entries, render.IndexEntry{
			Link:    a.Link(),
			Name:    a.DisplayName(),
			Date:    a.FormattedDate(),
			Preview: a.Preview(),
		})
	}
	return render.IndexFields{Entries: entries}
}

func (r *Registry) renderArticle(p *page.Page, renderer render.Renderer) (template.HTML, error) {
	fields, err := r.articleFields(p, renderer)
	if err != nil {
		return "", err
	}
	return renderer.Render(render.TargetArticle, fields)
}

func (r *Registry) renderSeriesArticle(p *page.Page, renderer render.Renderer) (template.HTML, error) {
	fields, err := r.articleFields(p, renderer)
	if err != nil {
		return "", err
	}

	members := r.SeriesMembers(p.Series.Name)
	nav := make([]render.NavEntry, 0, len(members))
	for _, m := range members {
		nav = append(nav, render.NavEntry{
			Link:        m.Link(),
			Number:      m.Series.Number,
			ArticleName: m.Series.ArticleName,
			Current:     m == p,
		})
	}

	return renderer.Render(render.TargetSeriesArticle, render.SeriesArticleFields{
		ArticleFields: fields,
		Number:        p.Series.Number,
		ArticleName:   p.Series.ArticleName,
		SeriesName:    p.Series.Name,
		Navigation:    nav,
	})
}

func (r *Registry) articleFields(p *page.Page, renderer render.Renderer) (render.ArticleFields, error) {
	var content strings.Builder
	for _, el := range p.Elements {
		out, err := r.renderElement(p, el, renderer)
		if err != nil {
			return render.ArticleFields{}, err
		}
		content.WriteString(string(out))
	}
	return render.ArticleFields{
		Title: p.Title,
		Date:  p.FormattedDate(),
		// #nosec G203 -- concatenation of renderer output
		Content: template.HTML(content.String()),
	}, nil
}

func (r *Registry) renderElement(p *page.Page, el mdx.Element, renderer render.Renderer) (template.HTML, error) {
	switch e := el.(type) {
	case mdx.Heading:
		return renderer.Render(render.TargetHeading, render.HeadingFields{Level: e.Level, ID: e.ID(), Text: e.Text})
	case mdx.Paragraph:
		return r.renderParagraph(e, renderer)
	case mdx.CodeBlock:
		if !e.HasSource() {
			return "", &render.MissingSourceLabelError{Page: p.Link(), Document: p.Source}
		}
		return renderer.Render(render.TargetCodeBlock, render.CodeBlockFields{Source: e.Source, Code: e.Code})
	default:
		return "", fmt.Errorf("unsupported element %T", el)
	}
}

// renderParagraph resolves inline spans, drawing note numbers from the registry.
// Plain text is author-trusted markup and passes through unescaped.
func (r *Registry) renderParagraph(p mdx.Paragraph, renderer render.Renderer) (template.HTML, error) {
	var text strings.Builder
	for _, span := range mdx.Resolve(p, r) {
		switch span.Kind {
		case mdx.SpanNote:
			// #nosec G203 -- note text is author markup
			out, err := renderer.Render(render.TargetNote, render.NoteFields{Number: span.Number, Text: template.HTML(span.Text)})
			if err != nil {
				return "", err
			}
			text.WriteString(string(out))
		case mdx.SpanCode:
			out, err := renderer.Render(render.TargetInlineCode, render.InlineCodeFields{Code: span.Text})
			if err != nil {
				return "", err
			}
			text.WriteString(string(out))
		default:
			text.WriteString(span.Text)
		}
	}
	// #nosec G203 -- paragraph text is author markup
	return renderer.Render(render.TargetParagraph, render.ParagraphFields{Text: template.HTML(text.String())})
}
