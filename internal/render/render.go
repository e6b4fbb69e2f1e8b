// Package render turns page and element fields into HTML.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"strings"
)

// Target names a page or element template.
type Target string

const (
	TargetIndex         Target = "index"
	TargetArticle       Target = "article"
	TargetSeriesArticle Target = "series-article"
	TargetHeading       Target = "heading"
	TargetParagraph     Target = "paragraph"
	TargetCodeBlock     Target = "code-block"
	TargetNote          Target = "note"
	TargetInlineCode    Target = "inline-code"
)

const partialsFile = "partials.html"

// Targets lists every render target.
func Targets() []Target {
	return []Target{
		TargetIndex, TargetArticle, TargetSeriesArticle,
		TargetHeading, TargetParagraph, TargetCodeBlock, TargetNote, TargetInlineCode,
	}
}

// IsPage reports whether the target produces a whole document.
func (t Target) IsPage() bool {
	return t == TargetIndex || t == TargetArticle || t == TargetSeriesArticle
}

// Renderer produces HTML for a target from its typed fields.
type Renderer interface {
	Render(target Target, fields any) (template.HTML, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(target Target, fields any) (template.HTML, error)

func (f RendererFunc) Render(target Target, fields any) (template.HTML, error) {
	return f(target, fields)
}

//go:embed templates/*.html
var embedded embed.FS

// HTMLRenderer renders targets with html/template.
type HTMLRenderer struct {
	site      SiteInfo
	templates map[Target]*template.Template
}

// NewHTMLRenderer parses the built-in templates. When themeDir is set, any
// "<target>.html" or "partials.html" found there replaces the built-in file.
func NewHTMLRenderer(site SiteInfo, themeDir string) (*HTMLRenderer, error) {
	defaults, err := fs.Sub(embedded, "templates")
	if err != nil {
		return nil, fmt.Errorf("open built-in templates: %w", err)
	}
	var theme fs.FS
	if themeDir != "" {
		info, err := os.Stat(themeDir)
		if err != nil {
			return nil, fmt.Errorf("theme directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("theme directory %s is not a directory", themeDir)
		}
		theme = os.DirFS(themeDir)
	}

	r := &HTMLRenderer{site: site, templates: make(map[Target]*template.Template, len(Targets()))}
	funcs := template.FuncMap{
		"site": func() SiteInfo { return r.site },
	}

	for _, target := range Targets() {
		tpl := template.New(string(target)).Option("missingkey=error").Funcs(funcs)
		if target.IsPage() {
			text, err := readTemplate(theme, defaults, partialsFile)
			if err != nil {
				return nil, err
			}
			if _, err := tpl.New("partials").Parse(text); err != nil {
				return nil, fmt.Errorf("parse %s: %w", partialsFile, err)
			}
		}
		text, err := readTemplate(theme, defaults, string(target)+".html")
		if err != nil {
			return nil, err
		}
		if _, err := tpl.Parse(text); err != nil {
			return nil, fmt.Errorf("parse %s template: %w", target, err)
		}
		r.templates[target] = tpl
	}
	return r, nil
}

func readTemplate(theme, defaults fs.FS, name string) (string, error) {
	if theme != nil {
		data, err := fs.ReadFile(theme, name)
		if err == nil {
			return strings.TrimRight(string(data), "\n"), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("read theme template %s: %w", name, err)
		}
	}
	data, err := fs.ReadFile(defaults, name)
	if err != nil {
		return "", fmt.Errorf("read built-in template %s: %w", name, err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

// Site returns the site information exposed to templates.
func (r *HTMLRenderer) Site() SiteInfo {
	return r.site
}

// Render executes the template for target. A code block without a source label
// is refused.
func (r *HTMLRenderer) Render(target Target, fields any) (template.HTML, error) {
	tpl, ok := r.templates[target]
	if !ok {
		return "", fmt.Errorf("unknown render target %q", target)
	}
	if err := checkFields(target, fields); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, fields); err != nil {
		return "", fmt.Errorf("render %s: %w", target, err)
	}
	// #nosec G203 -- output of html/template is already escaped
	return template.HTML(buf.String()), nil
}

func checkFields(target Target, fields any) error {
	var ok bool
	switch target {
	case TargetIndex:
		_, ok = fields.(IndexFields)
	case TargetArticle:
		_, ok = fields.(ArticleFields)
	case TargetSeriesArticle:
		_, ok = fields.(SeriesArticleFields)
	case TargetHeading:
		_, ok = fields.(HeadingFields)
	case TargetParagraph:
		_, ok = fields.(ParagraphFields)
	case TargetNote:
		_, ok = fields.(NoteFields)
	case TargetInlineCode:
		_, ok = fields.(InlineCodeFields)
	case TargetCodeBlock:
		var block CodeBlockFields
		if block, ok = fields.(CodeBlockFields); ok && block.Source == "" {
			return &MissingSourceLabelError{}
		}
	}
	if !ok {
		return fmt.Errorf("render %s: unexpected fields %T", target, fields)
	}
	return nil
}
