package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"git.home.luguber.info/inful/mdxsite/internal/build"
	"git.home.luguber.info/inful/mdxsite/internal/frontmatter"
	"git.home.luguber.info/inful/mdxsite/internal/mdx"
	"git.home.luguber.info/inful/mdxsite/internal/page"
	"git.home.luguber.info/inful/mdxsite/internal/render"
	"git.home.luguber.info/inful/mdxsite/internal/site"
)

// InspectCmd implements the 'inspect' command.
type InspectCmd struct {
	File string `arg:"" help:"Document to inspect" type:"existingfile"`
	HTML bool   `name:"html" help:"Render the page on its own instead of listing its elements"`
}

func (i *InspectCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}

	p, err := parseDocument(i.File)
	if err != nil {
		return build.Classify(build.StageCollect, err, i.File, "")
	}

	if i.HTML {
		renderer, err := render.NewHTMLRenderer(render.SiteInfo{
			Title:      cfg.Site.Title,
			BaseURL:    cfg.Site.BaseURL,
			Stylesheet: cfg.Site.Stylesheet,
			Favicon:    cfg.Site.Favicon,
		}, cfg.Theme.Directory)
		if err != nil {
			return build.Classify(build.StageRender, err, "", "")
		}
		registry := site.NewRegistry()
		if err := registry.AddPage(p); err != nil {
			return build.Classify(build.StageCollect, err, i.File, p.Link())
		}
		out, err := registry.RenderPage(p, renderer)
		if err != nil {
			return build.Classify(build.StageRender, err, i.File, p.Link())
		}
		_, err = io.WriteString(g.Out, string(out))
		return err
	}

	describePage(g.Out, p)
	return nil
}

func parseDocument(path string) (*page.Page, error) {
	content, err := os.ReadFile(path) // #nosec G304 -- path is given by the user
	if err != nil {
		return nil, err
	}
	header, body, err := frontmatter.Split(content)
	if err != nil {
		return nil, err
	}
	meta, err := frontmatter.ParseJSON(header)
	if err != nil {
		return nil, err
	}
	return page.FromMetadata(meta, string(body), path)
}

func describePage(w io.Writer, p *page.Page) {
	fmt.Fprintf(w, "Kind:     %s\n", p.Kind)
	fmt.Fprintf(w, "Link:     %s\n", p.Link())
	if p.IsArticle() {
		fmt.Fprintf(w, "Title:    %s\n", p.Title)
		fmt.Fprintf(w, "Date:     %s\n", p.FormattedDate())
	}
	if p.InSeries() {
		fmt.Fprintf(w, "Series:   %s (part %d: %s)\n", p.Series.Name, p.Series.Number, p.Series.ArticleName)
	}
	if !p.IsArticle() {
		return
	}

	var headings, paragraphs, code int
	for _, el := range p.Elements {
		switch el.(type) {
		case mdx.Heading:
			headings++
		case mdx.Paragraph:
			paragraphs++
		case mdx.CodeBlock:
			code++
		}
	}
	fmt.Fprintf(w, "Elements: %d headings, %d paragraphs, %d code blocks\n", headings, paragraphs, code)

	if len(p.Elements) > 0 {
		fmt.Fprintf(w, "\n%s\n", strings.TrimRight(mdx.Format(p.Elements), "\n"))
	}
}
