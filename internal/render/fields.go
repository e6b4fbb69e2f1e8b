package render

import "html/template"

// SiteInfo is available to every page template through the "site" function.
type SiteInfo struct {
	Title      string
	BaseURL    string
	Stylesheet string
	Favicon    string
}

// IndexEntry is one article card on the index.
type IndexEntry struct {
	Link    string
	Name    string
	Date    string
	Preview string
}

// IndexFields feeds TargetIndex. Entries are newest first.
type IndexFields struct {
	Entries []IndexEntry
}

// ArticleFields feeds TargetArticle. Content is the rendered element sequence.
type ArticleFields struct {
	Title   string
	Date    string
	Content template.HTML
}

// NavEntry is one link in a series navigation list.
type NavEntry struct {
	Link        string
	Number      int
	ArticleName string
	Current     bool
}

// SeriesArticleFields feeds TargetSeriesArticle.
type SeriesArticleFields struct {
	ArticleFields
	Number      int
	ArticleName string
	SeriesName  string
	Navigation  []NavEntry
}

// HeadingFields feeds TargetHeading. ID is the anchor derived from Text.
type HeadingFields struct {
	Level int
	ID    string
	Text  string
}

// ParagraphFields carries resolved paragraph markup. Text is trusted HTML.
type ParagraphFields struct {
	Text template.HTML
}

// CodeBlockFields feeds TargetCodeBlock. Source is the required label.
type CodeBlockFields struct {
	Source string
	Code   string
}

// NoteFields carries a numbered note. Text is trusted HTML.
type NoteFields struct {
	Number int
	Text   template.HTML
}

// InlineCodeFields feeds TargetInlineCode.
type InlineCodeFields struct {
	Code string
}
