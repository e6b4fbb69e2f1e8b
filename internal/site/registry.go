// Package site collects every page of a build and renders them in a fixed order.
//
// A Registry moves from Empty to Collecting as pages are added and to Sealed when
// the render pass begins; no page can be added after that. The registry also owns
// the note counter shared by all pages of the build.
package site

import (
	"cmp"
	"slices"

	"git.home.luguber.info/inful/mdxsite/internal/page"
)

// State is the lifecycle state of a Registry.
type State int

const (
	StateEmpty State = iota
	StateCollecting
	StateSealed
)

func (s State) String() string {
	switch s {
	case StateCollecting:
		return "collecting"
	case StateSealed:
		return "sealed"
	default:
		return "empty"
	}
}

// Registry holds the pages of one build. It is not safe for concurrent use.
type Registry struct {
	pages  []*page.Page
	series map[string][]*page.Page
	links  map[string]*page.Page
	notes  int
	state  State
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		series: make(map[string][]*page.Page),
		links:  make(map[string]*page.Page),
	}
}

// AddPage registers p. Series members are also indexed by series name.
func (r *Registry) AddPage(p *page.Page) error {
	if r.state == StateSealed {
		return ErrRegistrySealed
	}
	link := p.Link()
	if existing, ok := r.links[link]; ok {
		return &LinkCollisionError{Link: link, Existing: describe(existing), Incoming: describe(p)}
	}

	r.links[link] = p
	r.pages = append(r.pages, p)
	if p.Series != nil {
		r.series[p.Series.Name] = append(r.series[p.Series.Name], p)
	}
	r.state = StateCollecting
	return nil
}

func describe(p *page.Page) string {
	if p.Source != "" {
		return p.Source
	}
	return p.String()
}

// Seal ends the collect phase. Sealing twice is harmless.
func (r *Registry) Seal() {
	r.state = StateSealed
}

// Sealed reports whether the render pass has begun.
func (r *Registry) Sealed() bool {
	return r.state == StateSealed
}

// State returns the current lifecycle state.
func (r *Registry) State() State {
	return r.state
}

// Pages returns every page in registration order.
func (r *Registry) Pages() []*page.Page {
	return slices.Clone(r.pages)
}

// Len returns the number of registered pages.
func (r *Registry) Len() int {
	return len(r.pages)
}

// ArticlesByDateDescending returns all articles, newest first. Articles sharing a
// date keep their registration order.
func (r *Registry) ArticlesByDateDescending() []*page.Page {
	var articles []*page.Page
	for _, p := range r.pages {
		if p.IsArticle() {
			articles = append(articles, p)
		}
	}
	slices.SortStableFunc(articles, func(a, b *page.Page) int {
		return b.Date.Compare(a.Date)
	})
	return articles
}

// SeriesMembers returns the members of the named series ordered by number.
func (r *Registry) SeriesMembers(name string) []*page.Page {
	members := slices.Clone(r.series[name])
	slices.SortStableFunc(members, func(a, b *page.Page) int {
		return cmp.Compare(a.Series.Number, b.Series.Number)
	})
	return members
}

// SeriesNames returns the names of all series, sorted.
func (r *Registry) SeriesNames() []string {
	names := make([]string, 0, len(r.series))
	for name := range r.series {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// NextNoteNumber returns the next note number of the build, starting at 1.
func (r *Registry) NextNoteNumber() int {
	r.notes++
	return r.notes
}

// NotesIssued returns how many note numbers have been handed out.
func (r *Registry) NotesIssued() int {
	return r.notes
}
