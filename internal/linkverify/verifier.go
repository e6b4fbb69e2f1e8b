// Package linkverify checks that links between rendered pages resolve to files
// produced by the same build.
package linkverify

import (
	"bytes"
	"fmt"
	"net/url"
	"path"
	"slices"
	"strings"
)

// BrokenLink is a link whose target was not produced by the build.
type BrokenLink struct {
	Page   string
	Target string
	Tag    string
}

// BrokenLinksError aggregates every broken link of a build.
type BrokenLinksError struct {
	Links []BrokenLink
}

func (e *BrokenLinksError) Error() string {
	parts := make([]string, 0, len(e.Links))
	for _, l := range e.Links {
		parts = append(parts, fmt.Sprintf("%s -> %s", l.Page, l.Target))
	}
	return fmt.Sprintf("%d broken link(s): %s", len(e.Links), strings.Join(parts, "; "))
}

// Verifier knows every path the build produced.
type Verifier struct {
	host  string
	known map[string]struct{}
}

// NewVerifier creates a verifier. Absolute links to baseURL's host are treated
// as internal.
func NewVerifier(baseURL string) (*Verifier, error) {
	v := &Verifier{known: make(map[string]struct{})}
	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
		}
		v.host = strings.ToLower(u.Host)
	}
	return v, nil
}

// Add registers a produced path, either a page link or "/"+asset path.
func (v *Verifier) Add(p string) {
	v.known[path.Clean("/"+strings.TrimPrefix(p, "/"))] = struct{}{}
}

// Known reports whether p was registered.
func (v *Verifier) Known(p string) bool {
	_, ok := v.known[p]
	return ok
}

// CheckPage returns the broken links of one rendered page.
func (v *Verifier) CheckPage(pageLink string, content []byte) ([]BrokenLink, error) {
	links, err := ExtractLinks(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", pageLink, err)
	}

	var broken []BrokenLink
	for _, l := range links {
		target, internal := v.resolve(pageLink, l.URL)
		if !internal || v.Known(target) {
			continue
		}
		broken = append(broken, BrokenLink{Page: pageLink, Target: l.URL, Tag: l.Tag})
	}
	return broken, nil
}

// Verify checks every page (link to content) and returns a *BrokenLinksError
// listing all broken links, ordered by page.
func (v *Verifier) Verify(pages map[string][]byte) error {
	links := make([]string, 0, len(pages))
	for link := range pages {
		links = append(links, link)
	}
	slices.Sort(links)

	var broken []BrokenLink
	for _, link := range links {
		b, err := v.CheckPage(link, pages[link])
		if err != nil {
			return err
		}
		broken = append(broken, b...)
	}
	if len(broken) > 0 {
		return &BrokenLinksError{Links: broken}
	}
	return nil
}

// resolve maps a raw link to a site path. internal is false for external,
// fragment-only and non-HTTP links.
func (v *Verifier) resolve(pageLink, raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "#") {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", true
	}

	switch {
	case u.Scheme != "" || u.Host != "":
		if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
			return "", false
		}
		if v.host == "" || !strings.EqualFold(u.Host, v.host) {
			return "", false
		}
	case u.Path == "":
		// Query-only link points back at the page itself.
		return pageLink, true
	case !strings.HasPrefix(u.Path, "/"):
		u.Path = path.Join(path.Dir(pageLink), u.Path)
	}

	p := u.Path
	if p == "" || strings.HasSuffix(p, "/") {
		p += "index.html"
	}
	return path.Clean("/" + strings.TrimPrefix(p, "/")), true
}
