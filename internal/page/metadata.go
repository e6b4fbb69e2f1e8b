package page

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"git.home.luguber.info/inful/mdxsite/internal/mdx"
)

// Type tags accepted in the "type" metadata field.
const (
	TypeIndex         = "index"
	TypeArticle       = "article"
	TypeArticleSeries = "article-series"
)

//go:embed schemas/*.json
var schemaFS embed.FS

type constructor func(meta map[string]any, body string) (*Page, error)

// pageTypes maps each type tag to its constructor. The set is closed.
var pageTypes = map[string]constructor{
	TypeIndex:         newIndex,
	TypeArticle:       newArticle,
	TypeArticleSeries: newSeriesArticle,
}

var schemas = mustLoadSchemas()

func mustLoadSchemas() map[string]*gojsonschema.Schema {
	out := make(map[string]*gojsonschema.Schema, len(pageTypes))
	for tag := range pageTypes {
		data, err := schemaFS.ReadFile("schemas/" + tag + ".json")
		if err != nil {
			panic(fmt.Sprintf("page: missing schema for %q: %v", tag, err))
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
		if err != nil {
			panic(fmt.Sprintf("page: invalid schema for %q: %v", tag, err))
		}
		out[tag] = schema
	}
	return out
}

// Types returns the registered type tags, sorted.
func Types() []string {
	tags := make([]string, 0, len(pageTypes))
	for tag := range pageTypes {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}

// FromMetadata builds a page from decoded header metadata and the raw body.
// source is recorded on the page for diagnostics.
func FromMetadata(meta map[string]any, body string, source string) (*Page, error) {
	raw, ok := meta["type"]
	if !ok {
		return nil, &MissingFieldError{Field: "type"}
	}
	tag, ok := raw.(string)
	if !ok {
		return nil, &MissingFieldError{Field: "type", Reason: "must be a string"}
	}
	build, ok := pageTypes[tag]
	if !ok {
		return nil, &UnknownPageTypeError{Type: tag}
	}

	if err := validateMetadata(schemas[tag], meta); err != nil {
		return nil, err
	}

	p, err := build(meta, body)
	if err != nil {
		return nil, err
	}
	p.Source = source
	return p, nil
}

// validateMetadata turns every schema violation into a MissingFieldError.
func validateMetadata(schema *gojsonschema.Schema, meta map[string]any) error {
	result, err := schema.Validate(gojsonschema.NewGoLoader(meta))
	if err != nil {
		return fmt.Errorf("validate metadata: %w", err)
	}
	if result.Valid() {
		return nil
	}

	violations := make([]*MissingFieldError, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		violations = append(violations, &MissingFieldError{
			Field:  fieldPath(re),
			Reason: re.Description(),
		})
	}
	slices.SortStableFunc(violations, func(a, b *MissingFieldError) int {
		return strings.Compare(a.Field, b.Field)
	})

	if len(violations) == 1 {
		return violations[0]
	}
	errs := make([]error, len(violations))
	for i, v := range violations {
		errs[i] = v
	}
	return errors.Join(errs...)
}

const rootField = "(root)"

// fieldPath names the offending field as a dotted path. Required-property errors
// are reported against the parent object, so the property is appended.
func fieldPath(re gojsonschema.ResultError) string {
	field := re.Field()
	if field == rootField {
		field = ""
	}
	if re.Type() == "required" {
		if prop, ok := re.Details()["property"].(string); ok {
			if field == "" {
				return prop
			}
			return field + "." + prop
		}
	}
	return field
}

func newIndex(map[string]any, string) (*Page, error) {
	return &Page{Kind: KindIndex}, nil
}

func newArticle(meta map[string]any, body string) (*Page, error) {
	date, err := parseDate(meta["date"])
	if err != nil {
		return nil, err
	}
	elements, err := mdx.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse body: %w", err)
	}
	title, _ := meta["title"].(string)
	return &Page{
		Kind:     KindArticle,
		Title:    title,
		Date:     date,
		Elements: elements,
	}, nil
}

func newSeriesArticle(meta map[string]any, body string) (*Page, error) {
	series, _ := meta["series"].(map[string]any)
	number, err := toInt(series["number"])
	if err != nil {
		return nil, &MissingFieldError{Field: "series.number", Reason: err.Error()}
	}

	p, err := newArticle(meta, body)
	if err != nil {
		return nil, err
	}
	name, _ := series["series_name"].(string)
	articleName, _ := series["article_name"].(string)
	p.Series = &Series{
		Name:        name,
		ArticleName: articleName,
		Number:      number,
	}
	return p, nil
}

func parseDate(v any) (time.Time, error) {
	s, _ := v.(string)
	date, err := time.Parse(dateParseLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, &MissingFieldError{
			Field:  "date",
			Reason: fmt.Sprintf("%q is not a date like %q", s, DateLayout),
		}
	}
	return date, nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), nil
		}
		// The schema accepts integral decimals such as 3.0.
		f, err := n.Float64()
		if err != nil || f != math.Trunc(f) {
			return 0, fmt.Errorf("%q is not an integer", n.String())
		}
		return int(f), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%v is not an integer", n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("unexpected %T", v)
	}
}
