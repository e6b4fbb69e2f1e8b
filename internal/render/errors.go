package render

import "fmt"

// MissingSourceLabelError reports a code block without a source label. Page is the
// link of the page being rendered, when known.
type MissingSourceLabelError struct {
	Page     string
	Document string
}

func (e *MissingSourceLabelError) Error() string {
	switch {
	case e.Page != "" && e.Document != "":
		return fmt.Sprintf("code block on page %s (%s) has no source label", e.Page, e.Document)
	case e.Page != "":
		return fmt.Sprintf("code block on page %s has no source label", e.Page)
	default:
		return "code block has no source label"
	}
}
