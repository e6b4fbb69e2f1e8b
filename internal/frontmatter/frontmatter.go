package frontmatter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	openDelim  = []byte("%{")
	closeDelim = []byte("}%")
	utf8BOM    = []byte("\xef\xbb\xbf")
)

// Split separates the JSON metadata header (`%{ ... }%` delimited) from the body.
//
// The returned header is the JSON object including its braces. The header ends at
// the first `}%`, so string values in the header must not contain that sequence.
func Split(content []byte) (header []byte, body []byte, err error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	if !bytes.HasPrefix(content, openDelim) {
		return nil, nil, ErrMissingHeader
	}

	idx := bytes.Index(content[len(openDelim):], closeDelim)
	if idx < 0 {
		return nil, nil, ErrMissingClosingDelimiter
	}

	headerEnd := len(openDelim) + idx + 1 // keep the closing brace
	return content[1:headerEnd], content[headerEnd+1:], nil
}

// ParseJSON decodes a header into a metadata map. Numbers are kept as json.Number.
func ParseJSON(header []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(header))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after metadata object", ErrInvalidHeader)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: metadata must be an object", ErrInvalidHeader)
	}
	return fields, nil
}

// ErrMissingHeader indicates the document does not start with a `%{` metadata header.
var ErrMissingHeader = errors.New("document does not start with a %{ metadata header")

// ErrMissingClosingDelimiter indicates the document opened a metadata header
// but never closed it with `}%`.
var ErrMissingClosingDelimiter = errors.New("metadata header start delimiter found but closing delimiter is missing")

// ErrInvalidHeader indicates the header is not a JSON object.
var ErrInvalidHeader = errors.New("metadata header is not a valid JSON object")
