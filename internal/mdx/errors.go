package mdx

import "fmt"

// MalformedBlockError reports a block that was opened but has no valid form,
// such as an unterminated code fence or a heading marker without text.
type MalformedBlockError struct {
	Line   int
	Reason string
}

func (e *MalformedBlockError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}
