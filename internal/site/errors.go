package site

import (
	"errors"
	"fmt"
)

// ErrRegistrySealed is returned by AddPage once rendering has begun.
var ErrRegistrySealed = errors.New("registry is sealed: pages cannot be added once rendering has begun")

// LinkCollisionError reports two pages that compute the same link.
type LinkCollisionError struct {
	Link     string
	Existing string
	Incoming string
}

func (e *LinkCollisionError) Error() string {
	return fmt.Sprintf("link %s is produced by both %s and %s", e.Link, e.Existing, e.Incoming)
}
