package project

import (
	"errors"
	"fmt"
)

var (
	// ErrProjectNotFound indicates the project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrInvalidInput indicates invalid project input.
	ErrInvalidInput = errors.New("invalid project input")
	// ErrParse indicates an import payload could not be parsed.
	ErrParse = errors.New("malformed project csv")
	// ErrSortUnsupported indicates the registry variant has no sort.
	ErrSortUnsupported = errors.New("sort not supported by registry variant")
)

// ParseError locates a failure inside an imported CSV payload.
// Line is 1-based and counts the header; Column is empty for row-level failures.
type ParseError struct {
	Line   int
	Column string
	Err    error
}

func (e *ParseError) Error() string {
	switch {
	case e.Line > 0 && e.Column != "":
		return fmt.Sprintf("%s: line %d, column %q: %v", ErrParse, e.Line, e.Column, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("%s: line %d: %v", ErrParse, e.Line, e.Err)
	default:
		return fmt.Sprintf("%s: %v", ErrParse, e.Err)
	}
}

// Unwrap lets errors.Is match both ErrParse and the underlying cause.
func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}
