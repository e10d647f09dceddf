package types

import (
	"errors"
	"fmt"
)

// SearchFailure is returned when the remote search call fails, either on the
// transport, with a non-success status or with a payload that cannot be read.
type SearchFailure struct {
	Query      string
	StatusCode int
	Err        error
}

func (e *SearchFailure) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("search %q failed with status %d: %v", e.Query, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("search %q failed: %v", e.Query, e.Err)
}

func (e *SearchFailure) Unwrap() error {
	return e.Err
}

var ErrFallbackExhausted = errors.New("no results available")

// FallbackExhausted means both the search and the featured fallback failed.
type FallbackExhausted struct {
	Search   *SearchFailure
	Fallback error
}

func (e *FallbackExhausted) Error() string {
	return fmt.Sprintf("%v: %v, featured: %v", ErrFallbackExhausted, e.Search, e.Fallback)
}

func (e *FallbackExhausted) Is(target error) bool {
	return target == ErrFallbackExhausted
}

func (e *FallbackExhausted) Unwrap() []error {
	return []error{e.Search, e.Fallback}
}

// AsSearchFailure wraps err unless it already is a SearchFailure.
func AsSearchFailure(query string, err error) *SearchFailure {
	var failure *SearchFailure
	if errors.As(err, &failure) {
		return failure
	}
	return &SearchFailure{Query: query, Err: err}
}
