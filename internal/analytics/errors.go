package analytics

import (
	"fmt"
)

// FetchError wraps a datastore read failure. Not retried; the boundary maps
// it to 500 with a generic body.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch failed during %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
