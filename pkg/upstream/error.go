// Package upstream carries the error type shared by all third-party
// provider clients.
package upstream

import "fmt"

// Error is a failed call to an external provider: a transport failure or a
// non-2xx response. The upstream status and body are kept verbatim for
// diagnostics; operations that hit one abort entirely rather than return
// partial results.
type Error struct {
	Provider string
	Status   int
	Body     string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s fetch failed: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s fetch failed: status %d: %s", e.Provider, e.Status, e.Body)
}

func (e *Error) Unwrap() error {
	return e.Err
}
