package upstream

import "fmt"

// Error is a failed call to an upstream HTTP API. The status code and body
// are kept verbatim so the trigger path can forward them to the caller.
type Error struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s request failed: %d %s", e.Service, e.StatusCode, e.Body)
}
