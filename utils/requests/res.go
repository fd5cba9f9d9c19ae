package requests

import (
	"fmt"
	"io"
	"net/http"
)

// The server answered with a client or server error status (>= 400).
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s responded with %s", e.URL, e.Status)
}

// Reads the response body all at once with [io.ReadAll], but with an additional check for client/server error codes
// so that we know the body is safe to read. Statuses >= 400 return a [*StatusError] and the body is discarded.
func ReadResponseBody(r *http.Response, url string) ([]byte, error) {
	defer r.Body.Close()

	if r.StatusCode >= 400 {
		_, _ = io.Copy(io.Discard, r.Body)
		return nil, &StatusError{URL: url, StatusCode: r.StatusCode, Status: r.Status}
	}

	return io.ReadAll(r.Body)
}
