package requests

import (
	"fmt"
	"net/http"
)

// Sends a single GET request to url and returns the body. No retries are attempted.
//
// Transport failures are wrapped so [IsTimeout] still sees them; error statuses come back as [*StatusError].
func Get(client *http.Client, url string) ([]byte, error) {
	if client == nil {
		client = DefaultClient
	}

	response, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("error during GET request: %w", err)
	}

	return ReadResponseBody(response, url)
}
