package requests

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"time"
)

const DEFAULT_TIMEOUT = 8 * time.Second

// Used when the caller does not bring its own client.
var DefaultClient = &http.Client{Timeout: DEFAULT_TIMEOUT}

// Reports whether err came from the transport giving up before a response arrived.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
