// Package netx classifies network failures. The client treats "the server
// answered with an error" and "no response reached us at all" as different
// conditions, so the distinction has to be made in one place.
package netx

import (
	"context"
	"errors"
	"net"
	"net/url"
)

// IsUnavailable reports whether err means the server could not be reached:
// a transport-level failure (dial, reset, DNS) or a timeout, as opposed to
// an HTTP response carrying an error status.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return errors.Is(err, context.DeadlineExceeded)
}
