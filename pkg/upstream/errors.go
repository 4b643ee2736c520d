package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Sentinel errors shared by every provider implementation. Providers map
// their wire-level failures onto these so callers can classify without
// knowing which upstream answered.
var (
	// ErrNoData means the upstream answered authoritatively that the
	// resource has no records. Not transient.
	ErrNoData = errors.New("upstream: no data for resource")

	// ErrRateLimited is surfaced after internal retries were exhausted on
	// HTTP 429 responses.
	ErrRateLimited = errors.New("upstream: rate limited")

	// ErrUnavailable covers upstream 5xx responses and transport failures.
	ErrUnavailable = errors.New("upstream: unavailable")
)

// StatusError carries a non-2xx HTTP response from a provider.
type StatusError struct {
	Provider string
	Status   int
	Body     string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream %s: status %d", e.Provider, e.Status)
	}
	return fmt.Sprintf("upstream %s: status %d: %s", e.Provider, e.Status, e.Body)
}

// Is lets StatusError satisfy errors.Is checks against the sentinels that
// describe its status class.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrRateLimited:
		return e.Status == http.StatusTooManyRequests
	case ErrUnavailable:
		return e.Status >= 500
	case ErrNoData:
		return e.Status == http.StatusNotFound
	}
	return false
}

// IsTransient reports whether err is worth retrying: upstream throttling,
// upstream 5xx, or a transport-level failure. Context cancellation and
// client-side errors are never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUnavailable) {
		return true
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.Status == http.StatusTooManyRequests,
			statusErr.Status == http.StatusRequestTimeout,
			statusErr.Status >= 500:
			return true
		default:
			return false
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// IsNotFound reports whether err means the resource has no data upstream.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNoData)
}
