package spotify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"

	spotifyapi "github.com/zmb3/spotify/v2"
)

// ErrRateLimited marks an explicit quota-exhaustion signal from the API. It
// is never retried: the throttle is supposed to make this unreachable, so
// hitting it means assumptions are violated and the run must stop. Both entry
// points map it to exit code 1.
var ErrRateLimited = errors.New("spotify rate limit exceeded")

// classifyRateLimit returns a non-nil ErrRateLimited-wrapping error when err
// is an explicit rate-limit signal (HTTP 429, or a message mentioning both
// "rate" and "limit"), and nil otherwise.
func classifyRateLimit(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrRateLimited) {
		return err
	}

	var serr spotifyapi.Error
	if errors.As(err, &serr) && serr.Status == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "rate") && strings.Contains(msg, "limit") {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return nil
}

// isTimeout reports whether err is a read-timeout-class transport error,
// which is the only class worth retrying.
func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "timeout")
}

func serverError(err error) (spotifyapi.Error, bool) {
	var serr spotifyapi.Error
	if errors.As(err, &serr) && serr.Status >= 500 {
		return serr, true
	}
	return spotifyapi.Error{}, false
}
