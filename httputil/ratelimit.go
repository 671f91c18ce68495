package httputil

import (
	"context"
	"net/http"
	"strconv"
	"time"
)

// resetHeaders are checked in order for the unix timestamp at which the rate limit window resets.
var resetHeaders = [...]string{"X-Ratelimit-Reset", "Ratelimit-Reset"}

// RetryOn429 executes do and, when the response is 429 Too Many Requests, waits until the reset
// time announced by the server and executes do exactly one more time.
// Responses without a usable reset header, or with a reset further away than maxWait, are returned as is.
// A maxWait of zero means no upper bound.
func RetryOn429(ctx context.Context, maxWait time.Duration, do func() (*http.Response, error)) (*http.Response, error) {
	resp, err := do()
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusTooManyRequests {
		return resp, nil
	}

	resetAt, ok := parseReset(resp.Header)
	if !ok {
		return resp, nil
	}

	wait := time.Until(resetAt) + time.Second
	if maxWait > 0 && wait > maxWait {
		return resp, nil
	}

	_ = resp.Body.Close()

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-timer.C:
		return do()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func parseReset(h http.Header) (time.Time, bool) {
	for _, name := range resetHeaders {
		v := h.Get(name)
		if v == "" {
			continue
		}

		unix, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return time.Time{}, false
		}

		return time.Unix(unix, 0), true
	}

	return time.Time{}, false
}
