package httputil

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type RoundTripperFunc func(req *http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// LoggingTransport sets the stvsync User-Agent and logs every outgoing request.
type LoggingTransport struct {
	rt      http.RoundTripper
	logger  zerolog.Logger
	version string
}

func NewLoggingTransport(rt http.RoundTripper, logger zerolog.Logger, version string) *LoggingTransport {
	if rt == nil {
		rt = http.DefaultTransport
	}

	return &LoggingTransport{
		rt:      rt,
		logger:  logger,
		version: version,
	}
}

func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", fmt.Sprintf("stvsync/%s", t.version))

	start := time.Now()
	resp, err := t.rt.RoundTrip(req)
	if err != nil {
		t.logger.Error().Err(err).Str("url", req.URL.String()).Msg("error while making request")
		return nil, err
	}

	t.logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Dur("took", time.Since(start)).
		Int("status", resp.StatusCode).
		Msg("request made")

	return resp, nil
}
