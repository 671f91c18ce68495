package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type ctxKeyLogger int

const loggerKey ctxKeyLogger = 0

func requestLogger(logger zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			log := logger.With().Logger()

			if id := middleware.GetReqID(r.Context()); id != "" {
				log = log.With().Str("request_id", id).Logger()
			}

			r = r.WithContext(context.WithValue(r.Context(), loggerKey, log))

			defer func() {
				log.Info().
					Dict("request_data", zerolog.Dict().
						Str("remote_ip", r.RemoteAddr).
						Str("url", r.URL.Path).
						Str("method", r.Method).
						Int("status", ww.Status()).
						Dur("latency", time.Since(start)).
						Int("bytes_out", ww.BytesWritten())).
					Msg("incoming_request")
			}()

			next.ServeHTTP(ww, r)
		}

		return http.HandlerFunc(fn)
	}
}
