package server

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const (
	eventBuffer  = 64
	writeTimeout = 5 * time.Second
)

// handleEvents streams every registry change as a JSON message until the client goes away.
func (a *API) handleEvents() http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := a.getLoggerFrom(r.Context())

		// subscribed before the handshake completes so no change after the upgrade is missed
		id, changes, cancel := a.registry.Subscribe(eventBuffer)
		defer cancel()

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			logger.Err(err).Msg("could not accept websocket")
			return
		}

		defer conn.CloseNow()

		logger = logger.With().Str("subscriber", id).Logger()
		logger.Info().Msg("event subscriber connected")

		// the client never sends anything, CloseRead handles control frames and reports disconnects
		ctx := conn.CloseRead(r.Context())

		for {
			select {
			case <-ctx.Done():
				logger.Info().Msg("event subscriber disconnected")
				return
			case change, ok := <-changes:
				if !ok {
					return
				}

				writeCtx, cancelWrite := context.WithTimeout(ctx, writeTimeout)
				err := wsjson.Write(writeCtx, conn, change)
				cancelWrite()

				if err != nil {
					logger.Warn().Err(err).Msg("could not write event")
					return
				}
			}
		}
	})
}
