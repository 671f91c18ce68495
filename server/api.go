package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/julez-dev/stvsync/emote"
	"github.com/julez-dev/stvsync/registry"
	"github.com/julez-dev/stvsync/settings"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	HostAndPort string
}

// Invalidator drops cached fetch results of a channel.
type Invalidator interface {
	Invalidate(ctx context.Context, channelID string) error
}

type API struct {
	logger zerolog.Logger
	conf   Config

	registry *registry.Registry
	rooms    *registry.Rooms
	settings *settings.Store
	channels *emote.ChannelSets
	urls     emote.AppURLer
	cache    Invalidator
}

func New(
	logger zerolog.Logger,
	config Config,
	registry *registry.Registry,
	rooms *registry.Rooms,
	settings *settings.Store,
	channels *emote.ChannelSets,
	urls emote.AppURLer,
	cache Invalidator,
) *API {
	return &API{
		logger:   logger,
		conf:     config,
		registry: registry,
		rooms:    rooms,
		settings: settings,
		channels: channels,
		urls:     urls,
		cache:    cache,
	}
}

func (a *API) Handler() http.Handler {
	return router(a.logger, a)
}

func (a *API) Launch(ctx context.Context) error {
	httpSrv := &http.Server{
		Addr:           a.conf.HostAndPort,
		ReadTimeout:    time.Second * 15,
		IdleTimeout:    time.Second * 60,
		MaxHeaderBytes: 2 * 1024,
		Handler:        a.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	httpSrv.RegisterOnShutdown(func() {
		a.logger.Info().Msg("http shutdown started")
	})

	wg, ctx := errgroup.WithContext(ctx)

	wg.Go(func() error {
		a.logger.Info().Str("addr", httpSrv.Addr).Msg("starting http server")

		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	wg.Go(func() error {
		<-ctx.Done()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
		defer cancel()

		if err := httpSrv.Shutdown(ctx); err != nil {
			return err
		}

		a.logger.Info().Msg("shutdown done")

		return nil
	})

	return wg.Wait()
}

func (a *API) getLoggerFrom(ctx context.Context) zerolog.Logger {
	if logger := ctx.Value(loggerKey); logger != nil {
		typed, ok := logger.(zerolog.Logger)

		if ok {
			return typed
		}
	}

	return a.logger
}
