package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julez-dev/stvsync/emote"
	"github.com/julez-dev/stvsync/registry"
	"github.com/julez-dev/stvsync/server"
	"github.com/julez-dev/stvsync/settings"
	"github.com/julez-dev/stvsync/seventv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

const defaultIcon = "https://7tv.app/favicon.ico"

var runCMD = &cli.Command{
	Name:  "run",
	Usage: "Start the emote set sync and its control server",
	Description: "Builds the global emote set and the emote sets of every observed room, keeps them in sync " +
		"with the settings file and serves the registry over HTTP",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "addr",
			Usage:   "The address the control server should listen at",
			Value:   ":8080",
			Sources: cli.EnvVars("STVSYNC_ADDR"),
		},
		&cli.StringFlag{
			Name:    "settings",
			Usage:   "Path of the settings file, defaults to the users config directory",
			Sources: cli.EnvVars("STVSYNC_SETTINGS"),
		},
		&cli.StringSliceFlag{
			Name:    "channel",
			Usage:   "Twitch channel id to observe from the start, can be repeated",
			Sources: cli.EnvVars("STVSYNC_CHANNELS"),
		},
		&cli.DurationFlag{
			Name:    "cache-ttl",
			Usage:   "How long fetched emote lists are reused",
			Value:   5 * time.Minute,
			Sources: cli.EnvVars("STVSYNC_CACHE_TTL"),
		},
		&cli.StringFlag{
			Name:    "redis-addr",
			Usage:   "Redis address, fetched emote lists are cached in memory if empty",
			Sources: cli.EnvVars("STVSYNC_REDIS_ADDR"),
		},
		&cli.StringFlag{
			Name:    "redis-password",
			Usage:   "Redis password",
			Sources: cli.EnvVars("STVSYNC_REDIS_PASSWORD"),
		},
		&cli.IntFlag{
			Name:    "redis-db",
			Usage:   "Redis database number",
			Sources: cli.EnvVars("STVSYNC_REDIS_DB"),
		},
		&cli.StringFlag{
			Name:    "icon",
			Usage:   "Icon shown next to the registered emote sets",
			Value:   defaultIcon,
			Sources: cli.EnvVars("STVSYNC_ICON"),
		},
	},
	Action: func(ctx context.Context, command *cli.Command) error {
		logger := log.Logger

		cache, err := newEmoteCache(ctx, command)
		if err != nil {
			return err
		}

		defer func() {
			_ = cache.Close()
		}()

		stvAPI := seventv.NewCachedAPI(logger, newSevenTVAPI(command, logger), cache)

		path := command.String("settings")
		if path == "" {
			path, err = settings.DefaultPath()
			if err != nil {
				return fmt.Errorf("could not resolve settings path: %w", err)
			}
		}

		store, err := settings.Open(logger, afero.NewOsFs(), path, emote.DefaultSettings())
		if err != nil {
			return err
		}

		conf := emote.Config{Icon: command.String("icon")}

		reg := registry.New(logger)
		rooms := registry.NewRooms(reg)

		global := emote.NewGlobalSets(logger, conf, stvAPI, store, reg)
		channels := emote.NewChannelSets(logger, conf, stvAPI, store, reg, rooms)
		reactor := emote.NewReactor(logger, global, channels, store, rooms)

		for _, id := range command.StringSlice("channel") {
			rooms.Add(id)
		}

		api := server.New(
			logger,
			server.Config{
				HostAndPort: command.String("addr"),
			},
			reg,
			rooms,
			store,
			channels,
			stvAPI,
			stvAPI,
		)

		wg, ctx := errgroup.WithContext(ctx)

		wg.Go(func() error {
			defer reactor.Close()

			// failed fetches are logged by the managers, the reactor keeps running for later changes
			if err := reactor.Activate(ctx); err != nil {
				logger.Warn().Err(err).Msg("initial emote sync incomplete")
			}

			<-ctx.Done()
			return nil
		})

		wg.Go(func() error {
			logger.Info().Str("path", path).Msg("watching settings file")
			return store.Watch(ctx)
		})

		wg.Go(func() error {
			return api.Launch(ctx)
		})

		if err := wg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}

		return nil
	},
}

func newEmoteCache(ctx context.Context, command *cli.Command) (seventv.Cache, error) {
	ttl := command.Duration("cache-ttl")

	addr := command.String("redis-addr")
	if addr == "" {
		return seventv.NewMemoryCache(ttl), nil
	}

	cache, err := seventv.NewRedisCache(ctx, seventv.RedisConfig{
		Addr:     addr,
		Password: command.String("redis-password"),
		DB:       int(command.Int("redis-db")),
	}, ttl)
	if err != nil {
		return nil, fmt.Errorf("could not connect to redis: %w", err)
	}

	log.Info().Str("addr", addr).Msg("redis connected")

	return cache, nil
}
