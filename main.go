package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/mail"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cli/browser"
	"github.com/julez-dev/stvsync/httputil"
	"github.com/julez-dev/stvsync/seventv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

func init() {
	browser.Stderr = io.Discard
	browser.Stdout = io.Discard
}

const requestTimeout = 15 * time.Second

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	log.Logger = logger

	app := &cli.Command{
		Name:        "stvsync",
		Description: "Keeps 7TV emote sets of observed chat rooms in sync",
		Usage:       "7TV emote set synchronization",
		Authors: []any{
			&mail.Address{
				Name:    "julez-dev",
				Address: "julez-dev@pm.me",
			},
		},
		Commands: []*cli.Command{
			runCMD,
			emotesCMD,
			openCMD,
			versionCMD,
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Minimum level of written log lines",
				Value:   zerolog.LevelInfoValue,
				Sources: cli.EnvVars("STVSYNC_LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "api-base",
				Usage:   "Base URL of the 7TV API",
				Value:   seventv.DefaultBaseURL,
				Sources: cli.EnvVars("STVSYNC_API_BASE"),
			},
		},
		Before: func(ctx context.Context, command *cli.Command) (context.Context, error) {
			level, err := zerolog.ParseLevel(command.String("log-level"))
			if err != nil {
				return ctx, fmt.Errorf("invalid log level: %w", err)
			}

			log.Logger = log.Logger.Level(level)

			return ctx, nil
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Printf("error while running stvsync: %v\n", err)
		os.Exit(1)
	}
}

// newSevenTVAPI returns a 7TV client whose requests are logged with logger.
func newSevenTVAPI(command *cli.Command, logger zerolog.Logger) *seventv.API {
	client := &http.Client{
		Timeout:   requestTimeout,
		Transport: httputil.NewLoggingTransport(http.DefaultTransport, logger, Version),
	}

	return seventv.NewAPI(client, seventv.WithBaseURL(command.String("api-base")))
}
