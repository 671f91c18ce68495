package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/cli/browser"
	"github.com/julez-dev/stvsync/seventv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

var openCMD = &cli.Command{
	Name:        "open",
	Usage:       "Open the 7TV page of a channel emote",
	Description: "Looks up a channel emote by name and opens its 7TV page in the default browser",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "channel", Usage: "Twitch channel id", Required: true},
		&cli.StringFlag{Name: "emote", Usage: "Emote name", Required: true},
	},
	Action: func(ctx context.Context, command *cli.Command) error {
		api := newSevenTVAPI(command, log.Logger)

		emotes, err := api.GetChannelEmotes(ctx, command.String("channel"))
		if err != nil {
			return fmt.Errorf("failed to fetch channel emotes: %w", err)
		}

		e, ok := findEmote(emotes, command.String("emote"))
		if !ok {
			return fmt.Errorf("channel has no emote named %q", command.String("emote"))
		}

		url := api.EmoteAppURL(e)
		fmt.Printf("opening %s\n", url)

		if err := browser.OpenURL(url); err != nil {
			return fmt.Errorf("failed to open browser: %w", err)
		}

		return nil
	},
}

// findEmote prefers an exact name match over a case insensitive one.
func findEmote(emotes []seventv.Emote, name string) (seventv.Emote, bool) {
	var fallback *seventv.Emote

	for i, e := range emotes {
		if e.Name == name {
			return e, true
		}

		if fallback == nil && strings.EqualFold(e.Name, name) {
			fallback = &emotes[i]
		}
	}

	if fallback != nil {
		return *fallback, true
	}

	return seventv.Emote{}, false
}
