package main

import (
	"context"
	"fmt"
	"strconv"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/dustin/go-humanize"
	"github.com/julez-dev/stvsync/emote"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

var emotesCMD = &cli.Command{
	Name:        "emotes",
	Usage:       "Print the channel emote set of a channel",
	Description: "Fetches the 7TV emotes of a channel once and prints the set stvsync would register for it",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "channel", Usage: "Twitch channel id", Required: true},
		&cli.BoolFlag{Name: "unlisted", Usage: "Include unlisted emotes"},
	},
	Action: func(ctx context.Context, command *cli.Command) error {
		api := newSevenTVAPI(command, log.Logger)
		converter := emote.NewConverter(api)

		foreign, err := api.GetChannelEmotes(ctx, command.String("channel"))
		if err != nil {
			return fmt.Errorf("failed to fetch channel emotes: %w", err)
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("ID", "NAME", "OWNER", "SIZE", "MODIFIER", "URL")

		var shown, hidden int64
		for _, e := range foreign {
			if !command.Bool("unlisted") && emote.IsUnlisted(e) {
				hidden++
				continue
			}

			converted := converter.Convert(e)
			shown++

			t.Row(
				converted.ID,
				converted.Name,
				converted.Owner.DisplayName,
				fmt.Sprintf("%dx%d", converted.Width, converted.Height),
				strconv.FormatBool(converted.Modifier),
				converted.ClickURL,
			)
		}

		fmt.Println(t.Render())
		fmt.Printf("%s emotes in set, %s unlisted emotes hidden\n", humanize.Comma(shown), humanize.Comma(hidden))

		return nil
	},
}
