package emote

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/julez-dev/stvsync/seventv"
	"github.com/rs/zerolog"
)

type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomeDisabled
	OutcomeApplied
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDisabled:
		return "disabled"
	case OutcomeApplied:
		return "applied"
	}

	return "failed"
}

// ChannelSetKey returns the registry key of the channel scoped set of channelID.
func ChannelSetKey(channelID string) string {
	return Namespace + ".channel-" + channelID
}

// ChannelSets owns the channel scoped 7TV set of every observed room.
// Every mutation ends in commit, which replaces the whole set.
type ChannelSets struct {
	logger    zerolog.Logger
	conf      Config
	fetcher   Fetcher
	settings  Settings
	registry  SetRegistry
	rooms     RoomIterator
	converter Converter
	seq       *sequencer
}

func NewChannelSets(logger zerolog.Logger, conf Config, fetcher Fetcher, settings Settings, registry SetRegistry, rooms RoomIterator) *ChannelSets {
	return &ChannelSets{
		logger:    logger,
		conf:      conf,
		fetcher:   fetcher,
		settings:  settings,
		registry:  registry,
		rooms:     rooms,
		converter: NewConverter(fetcher),
		seq:       newSequencer(),
	}
}

// Set returns the set currently registered for the channel.
func (c *ChannelSets) Set(ch Channel) (Set, bool) {
	return c.registry.Set(ChannelSetKey(ch.ID()))
}

// Commit replaces the channel set with emotes. A nil or empty list leaves the channel without a set.
func (c *ChannelSets) Commit(ch Channel, emotes []Emote) {
	t := c.seq.begin()
	defer c.seq.end(t)

	c.commit(ch, t, emotes)
}

func (c *ChannelSets) commit(ch Channel, t ticket, emotes []Emote) bool {
	key := ChannelSetKey(ch.ID())

	return c.seq.commit(key, t, func() writeResult {
		return c.write(ch, key, emotes)
	})
}

// write must only be called while holding the sequencer lock.
func (c *ChannelSets) write(ch Channel, key string, emotes []Emote) writeResult {
	ch.RemoveSet(Namespace, key)
	c.registry.UnloadSet(key)

	if len(emotes) == 0 {
		return writeCleared
	}

	ch.AddSet(Namespace, key, SetDefinition{
		Title:  channelSetTitle,
		Source: SourceLabel,
		Icon:   c.conf.Icon,
		Emotes: emotes,
	})

	return writeStored
}

// Refresh fetches the channel emotes and replaces the channel set with the visible ones.
// A failed fetch removes the set and returns the fetch error.
func (c *ChannelSets) Refresh(ctx context.Context, ch Channel) (Outcome, error) {
	t := c.seq.begin()
	defer c.seq.end(t)

	logger := c.logger.With().Str("channel_id", ch.ID()).Logger()

	if !c.settings.Get(SettingChannelEmotes) {
		c.commit(ch, t, nil)
		logger.Info().Msg("channel emotes disabled, removed channel set")
		return OutcomeDisabled, nil
	}

	foreign, err := c.fetcher.GetChannelEmotes(ctx, ch.ID())
	if err != nil {
		c.commit(ch, t, nil)
		return OutcomeFailed, fmt.Errorf("could not fetch 7TV emotes for channel %s: %w", ch.ID(), err)
	}

	showUnlisted := c.settings.Get(SettingUnlistedEmotes)

	emotes := make([]Emote, 0, len(foreign))
	for _, e := range foreign {
		if showUnlisted || !IsUnlisted(e) {
			emotes = append(emotes, c.converter.Convert(e))
		}
	}

	if !c.commit(ch, t, emotes) {
		logger.Debug().Msg("channel refresh superseded by a newer update")
		return OutcomeApplied, nil
	}

	logger.Info().Int("emotes", len(emotes)).Int("fetched", len(foreign)).Msg("applied channel emote set")

	return OutcomeApplied, nil
}

// RefreshAll refreshes every observed room one after another. A failing room does not stop the others,
// all failures are returned joined.
func (c *ChannelSets) RefreshAll(ctx context.Context) error {
	var errs []error

	for ch := range c.rooms.IterateRooms() {
		if _, err := c.Refresh(ctx, ch); err != nil {
			c.logger.Error().Err(err).Str("channel_id", ch.ID()).Msg("could not refresh channel emote set")
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// AddEmote merges e into the channel set. It is a no-op when the channel has no set yet or
// when the emote is unlisted and neither unlisted emotes are shown nor force is set.
func (c *ChannelSets) AddEmote(ch Channel, e seventv.Emote, force bool) bool {
	key := ChannelSetKey(ch.ID())

	t := c.seq.begin()
	defer c.seq.end(t)

	return c.seq.commit(key, t, func() writeResult {
		set, ok := c.registry.Set(key)
		if !ok {
			return writeSkipped
		}

		if !force && IsUnlisted(e) && !c.settings.Get(SettingUnlistedEmotes) {
			return writeSkipped
		}

		emotes := maps.Clone(set.Emotes)
		if emotes == nil {
			emotes = map[string]Emote{}
		}
		emotes[e.ID] = c.converter.Convert(e)

		return c.write(ch, key, sortedEmotes(emotes))
	})
}

// RemoveEmote deletes emoteID from the channel set. It reports false when the channel has no set.
func (c *ChannelSets) RemoveEmote(ch Channel, emoteID string) bool {
	key := ChannelSetKey(ch.ID())

	t := c.seq.begin()
	defer c.seq.end(t)

	return c.seq.commit(key, t, func() writeResult {
		set, ok := c.registry.Set(key)
		if !ok {
			return writeSkipped
		}

		emotes := maps.Clone(set.Emotes)
		delete(emotes, emoteID)

		return c.write(ch, key, sortedEmotes(emotes))
	})
}

// LookupEmote returns the 7TV record behind emoteID in the channel set.
func (c *ChannelSets) LookupEmote(ch Channel, emoteID string) (seventv.Emote, bool) {
	set, ok := c.Set(ch)
	if !ok {
		return seventv.Emote{}, false
	}

	e, ok := set.Emotes[emoteID]
	if !ok || e.Source == nil {
		return seventv.Emote{}, false
	}

	return *e.Source, true
}

func sortedEmotes(m map[string]Emote) []Emote {
	emotes := make([]Emote, 0, len(m))
	for _, id := range slices.Sorted(maps.Keys(m)) {
		emotes = append(emotes, m[id])
	}

	return emotes
}
