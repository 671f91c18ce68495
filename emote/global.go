package emote

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// GlobalSets owns the single global 7TV set.
type GlobalSets struct {
	logger    zerolog.Logger
	conf      Config
	fetcher   Fetcher
	settings  Settings
	registry  SetRegistry
	converter Converter
	seq       *sequencer
}

func NewGlobalSets(logger zerolog.Logger, conf Config, fetcher Fetcher, settings Settings, registry SetRegistry) *GlobalSets {
	return &GlobalSets{
		logger:    logger,
		conf:      conf,
		fetcher:   fetcher,
		settings:  settings,
		registry:  registry,
		converter: NewConverter(fetcher),
		seq:       newSequencer(),
	}
}

// Set returns the registered global set.
func (g *GlobalSets) Set() (Set, bool) {
	return g.registry.Set(GlobalSetKey)
}

// Refresh drops the global set and, if global emotes are enabled, registers a freshly fetched one.
// Global emotes are curated by 7TV and never filtered by visibility.
func (g *GlobalSets) Refresh(ctx context.Context) (Outcome, error) {
	t := g.seq.begin()
	defer g.seq.end(t)

	g.seq.commit(GlobalSetKey, t, func() writeResult {
		g.registry.RemoveDefaultSet(Namespace, GlobalSetKey)
		g.registry.UnloadSet(GlobalSetKey)
		return writeCleared
	})

	if !g.settings.Get(SettingGlobalEmotes) {
		g.logger.Info().Msg("global emotes disabled, removed global set")
		return OutcomeDisabled, nil
	}

	foreign, err := g.fetcher.GetGlobalEmotes(ctx)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("could not fetch 7TV global emotes: %w", err)
	}

	emotes := make([]Emote, 0, len(foreign))
	for _, e := range foreign {
		emotes = append(emotes, g.converter.Convert(e))
	}

	applied := g.seq.commit(GlobalSetKey, t, func() writeResult {
		g.registry.AddDefaultSet(Namespace, GlobalSetKey, SetDefinition{
			Title:  globalSetTitle,
			Source: SourceLabel,
			Icon:   g.conf.Icon,
			Emotes: emotes,
		})
		return writeStored
	})

	if !applied {
		g.logger.Debug().Msg("global refresh superseded by a newer update")
		return OutcomeApplied, nil
	}

	g.logger.Info().Int("emotes", len(emotes)).Msg("applied global emote set")

	return OutcomeApplied, nil
}
