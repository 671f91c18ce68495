package seventv

import (
	"context"

	"github.com/rs/zerolog"
	"resenje.org/singleflight"
)

const globalCacheKey = "global"

type Fetcher interface {
	GetGlobalEmotes(ctx context.Context) ([]Emote, error)
	GetChannelEmotes(ctx context.Context, channelID string) ([]Emote, error)
	EmoteAppURL(e Emote) string
}

// CachedAPI wraps a Fetcher with a response cache and collapses concurrent identical requests.
// Cache failures are logged and never fail a fetch.
type CachedAPI struct {
	logger zerolog.Logger
	api    Fetcher
	cache  Cache
	single *singleflight.Group[string, []Emote]
}

func NewCachedAPI(logger zerolog.Logger, api Fetcher, cache Cache) *CachedAPI {
	return &CachedAPI{
		logger: logger,
		api:    api,
		cache:  cache,
		single: &singleflight.Group[string, []Emote]{},
	}
}

func (c *CachedAPI) GetGlobalEmotes(ctx context.Context) ([]Emote, error) {
	return c.get(ctx, globalCacheKey, c.api.GetGlobalEmotes)
}

func (c *CachedAPI) GetChannelEmotes(ctx context.Context, channelID string) ([]Emote, error) {
	return c.get(ctx, channelCacheKey(channelID), func(ctx context.Context) ([]Emote, error) {
		return c.api.GetChannelEmotes(ctx, channelID)
	})
}

func (c *CachedAPI) EmoteAppURL(e Emote) string {
	return c.api.EmoteAppURL(e)
}

// Invalidate drops the cached emotes of a channel so the next fetch hits the API.
func (c *CachedAPI) Invalidate(ctx context.Context, channelID string) error {
	return c.cache.Delete(ctx, channelCacheKey(channelID))
}

func (c *CachedAPI) get(ctx context.Context, key string, fetch func(context.Context) ([]Emote, error)) ([]Emote, error) {
	emotes, found, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("could not read emote cache")
	}

	if found {
		return emotes, nil
	}

	emotes, shared, err := c.single.Do(ctx, key, func(ctx context.Context) ([]Emote, error) {
		emotes, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		if err := c.cache.Set(ctx, key, emotes); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("could not write emote cache")
		}

		return emotes, nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug().Str("key", key).Bool("shared", shared).Int("emotes", len(emotes)).Msg("fetched 7TV emotes")

	return emotes, nil
}

func channelCacheKey(channelID string) string {
	return "channel:" + channelID
}
