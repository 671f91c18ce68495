// Package emote keeps 7TV emote sets registered with the host platform in sync with the fetched
// emote data, the visibility settings and the rooms currently observed.
package emote

import (
	"context"
	"iter"

	"github.com/julez-dev/stvsync/seventv"
)

const (
	// Namespace is the provider namespace every set of this package is registered under.
	Namespace    = "addon.seventv_emotes"
	GlobalSetKey = Namespace + ".global"

	SourceLabel     = "7TV"
	globalSetTitle  = "Global Emotes"
	channelSetTitle = "Channel Emotes"
)

// Setting keys read from the host settings store.
const (
	SettingGlobalEmotes   = "global_emotes"
	SettingChannelEmotes  = "channel_emotes"
	SettingUnlistedEmotes = "unlisted_emotes"
)

// DefaultSettings returns the default value of every setting this package reads.
func DefaultSettings() map[string]bool {
	return map[string]bool{
		SettingGlobalEmotes:   true,
		SettingChannelEmotes:  true,
		SettingUnlistedEmotes: true,
	}
}

type Owner struct {
	DisplayName string `json:"display_name"`
	Name        string `json:"name"`
}

// Emote is the host platform representation of a 7TV emote.
type Emote struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Owner          Owner          `json:"owner"`
	URLs           map[int]string `json:"urls"`
	Modifier       bool           `json:"modifier"`
	ModifierOffset string         `json:"modifier_offset"`
	Width          int            `json:"width"`
	Height         int            `json:"height"`
	ClickURL       string         `json:"click_url"`

	// Source is the 7TV record the emote was converted from. Only used for lookups.
	Source *seventv.Emote `json:"-"`
}

// SetDefinition is handed to the host registry when a set is registered.
type SetDefinition struct {
	Title  string
	Source string
	Icon   string
	Emotes []Emote
}

// Set is a set as currently loaded in the host registry.
type Set struct {
	Key    string           `json:"key"`
	Title  string           `json:"title"`
	Source string           `json:"source"`
	Icon   string           `json:"icon"`
	Emotes map[string]Emote `json:"emotes"`
}

// Config holds process wide values resolved once at startup.
type Config struct {
	Icon string
}

type Fetcher interface {
	GetGlobalEmotes(ctx context.Context) ([]seventv.Emote, error)
	GetChannelEmotes(ctx context.Context, channelID string) ([]seventv.Emote, error)
	EmoteAppURL(e seventv.Emote) string
}

type Settings interface {
	Get(key string) bool
}

// SetRegistry is the host platform registry of loaded emote sets.
type SetRegistry interface {
	AddDefaultSet(namespace, key string, def SetDefinition)
	RemoveDefaultSet(namespace, key string)
	UnloadSet(key string)
	Set(key string) (Set, bool)
}

// Channel is an observed chat room which can carry room scoped sets.
type Channel interface {
	ID() string
	AddSet(namespace, key string, def SetDefinition)
	RemoveSet(namespace, key string)
}

type RoomIterator interface {
	IterateRooms() iter.Seq[Channel]
}
