package emote_test

import (
	"context"
	"errors"
	"testing"

	"github.com/julez-dev/stvsync/emote"
	"github.com/julez-dev/stvsync/registry"
	"github.com/julez-dev/stvsync/seventv"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGlobalSets_Refresh(t *testing.T) {
	t.Parallel()

	t.Run("registers unfiltered global set", func(t *testing.T) {
		t.Parallel()

		fetcher := &mockFetcher{}
		fetcher.On("GetGlobalEmotes", mock.Anything).Return([]seventv.Emote{
			foreignEmote("a", "EZ", 0),
			foreignEmote("b", "Clap", emote.VisibilityUnlisted),
		}, nil).Once()

		reg := registry.New(zerolog.Nop())
		global := emote.NewGlobalSets(zerolog.Nop(), emote.Config{Icon: "icon.png"}, fetcher, newMapSettings(allEnabled()), reg)

		outcome, err := global.Refresh(context.Background())
		require.NoError(t, err)
		require.Equal(t, emote.OutcomeApplied, outcome)

		set, ok := global.Set()
		require.True(t, ok)
		require.Equal(t, emote.GlobalSetKey, set.Key)
		require.Equal(t, "Global Emotes", set.Title)
		require.Equal(t, "7TV", set.Source)
		require.Equal(t, "icon.png", set.Icon)
		require.Len(t, set.Emotes, 2)
		require.Equal(t, []string{emote.GlobalSetKey}, reg.DefaultSets(emote.Namespace))

		fetcher.AssertExpectations(t)
	})

	t.Run("disabled setting removes previous set without fetching", func(t *testing.T) {
		t.Parallel()

		fetcher := &mockFetcher{}
		fetcher.On("GetGlobalEmotes", mock.Anything).Return([]seventv.Emote{foreignEmote("a", "EZ", 0)}, nil).Once()

		settings := newMapSettings(allEnabled())
		reg := registry.New(zerolog.Nop())
		global := emote.NewGlobalSets(zerolog.Nop(), emote.Config{}, fetcher, settings, reg)

		_, err := global.Refresh(context.Background())
		require.NoError(t, err)
		_, ok := global.Set()
		require.True(t, ok)

		settings.set(emote.SettingGlobalEmotes, false)

		outcome, err := global.Refresh(context.Background())
		require.NoError(t, err)
		require.Equal(t, emote.OutcomeDisabled, outcome)

		_, ok = global.Set()
		require.False(t, ok)
		require.Empty(t, reg.DefaultSets(emote.Namespace))

		fetcher.AssertExpectations(t)
	})

	t.Run("failed fetch leaves no global set", func(t *testing.T) {
		t.Parallel()

		fetchErr := errors.New("timeout")
		fetcher := &mockFetcher{}
		fetcher.On("GetGlobalEmotes", mock.Anything).Return([]seventv.Emote{foreignEmote("a", "EZ", 0)}, nil).Once()
		fetcher.On("GetGlobalEmotes", mock.Anything).Return(nil, fetchErr).Once()

		reg := registry.New(zerolog.Nop())
		global := emote.NewGlobalSets(zerolog.Nop(), emote.Config{}, fetcher, newMapSettings(allEnabled()), reg)

		_, err := global.Refresh(context.Background())
		require.NoError(t, err)

		outcome, err := global.Refresh(context.Background())
		require.ErrorIs(t, err, fetchErr)
		require.Equal(t, emote.OutcomeFailed, outcome)

		_, ok := global.Set()
		require.False(t, ok)
	})
}
