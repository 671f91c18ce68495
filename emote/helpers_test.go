package emote_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/julez-dev/stvsync/emote"
	"github.com/julez-dev/stvsync/seventv"
	"github.com/stretchr/testify/mock"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) GetGlobalEmotes(ctx context.Context) ([]seventv.Emote, error) {
	args := m.Called(ctx)
	emotes, _ := args.Get(0).([]seventv.Emote)
	return emotes, args.Error(1)
}

func (m *mockFetcher) GetChannelEmotes(ctx context.Context, channelID string) ([]seventv.Emote, error) {
	args := m.Called(ctx, channelID)
	emotes, _ := args.Get(0).([]seventv.Emote)
	return emotes, args.Error(1)
}

func (m *mockFetcher) EmoteAppURL(e seventv.Emote) string {
	return "https://7tv.app/emotes/" + e.ID
}

type mapSettings struct {
	m      sync.Mutex
	values map[string]bool
}

func newMapSettings(values map[string]bool) *mapSettings {
	return &mapSettings{values: values}
}

func (s *mapSettings) Get(key string) bool {
	s.m.Lock()
	defer s.m.Unlock()
	return s.values[key]
}

func (s *mapSettings) set(key string, v bool) {
	s.m.Lock()
	defer s.m.Unlock()
	s.values[key] = v
}

func allEnabled() map[string]bool {
	return map[string]bool{
		emote.SettingGlobalEmotes:   true,
		emote.SettingChannelEmotes:  true,
		emote.SettingUnlistedEmotes: false,
	}
}

func foreignEmote(id, name string, visibility int) seventv.Emote {
	urls := make([][]string, 0, 4)
	for i := 1; i <= 4; i++ {
		urls = append(urls, []string{fmt.Sprint(i), fmt.Sprintf("https://cdn.7tv.app/emote/%s/%dx", id, i)})
	}

	return seventv.Emote{
		ID:         id,
		Name:       name,
		Owner:      seventv.Owner{ID: "owner-" + id, Login: "forsen", DisplayName: "Forsen"},
		Visibility: visibility,
		Width:      []int{28, 56, 84, 112},
		Height:     []int{32, 64, 96, 128},
		URLs:       urls,
	}
}
