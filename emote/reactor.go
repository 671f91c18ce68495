package emote

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

var ErrAlreadyActive = errors.New("reactor is already active")

type SettingsNotifier interface {
	OnChange(key string, fn func(value bool)) (cancel func())
}

type RoomNotifier interface {
	OnRoomAdd(fn func(ch Channel)) (cancel func())
	OnRoomRemove(fn func(ch Channel)) (cancel func())
}

// Reactor drives the global and channel sets from settings changes and room notifications.
type Reactor struct {
	logger   zerolog.Logger
	global   *GlobalSets
	channels *ChannelSets
	settings SettingsNotifier
	rooms    RoomNotifier

	m       sync.Mutex
	ctx     context.Context
	cancels []func()
	closed  bool
	wg      sync.WaitGroup
}

func NewReactor(logger zerolog.Logger, global *GlobalSets, channels *ChannelSets, settings SettingsNotifier, rooms RoomNotifier) *Reactor {
	return &Reactor{
		logger:   logger,
		global:   global,
		channels: channels,
		settings: settings,
		rooms:    rooms,
	}
}

// Activate subscribes to all notifications and builds the global and channel sets once.
// ctx bounds the fetches of every handler run until Close is called.
func (r *Reactor) Activate(ctx context.Context) error {
	r.m.Lock()
	if r.ctx != nil {
		r.m.Unlock()
		return ErrAlreadyActive
	}

	r.ctx = ctx
	r.cancels = []func(){
		r.settings.OnChange(SettingGlobalEmotes, func(bool) { r.spawn("global setting changed", r.refreshGlobal) }),
		r.settings.OnChange(SettingChannelEmotes, func(bool) { r.spawn("channel setting changed", r.refreshChannels) }),
		r.settings.OnChange(SettingUnlistedEmotes, func(bool) { r.spawn("unlisted setting changed", r.refreshChannels) }),
		r.rooms.OnRoomAdd(func(ch Channel) {
			r.spawn("room added", func(ctx context.Context) error {
				_, err := r.channels.Refresh(ctx, ch)
				return err
			})
		}),
		r.rooms.OnRoomRemove(func(ch Channel) {
			r.channels.Commit(ch, nil)
			r.logger.Info().Str("channel_id", ch.ID()).Msg("room removed, dropped channel set")
		}),
	}
	r.m.Unlock()

	_, errGlobal := r.global.Refresh(ctx)
	if errGlobal != nil {
		r.logger.Error().Err(errGlobal).Msg("could not build global emote set")
	}

	errChannels := r.channels.RefreshAll(ctx)

	return errors.Join(errGlobal, errChannels)
}

// Wait blocks until every handler started so far has finished.
func (r *Reactor) Wait() {
	r.wg.Wait()
}

// Close unsubscribes from all notifications and waits for running handlers.
// Notifications arriving afterwards are ignored.
func (r *Reactor) Close() {
	r.m.Lock()
	cancels := r.cancels
	r.cancels = nil
	r.closed = true
	r.m.Unlock()

	for _, cancel := range cancels {
		cancel()
	}

	r.wg.Wait()
}

// spawn runs fn in the background unless the reactor is closed. Notifications racing
// with Close are dropped so no handler outlives it.
func (r *Reactor) spawn(event string, fn func(ctx context.Context) error) {
	r.m.Lock()
	defer r.m.Unlock()

	if r.closed {
		r.logger.Debug().Str("event", event).Msg("reactor closed, ignoring event")
		return
	}

	ctx := r.ctx
	r.wg.Go(func() {
		if err := fn(ctx); err != nil {
			r.logger.Error().Err(err).Str("event", event).Msg("could not update emote sets")
		}
	})
}

func (r *Reactor) refreshGlobal(ctx context.Context) error {
	_, err := r.global.Refresh(ctx)
	return err
}

func (r *Reactor) refreshChannels(ctx context.Context) error {
	return r.channels.RefreshAll(ctx)
}
