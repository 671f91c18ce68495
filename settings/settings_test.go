package settings

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const path = "/config/stvsync/settings.yaml"

func defaults() map[string]bool {
	return map[string]bool{
		"global_emotes":   true,
		"channel_emotes":  true,
		"unlisted_emotes": true,
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("missing file yields defaults", func(t *testing.T) {
		t.Parallel()

		s, err := Open(zerolog.Nop(), afero.NewMemMapFs(), path, defaults())
		require.NoError(t, err)
		require.Equal(t, defaults(), s.All())
	})

	t.Run("empty file yields defaults", func(t *testing.T) {
		t.Parallel()

		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, path, nil, 0o600))

		s, err := Open(zerolog.Nop(), fs, path, defaults())
		require.NoError(t, err)
		require.True(t, s.Get("unlisted_emotes"))
	})

	t.Run("file overrides defaults and unknown keys are ignored", func(t *testing.T) {
		t.Parallel()

		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, path, []byte("unlisted_emotes: false\nsomething_else: true\n"), 0o600))

		s, err := Open(zerolog.Nop(), fs, path, defaults())
		require.NoError(t, err)
		require.False(t, s.Get("unlisted_emotes"))
		require.True(t, s.Get("global_emotes"))
		require.NotContains(t, s.All(), "something_else")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()

		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, path, []byte("global_emotes: [yes"), 0o600))

		_, err := Open(zerolog.Nop(), fs, path, defaults())
		require.Error(t, err)
	})
}

func TestStore_Set(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	s, err := Open(zerolog.Nop(), fs, path, defaults())
	require.NoError(t, err)

	var changes []bool
	cancel := s.OnChange("channel_emotes", func(v bool) { changes = append(changes, v) })

	require.NoError(t, s.Set("channel_emotes", false))
	require.NoError(t, s.Set("channel_emotes", false)) // unchanged, no notification
	require.NoError(t, s.Set("global_emotes", false))  // other key
	require.Equal(t, []bool{false}, changes)

	require.ErrorIs(t, s.Set("nope", true), ErrUnknownKey)

	// persisted
	reopened, err := Open(zerolog.Nop(), fs, path, defaults())
	require.NoError(t, err)
	require.False(t, reopened.Get("channel_emotes"))
	require.False(t, reopened.Get("global_emotes"))

	cancel()
	require.NoError(t, s.Set("channel_emotes", true))
	require.Equal(t, []bool{false}, changes)
}

func TestStore_SetWriteFailure(t *testing.T) {
	t.Parallel()

	base := afero.NewMemMapFs()
	s, err := Open(zerolog.Nop(), base, path, defaults())
	require.NoError(t, err)

	var changes []bool
	s.OnChange("channel_emotes", func(v bool) { changes = append(changes, v) })

	s.fs = afero.NewReadOnlyFs(base)

	require.Error(t, s.Set("channel_emotes", false))
	require.True(t, s.Get("channel_emotes"), "value must stay unchanged when it could not be persisted")
	require.Empty(t, changes)

	s.fs = base

	require.NoError(t, s.Set("channel_emotes", false))
	require.False(t, s.Get("channel_emotes"))
	require.Equal(t, []bool{false}, changes, "retry after a failed write must notify")
}

func TestStore_Reload(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	s, err := Open(zerolog.Nop(), fs, path, defaults())
	require.NoError(t, err)

	var unlisted, global int
	s.OnChange("unlisted_emotes", func(bool) { unlisted++ })
	s.OnChange("global_emotes", func(bool) { global++ })

	require.NoError(t, afero.WriteFile(fs, path, []byte("unlisted_emotes: false\nglobal_emotes: true\n"), 0o600))
	require.NoError(t, s.Reload())

	require.False(t, s.Get("unlisted_emotes"))
	require.Equal(t, 1, unlisted)
	require.Equal(t, 0, global)
}

func TestStore_Watch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "settings.yaml")

	s, err := Open(zerolog.Nop(), afero.NewOsFs(), file, defaults())
	require.NoError(t, err)

	var changed atomic.Bool
	s.OnChange("global_emotes", func(v bool) { changed.Store(!v) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx) }()

	require.Eventually(t, func() bool {
		// keep rewriting until the watcher is set up and has picked the change up
		_ = os.WriteFile(file, []byte("global_emotes: false\n"), 0o600)
		return changed.Load()
	}, 5*time.Second, 50*time.Millisecond)

	require.False(t, s.Get("global_emotes"))

	cancel()
	require.NoError(t, <-done)
}
