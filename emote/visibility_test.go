package emote_test

import (
	"testing"

	"github.com/julez-dev/stvsync/emote"
	"github.com/stretchr/testify/require"
)

func TestHasFlag(t *testing.T) {
	t.Parallel()

	cases := []struct {
		value, mask int
		want        bool
	}{
		{0, 0, true},
		{0, 4, false},
		{4, 4, true},
		{5, 4, true},
		{128, 128, true},
		{127, 128, false},
		{4, 4 | 256, false},
		{4 | 256, 4 | 256, true},
		{4 | 256 | 1, 4 | 256, true},
	}

	for _, c := range cases {
		require.Equal(t, c.want, emote.HasFlag(c.value, c.mask), "value=%d mask=%d", c.value, c.mask)
	}

	// exhaustive over the low bits
	for value := 0; value < 512; value++ {
		for mask := 0; mask < 512; mask += 7 {
			require.Equal(t, value&mask == mask, emote.HasFlag(value, mask))
		}
	}
}

func TestIsUnlisted(t *testing.T) {
	t.Parallel()

	for b := 0; b < 1024; b++ {
		want := b&emote.VisibilityUnlisted != 0 || b&emote.VisibilityPermanentlyUnlisted != 0
		require.Equal(t, want, emote.IsUnlisted(foreignEmote("x", "x", b)), "visibility=%d", b)
	}

	require.False(t, emote.IsUnlisted(foreignEmote("x", "x", 0)))
	require.True(t, emote.IsUnlisted(foreignEmote("x", "x", emote.VisibilityPermanentlyUnlisted)))
}
