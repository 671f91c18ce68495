package registry_test

import (
	"testing"

	"github.com/julez-dev/stvsync/emote"
	"github.com/julez-dev/stvsync/registry"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func definition(names ...string) emote.SetDefinition {
	def := emote.SetDefinition{Title: "Channel Emotes", Source: emote.SourceLabel, Icon: "icon"}
	for _, name := range names {
		def.Emotes = append(def.Emotes, emote.Emote{ID: "id-" + name, Name: name})
	}
	return def
}

func drain(ch <-chan registry.Change) []registry.Change {
	var out []registry.Change
	for {
		select {
		case c := <-ch:
			out = append(out, c)
		default:
			return out
		}
	}
}

func TestRegistry_DefaultSets(t *testing.T) {
	t.Parallel()

	reg := registry.New(zerolog.Nop())
	_, changes, cancel := reg.Subscribe(16)
	defer cancel()

	reg.AddDefaultSet(emote.Namespace, emote.GlobalSetKey, definition("EZ", "Clap"))

	set, ok := reg.Set(emote.GlobalSetKey)
	require.True(t, ok)
	require.Equal(t, emote.GlobalSetKey, set.Key)
	require.Len(t, set.Emotes, 2)
	require.Equal(t, []string{emote.GlobalSetKey}, reg.DefaultSets(emote.Namespace))

	reg.RemoveDefaultSet(emote.Namespace, emote.GlobalSetKey)
	reg.UnloadSet(emote.GlobalSetKey)

	// removing twice publishes nothing
	reg.RemoveDefaultSet(emote.Namespace, emote.GlobalSetKey)
	reg.UnloadSet(emote.GlobalSetKey)

	_, ok = reg.Set(emote.GlobalSetKey)
	require.False(t, ok)
	require.Empty(t, reg.DefaultSets(emote.Namespace))

	require.Equal(t, []registry.Change{
		{Kind: registry.ChangeLoaded, Key: emote.GlobalSetKey, Emotes: 2},
		{Kind: registry.ChangeRegistered, Namespace: emote.Namespace, Key: emote.GlobalSetKey, Scope: registry.ScopeDefault},
		{Kind: registry.ChangeRemoved, Namespace: emote.Namespace, Key: emote.GlobalSetKey, Scope: registry.ScopeDefault},
		{Kind: registry.ChangeUnloaded, Key: emote.GlobalSetKey},
	}, drain(changes))
}

func TestRegistry_SetReturnsCopy(t *testing.T) {
	t.Parallel()

	reg := registry.New(zerolog.Nop())
	reg.AddDefaultSet(emote.Namespace, "key", definition("EZ"))

	set, _ := reg.Set("key")
	delete(set.Emotes, "id-EZ")

	set, _ = reg.Set("key")
	assert.Contains(t, set.Emotes, "id-EZ")
}

func TestRegistry_Sets(t *testing.T) {
	t.Parallel()

	reg := registry.New(zerolog.Nop())
	reg.AddDefaultSet(emote.Namespace, "b", definition("EZ"))
	reg.AddDefaultSet(emote.Namespace, "a", definition())

	sets := reg.Sets()
	require.Len(t, sets, 2)
	assert.Equal(t, "a", sets[0].Key)
	assert.Equal(t, "b", sets[1].Key)
}

func TestRegistry_SubscribeSlowSubscriber(t *testing.T) {
	t.Parallel()

	reg := registry.New(zerolog.Nop())
	_, changes, cancel := reg.Subscribe(1)

	reg.AddDefaultSet(emote.Namespace, "key", definition())

	// only the first change fits into the buffer
	require.Len(t, drain(changes), 1)

	cancel()
	cancel()

	_, open := <-changes
	require.False(t, open)

	reg.UnloadSet("key")
}

func TestRegistry_Search(t *testing.T) {
	t.Parallel()

	reg := registry.New(zerolog.Nop())
	reg.AddDefaultSet(emote.Namespace, "global", definition("peepoClap", "EZ"))
	reg.AddDefaultSet(emote.Namespace, "channel", definition("Clap", "peepoSad"))

	results := reg.Search("clap", 0)
	require.Len(t, results, 2)
	assert.Equal(t, "Clap", results[0].Emote.Name)
	assert.Equal(t, "channel", results[0].SetKey)
	assert.Equal(t, 0, results[0].Distance)
	assert.Equal(t, "peepoClap", results[1].Emote.Name)
	assert.Equal(t, "global", results[1].SetKey)

	upper := reg.Search("CLAP", 0)
	require.Len(t, upper, 2)
	assert.Equal(t, "Clap", upper[0].Emote.Name)
	assert.Equal(t, 0, upper[0].Distance, "distance ignores case")
	assert.Equal(t, 5, upper[1].Distance)

	require.Len(t, reg.Search("peepo", 1), 1)
	require.Empty(t, reg.Search("xyz", 10))
}
