// Package registry holds the emote sets and chat rooms known to the host platform.
package registry

import (
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/julez-dev/stvsync/emote"
	"github.com/rs/zerolog"
)

type ChangeKind string

const (
	ChangeLoaded     ChangeKind = "loaded"
	ChangeUnloaded   ChangeKind = "unloaded"
	ChangeRegistered ChangeKind = "registered"
	ChangeRemoved    ChangeKind = "removed"
)

// ScopeDefault marks changes of default (non room) set registrations.
const ScopeDefault = "default"

// Change is published to subscribers for every registry mutation.
type Change struct {
	Kind      ChangeKind `json:"kind"`
	Namespace string     `json:"namespace,omitempty"`
	Key       string     `json:"key"`
	Scope     string     `json:"scope,omitempty"`
	Emotes    int        `json:"emotes,omitempty"`
}

// Registry stores loaded emote sets by key and the default set registrations per namespace.
type Registry struct {
	logger zerolog.Logger

	m        sync.RWMutex
	sets     map[string]emote.Set
	defaults map[string]map[string]struct{}

	subM        sync.Mutex
	subscribers map[string]chan Change
}

func New(logger zerolog.Logger) *Registry {
	return &Registry{
		logger:      logger,
		sets:        map[string]emote.Set{},
		defaults:    map[string]map[string]struct{}{},
		subscribers: map[string]chan Change{},
	}
}

func (r *Registry) AddDefaultSet(namespace, key string, def emote.SetDefinition) {
	r.m.Lock()
	size := r.loadLocked(key, def)

	keys, ok := r.defaults[namespace]
	if !ok {
		keys = map[string]struct{}{}
		r.defaults[namespace] = keys
	}
	keys[key] = struct{}{}
	r.m.Unlock()

	r.publish(Change{Kind: ChangeLoaded, Key: key, Emotes: size})
	r.publish(Change{Kind: ChangeRegistered, Namespace: namespace, Key: key, Scope: ScopeDefault})
}

func (r *Registry) RemoveDefaultSet(namespace, key string) {
	r.m.Lock()
	_, ok := r.defaults[namespace][key]
	delete(r.defaults[namespace], key)
	r.m.Unlock()

	if ok {
		r.publish(Change{Kind: ChangeRemoved, Namespace: namespace, Key: key, Scope: ScopeDefault})
	}
}

// UnloadSet drops the data of a set. Registrations pointing at key are left alone.
func (r *Registry) UnloadSet(key string) {
	r.m.Lock()
	_, ok := r.sets[key]
	delete(r.sets, key)
	r.m.Unlock()

	if ok {
		r.publish(Change{Kind: ChangeUnloaded, Key: key})
	}
}

// Set returns a copy of the loaded set stored under key.
func (r *Registry) Set(key string) (emote.Set, bool) {
	r.m.RLock()
	defer r.m.RUnlock()

	set, ok := r.sets[key]
	if !ok {
		return emote.Set{}, false
	}

	set.Emotes = maps.Clone(set.Emotes)
	return set, true
}

// Sets returns copies of all loaded sets ordered by key.
func (r *Registry) Sets() []emote.Set {
	r.m.RLock()
	defer r.m.RUnlock()

	sets := make([]emote.Set, 0, len(r.sets))
	for _, key := range slices.Sorted(maps.Keys(r.sets)) {
		set := r.sets[key]
		set.Emotes = maps.Clone(set.Emotes)
		sets = append(sets, set)
	}

	return sets
}

// DefaultSets returns the keys registered as default sets in namespace.
func (r *Registry) DefaultSets(namespace string) []string {
	r.m.RLock()
	defer r.m.RUnlock()

	return slices.Sorted(maps.Keys(r.defaults[namespace]))
}

// Subscribe returns a channel receiving every change until cancel is called.
// Changes are dropped for subscribers which don't keep up.
func (r *Registry) Subscribe(buffer int) (string, <-chan Change, func()) {
	id := uuid.NewString()
	ch := make(chan Change, buffer)

	r.subM.Lock()
	r.subscribers[id] = ch
	r.subM.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			r.subM.Lock()
			delete(r.subscribers, id)
			r.subM.Unlock()
			close(ch)
		})
	}

	return id, ch, cancel
}

func (r *Registry) load(key string, def emote.SetDefinition) int {
	r.m.Lock()
	size := r.loadLocked(key, def)
	r.m.Unlock()

	r.publish(Change{Kind: ChangeLoaded, Key: key, Emotes: size})
	return size
}

func (r *Registry) loadLocked(key string, def emote.SetDefinition) int {
	emotes := make(map[string]emote.Emote, len(def.Emotes))
	for _, e := range def.Emotes {
		emotes[e.ID] = e
	}

	r.sets[key] = emote.Set{
		Key:    key,
		Title:  def.Title,
		Source: def.Source,
		Icon:   def.Icon,
		Emotes: emotes,
	}

	return len(emotes)
}

func (r *Registry) publish(c Change) {
	r.subM.Lock()
	defer r.subM.Unlock()

	for id, ch := range r.subscribers {
		select {
		case ch <- c:
		default:
			r.logger.Warn().Str("subscriber", id).Str("key", c.Key).Msg("dropping registry change for slow subscriber")
		}
	}
}
