package registry

import (
	"iter"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/julez-dev/stvsync/emote"
)

// Room is an observed chat room. Its sets are loaded into the shared Registry.
type Room struct {
	id       string
	registry *Registry

	m    sync.Mutex
	sets map[string]map[string]struct{}
}

func (r *Room) ID() string {
	return r.id
}

func (r *Room) AddSet(namespace, key string, def emote.SetDefinition) {
	r.registry.load(key, def)

	r.m.Lock()
	keys, ok := r.sets[namespace]
	if !ok {
		keys = map[string]struct{}{}
		r.sets[namespace] = keys
	}
	keys[key] = struct{}{}
	r.m.Unlock()

	r.registry.publish(Change{Kind: ChangeRegistered, Namespace: namespace, Key: key, Scope: r.id})
}

func (r *Room) RemoveSet(namespace, key string) {
	r.m.Lock()
	_, ok := r.sets[namespace][key]
	delete(r.sets[namespace], key)
	r.m.Unlock()

	if ok {
		r.registry.publish(Change{Kind: ChangeRemoved, Namespace: namespace, Key: key, Scope: r.id})
	}
}

// SetKeys returns the keys of the sets registered for the room in namespace.
func (r *Room) SetKeys(namespace string) []string {
	r.m.Lock()
	defer r.m.Unlock()

	return slices.Sorted(maps.Keys(r.sets[namespace]))
}

// Rooms is the list of observed rooms. Listeners are notified outside of any lock.
type Rooms struct {
	registry *Registry

	m     sync.RWMutex
	rooms map[string]*Room
	order []string

	listenerM sync.RWMutex
	onAdd     map[string]func(emote.Channel)
	onRemove  map[string]func(emote.Channel)
}

func NewRooms(registry *Registry) *Rooms {
	return &Rooms{
		registry: registry,
		rooms:    map[string]*Room{},
		onAdd:    map[string]func(emote.Channel){},
		onRemove: map[string]func(emote.Channel){},
	}
}

// Add starts observing the room id. It reports false if the room was already observed.
func (r *Rooms) Add(id string) (*Room, bool) {
	r.m.Lock()
	if room, ok := r.rooms[id]; ok {
		r.m.Unlock()
		return room, false
	}

	room := &Room{
		id:       id,
		registry: r.registry,
		sets:     map[string]map[string]struct{}{},
	}
	r.rooms[id] = room
	r.order = append(r.order, id)
	r.m.Unlock()

	r.notify(r.onAdd, room)

	return room, true
}

// Remove stops observing the room id. It reports false if the room was not observed.
func (r *Rooms) Remove(id string) bool {
	r.m.Lock()
	room, ok := r.rooms[id]
	if !ok {
		r.m.Unlock()
		return false
	}

	delete(r.rooms, id)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == id })
	r.m.Unlock()

	r.notify(r.onRemove, room)

	return true
}

func (r *Rooms) Get(id string) (*Room, bool) {
	r.m.RLock()
	defer r.m.RUnlock()

	room, ok := r.rooms[id]
	return room, ok
}

// IterateRooms yields a snapshot of the observed rooms in the order they were added.
func (r *Rooms) IterateRooms() iter.Seq[emote.Channel] {
	r.m.RLock()
	rooms := make([]*Room, 0, len(r.order))
	for _, id := range r.order {
		rooms = append(rooms, r.rooms[id])
	}
	r.m.RUnlock()

	return func(yield func(emote.Channel) bool) {
		for _, room := range rooms {
			if !yield(room) {
				return
			}
		}
	}
}

func (r *Rooms) OnRoomAdd(fn func(ch emote.Channel)) func() {
	return r.listen(r.onAdd, fn)
}

func (r *Rooms) OnRoomRemove(fn func(ch emote.Channel)) func() {
	return r.listen(r.onRemove, fn)
}

func (r *Rooms) listen(listeners map[string]func(emote.Channel), fn func(emote.Channel)) func() {
	id := uuid.NewString()

	r.listenerM.Lock()
	listeners[id] = fn
	r.listenerM.Unlock()

	return func() {
		r.listenerM.Lock()
		delete(listeners, id)
		r.listenerM.Unlock()
	}
}

func (r *Rooms) notify(listeners map[string]func(emote.Channel), room *Room) {
	r.listenerM.RLock()
	fns := slices.Collect(maps.Values(listeners))
	r.listenerM.RUnlock()

	for _, fn := range fns {
		fn(room)
	}
}
