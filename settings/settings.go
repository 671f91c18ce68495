// Package settings is a YAML file backed store of boolean settings with change notifications.
package settings

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/adrg/xdg"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const settingsFileName = "stvsync/settings.yaml"

var ErrUnknownKey = errors.New("unknown setting")

// DefaultPath returns the settings file location inside the users config directory.
func DefaultPath() (string, error) {
	return xdg.ConfigFile(settingsFileName)
}

type Store struct {
	logger   zerolog.Logger
	fs       afero.Fs
	path     string
	defaults map[string]bool

	m      sync.RWMutex
	values map[string]bool

	// serializes Set so file and memory agree on the last write
	writeM sync.Mutex

	listenerM sync.RWMutex
	listeners map[string]map[string]func(bool)
}

// Open loads the settings file at path. A missing or empty file yields the defaults.
// Only keys present in defaults are known to the store.
func Open(logger zerolog.Logger, fs afero.Fs, path string, defaults map[string]bool) (*Store, error) {
	s := &Store{
		logger:    logger,
		fs:        fs,
		path:      path,
		defaults:  maps.Clone(defaults),
		values:    maps.Clone(defaults),
		listeners: map[string]map[string]func(bool){},
	}

	values, err := s.read()
	if err != nil {
		return nil, err
	}

	s.values = values

	return s, nil
}

func (s *Store) Get(key string) bool {
	s.m.RLock()
	defer s.m.RUnlock()

	return s.values[key]
}

// All returns a copy of every setting.
func (s *Store) All() map[string]bool {
	s.m.RLock()
	defer s.m.RUnlock()

	return maps.Clone(s.values)
}

// Set stores value under key, persists the file and notifies listeners if the value changed.
func (s *Store) Set(key string, value bool) error {
	if _, ok := s.defaults[key]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	s.writeM.Lock()

	s.m.RLock()
	old := s.values[key]
	snapshot := maps.Clone(s.values)
	s.m.RUnlock()

	snapshot[key] = value

	// the in-memory value only changes once the file holds it
	if err := s.write(snapshot); err != nil {
		s.writeM.Unlock()
		return fmt.Errorf("could not persist setting %s: %w", key, err)
	}

	s.m.Lock()
	s.values[key] = value
	s.m.Unlock()

	s.writeM.Unlock()

	if old != value {
		s.notify(key, value)
	}

	return nil
}

// OnChange registers fn to be called with the new value whenever key changes.
func (s *Store) OnChange(key string, fn func(value bool)) func() {
	id := uuid.NewString()

	s.listenerM.Lock()
	if _, ok := s.listeners[key]; !ok {
		s.listeners[key] = map[string]func(bool){}
	}
	s.listeners[key][id] = fn
	s.listenerM.Unlock()

	return func() {
		s.listenerM.Lock()
		delete(s.listeners[key], id)
		s.listenerM.Unlock()
	}
}

// Reload reads the file again and notifies listeners of every key that changed.
func (s *Store) Reload() error {
	values, err := s.read()
	if err != nil {
		return err
	}

	s.m.Lock()
	old := s.values
	s.values = values
	s.m.Unlock()

	for _, key := range slices.Sorted(maps.Keys(values)) {
		if old[key] != values[key] {
			s.logger.Info().Str("key", key).Bool("value", values[key]).Msg("setting changed on disk")
			s.notify(key, values[key])
		}
	}

	return nil
}

// Watch reloads the settings whenever the file is written until ctx is done.
// It watches the parent directory so editors replacing the file are picked up as well.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	defer watcher.Close()

	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("could not watch settings directory: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(event.Name) != filepath.Clean(s.path) {
				continue
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if err := s.Reload(); err != nil {
				s.logger.Error().Err(err).Str("path", s.path).Msg("could not reload settings")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			s.logger.Error().Err(err).Msg("settings watcher error")
		}
	}
}

func (s *Store) read() (map[string]bool, error) {
	values := maps.Clone(s.defaults)

	b, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return values, nil
		}
		return nil, err
	}

	if len(b) == 0 {
		return values, nil
	}

	var onDisk map[string]bool
	if err := yaml.Unmarshal(b, &onDisk); err != nil {
		return nil, fmt.Errorf("could not parse settings file %s: %w", s.path, err)
	}

	for key, value := range onDisk {
		if _, ok := s.defaults[key]; !ok {
			s.logger.Warn().Str("key", key).Msg("ignoring unknown setting")
			continue
		}
		values[key] = value
	}

	return values, nil
}

func (s *Store) write(values map[string]bool) error {
	b, err := yaml.Marshal(values)
	if err != nil {
		return err
	}

	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	return afero.WriteFile(s.fs, s.path, b, 0o600)
}

func (s *Store) notify(key string, value bool) {
	s.listenerM.RLock()
	fns := slices.Collect(maps.Values(s.listeners[key]))
	s.listenerM.RUnlock()

	for _, fn := range fns {
		fn(value)
	}
}
