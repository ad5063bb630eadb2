package config

import (
	"fmt"
	"sync/atomic"
)

// Store holds the current Settings. Readers always observe a complete
// Settings value; reloads replace it as a unit.
type Store struct {
	current atomic.Pointer[Settings]
}

// NewStore returns a Store serving s.
func NewStore(s *Settings) *Store {
	st := &Store{}
	st.current.Store(s)
	return st
}

// Current returns the active settings.
func (st *Store) Current() *Settings {
	return st.current.Load()
}

// Swap installs s and returns the settings it replaced.
func (st *Store) Swap(s *Settings) *Settings {
	return st.current.Swap(s)
}

// LoadFile runs the full load and resolve pipeline on an env file.
func LoadFile(path string) (*Settings, error) {
	set, err := Load(path)
	if err != nil {
		return nil, err
	}
	s, err := Resolve(set)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	return s, nil
}

// Reload re-reads path and swaps in the result. On error the active settings
// stay in place.
func (st *Store) Reload(path string) (old, updated *Settings, err error) {
	s, err := LoadFile(path)
	if err != nil {
		return st.Current(), nil, err
	}
	return st.Swap(s), s, nil
}
