package dock

import (
	"iter"
	"sort"

	"github.com/1broseidon/tiledock/internal/platform"
)

// Store holds bindings and auto-snap declarations. It does no locking;
// the Controller serializes access.
type Store struct {
	bindings map[platform.PanelID]Binding
	configs  map[platform.PanelID]AutoSnapConfig
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		bindings: make(map[platform.PanelID]Binding),
		configs:  make(map[platform.PanelID]AutoSnapConfig),
	}
}

// SetBinding stores b, replacing any binding of the same follower.
func (s *Store) SetBinding(b Binding) {
	s.bindings[b.FollowerID] = b
}

// RemoveBinding deletes the follower's binding and returns it.
func (s *Store) RemoveBinding(follower platform.PanelID) (Binding, bool) {
	b, ok := s.bindings[follower]
	if ok {
		delete(s.bindings, follower)
	}
	return b, ok
}

// Binding returns the follower's binding.
func (s *Store) Binding(follower platform.PanelID) (Binding, bool) {
	b, ok := s.bindings[follower]
	return b, ok
}

// BindingsTargeting yields every binding whose target is target, ordered by
// follower ID.
func (s *Store) BindingsTargeting(target platform.PanelID) iter.Seq[Binding] {
	return func(yield func(Binding) bool) {
		for _, id := range sortedKeys(s.bindings) {
			b := s.bindings[id]
			if b.TargetID != target {
				continue
			}
			if !yield(b) {
				return
			}
		}
	}
}

// Bindings returns all bindings ordered by follower ID.
func (s *Store) Bindings() []Binding {
	out := make([]Binding, 0, len(s.bindings))
	for _, id := range sortedKeys(s.bindings) {
		out = append(out, s.bindings[id])
	}
	return out
}

// SetAutoSnapConfig stores c. A config without edges removes the entry.
func (s *Store) SetAutoSnapConfig(c AutoSnapConfig) {
	if c.Disabled() {
		delete(s.configs, c.PanelID)
		return
	}
	s.configs[c.PanelID] = c
}

// ClearAutoSnapConfig removes the panel's config.
func (s *Store) ClearAutoSnapConfig(id platform.PanelID) {
	delete(s.configs, id)
}

// AutoSnapConfig returns the panel's config.
func (s *Store) AutoSnapConfig(id platform.PanelID) (AutoSnapConfig, bool) {
	c, ok := s.configs[id]
	return c, ok
}

// AllAutoSnapConfigs yields every config ordered by panel ID. The order is
// stable, which keeps proximity tie-breaks steady within a drag.
func (s *Store) AllAutoSnapConfigs() iter.Seq[AutoSnapConfig] {
	return func(yield func(AutoSnapConfig) bool) {
		for _, id := range sortedKeys(s.configs) {
			if !yield(s.configs[id]) {
				return
			}
		}
	}
}

func sortedKeys[V any](m map[platform.PanelID]V) []platform.PanelID {
	keys := make([]platform.PanelID, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
