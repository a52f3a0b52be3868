// Package memory implements the typed, tag-keyed slot store every block
// uses for its statics, state, and parameters (spec §4.3). It is grounded
// on internal/state/memory_store.go's map-plus-RWMutex shape and its
// "reads return a defensive copy" guarantee, narrowed here to a closed
// block.Value element type instead of interface{} since every slot in
// this domain is declared with a known Kind up front.
package memory

import (
	"fmt"
	"sync"

	"github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/block"
	streamprocerrors "github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/errors"
)

// slot tracks a declared tag's expected kind alongside its current value
// and whether it has ever been assigned.
type slot struct {
	kind   block.Kind
	value  block.Value
	filled bool
}

// Store is a typed, tag-keyed value store. A zero Store is not usable;
// call NewStore. Store is safe for concurrent use; callers that need
// read-then-write atomicity (e.g. a block's own mutex-guarded Process)
// must still serialize at a higher level, since Store's lock only
// protects its own map.
type Store struct {
	mu        sync.RWMutex
	blockName string
	label     string // "static", "state", or "parameter" — for error messages
	slots     map[string]*slot
}

// NewStore creates an empty store for the given block instance and slot
// label (used only to make InvalidStatics/InvalidInput errors readable).
func NewStore(blockName, label string) *Store {
	return &Store{
		blockName: blockName,
		label:     label,
		slots:     make(map[string]*slot),
	}
}

// Declare registers tag with its expected Kind. Declaring the same tag
// twice with the same kind is idempotent; declaring it twice with a
// different kind panics, since that is a block-implementation bug, not a
// runtime condition a caller can recover from.
func (s *Store) Declare(tag string, kind block.Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.slots[tag]; ok {
		if existing.kind != kind {
			panic(fmt.Sprintf("memory: tag %q redeclared with a different kind on block %q", tag, s.blockName))
		}
		return
	}
	s.slots[tag] = &slot{kind: kind}
}

// Set assigns value to tag. It returns InvalidStatics if tag was never
// declared or if value's Kind doesn't match the declared Kind.
func (s *Store) Set(tag string, value block.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[tag]
	if !ok {
		return streamprocerrors.NewInvalidStaticsError(s.blockName, tag, fmt.Sprintf("undeclared %s tag", s.label), nil)
	}
	if sl.kind != value.Kind() {
		return streamprocerrors.NewInvalidStaticsError(s.blockName, tag, fmt.Sprintf("expected kind %v, got %v", sl.kind, value.Kind()), nil)
	}
	sl.value = value.Clone()
	sl.filled = true
	return nil
}

// Get returns a deep copy of tag's current value. It returns
// InvalidStatics if tag was never declared or never assigned.
func (s *Store) Get(tag string) (block.Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sl, ok := s.slots[tag]
	if !ok {
		return block.Value{}, streamprocerrors.NewInvalidStaticsError(s.blockName, tag, fmt.Sprintf("undeclared %s tag", s.label), nil)
	}
	if !sl.filled {
		return block.Value{}, streamprocerrors.NewInvalidStaticsError(s.blockName, tag, "not yet assigned", nil)
	}
	return sl.value.Clone(), nil
}

// GetOr returns tag's current value, or fallback if tag was declared but
// never assigned. It still returns InvalidStatics if tag was never
// declared, since that is always a programming error.
func (s *Store) GetOr(tag string, fallback block.Value) (block.Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sl, ok := s.slots[tag]
	if !ok {
		return block.Value{}, streamprocerrors.NewInvalidStaticsError(s.blockName, tag, fmt.Sprintf("undeclared %s tag", s.label), nil)
	}
	if !sl.filled {
		return fallback.Clone(), nil
	}
	return sl.value.Clone(), nil
}

// AllFilled reports whether every declared tag has been assigned a
// value. Blocks use this to implement IsInitialized/init-completeness
// checks (spec §4.1 "every declared static has a type-consistent value").
func (s *Store) AllFilled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sl := range s.slots {
		if !sl.filled {
			return false
		}
	}
	return true
}

// Tags returns the declared tag names. Order is not guaranteed.
func (s *Store) Tags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.slots))
	for tag := range s.slots {
		out = append(out, tag)
	}
	return out
}
