package world

import (
	"sync"

	"streamworld/internal/engine"
)

// ChunkFlags is externally persisted per-chunk state handed to providers.
type ChunkFlags uint32

const (
	// FlagConquered marks a chunk whose monsters have been cleared.
	FlagConquered ChunkFlags = 1 << iota
)

// ChunkProvider produces the entities of a chunk. It is called once each
// time the chunk enters the window and must be deterministic for a given
// coordinate and flags.
type ChunkProvider interface {
	GenerateChunk(c engine.ChunkCoord, flags ChunkFlags) []*engine.Entity
}

// ProviderFunc adapts a function to ChunkProvider.
type ProviderFunc func(c engine.ChunkCoord, flags ChunkFlags) []*engine.Entity

func (f ProviderFunc) GenerateChunk(c engine.ChunkCoord, flags ChunkFlags) []*engine.Entity {
	return f(c, flags)
}

// FlagSource supplies chunk flags.
type FlagSource interface {
	ChunkFlags(c engine.ChunkCoord) ChunkFlags
}

type noFlags struct{}

func (noFlags) ChunkFlags(engine.ChunkCoord) ChunkFlags { return 0 }

// NoFlags reports zero flags for every chunk.
var NoFlags FlagSource = noFlags{}

// FlagStore is an in-memory FlagSource that behaviours can write to. It is
// safe for concurrent use so remote viewers can read it.
type FlagStore struct {
	mu    sync.RWMutex
	flags map[engine.ChunkCoord]ChunkFlags
}

func NewFlagStore() *FlagStore {
	return &FlagStore{flags: make(map[engine.ChunkCoord]ChunkFlags)}
}

func (s *FlagStore) ChunkFlags(c engine.ChunkCoord) ChunkFlags {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags[c]
}

// Set ors f into the flags of c.
func (s *FlagStore) Set(c engine.ChunkCoord, f ChunkFlags) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[c] |= f
}

// Clear removes f from the flags of c.
func (s *FlagStore) Clear(c engine.ChunkCoord, f ChunkFlags) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[c] &^= f
	if s.flags[c] == 0 {
		delete(s.flags, c)
	}
}
