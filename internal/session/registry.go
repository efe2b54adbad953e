package session

import (
	"fmt"
	"sync"

	"github.com/gridplay/gridgame-backend/internal/apperror"
)

// Registry is the process-wide mapping from game id to Session. The lock
// covers only lookup and insert; it is never held across a session
// operation, so games stay fully independent.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// FindOrCreate returns the session for the id, creating it with the given
// dimensions when absent. Dimensions are validated only on the create
// path and ignored when attaching to an existing game. At most one
// session ever exists per id, even under concurrent first-joins.
func (that *Registry) FindOrCreate(id string, rows, cols int) (*Session, bool, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if existing, ok := that.sessions[id]; ok {
		return existing, false, nil
	}

	created, err := New(id, rows, cols)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create session %q: %w", id, err)
	}

	that.sessions[id] = created

	return created, true, nil
}

func (that *Registry) Get(id string) (*Session, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	existing, ok := that.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperror.ErrGameNotFound, id)
	}

	return existing, nil
}

// Remove is caller-invoked cleanup; the registry never deletes on its own.
func (that *Registry) Remove(id string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.sessions, id)
}

func (that *Registry) Len() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.sessions)
}
