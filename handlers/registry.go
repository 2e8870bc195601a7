package handlers

import (
	"sync"

	"github.com/google/uuid"

	"p9e.in/bib/session"
)

// Registry holds the live form sessions keyed by id.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*session.FormSession
	factory  func() *session.FormSession
}

// NewRegistry creates a registry that builds sessions with factory.
func NewRegistry(factory func() *session.FormSession) *Registry {
	return &Registry{
		sessions: make(map[string]*session.FormSession),
		factory:  factory,
	}
}

// Create builds a fresh session and returns its id.
func (reg *Registry) Create() (string, *session.FormSession) {
	id := uuid.NewString()
	s := reg.factory()
	reg.mu.Lock()
	reg.sessions[id] = s
	reg.mu.Unlock()
	return id, s
}

// Get returns the session for id, or false.
func (reg *Registry) Get(id string) (*session.FormSession, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	s, ok := reg.sessions[id]
	return s, ok
}

// Delete removes the session for id.
func (reg *Registry) Delete(id string) {
	reg.mu.Lock()
	delete(reg.sessions, id)
	reg.mu.Unlock()
}

// Len returns the number of live sessions.
func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.sessions)
}
