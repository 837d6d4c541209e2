package server

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/cvmaker/internal/auth"
	"github.com/jonathan/cvmaker/internal/resumesync"
	"github.com/jonathan/cvmaker/internal/store"
)

// session is the single resume a user is editing.
type session struct {
	store    *store.Store
	hydrator *resumesync.Hydrator
	lastSeen time.Time
}

// hydrate loads the newest persisted resume the first time it succeeds.
// Failures are logged by the hydrator and kept in its status for the preview to show.
func (s *session) hydrate(ctx context.Context) {
	if s.hydrator.Hydrated() {
		return
	}
	_ = s.hydrator.Hydrate(ctx)
}

// sessionRegistry holds one session per identity.
type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*session
	repo     ResumeRepository
	newStore func() *store.Store
}

func newSessionRegistry(repo ResumeRepository) *sessionRegistry {
	return &sessionRegistry{
		sessions: make(map[string]*session),
		repo:     repo,
		newStore: func() *store.Store { return store.New() },
	}
}

// get returns the session of id, creating it on first use.
func (r *sessionRegistry) get(id *auth.Identity) *session {
	key := id.SessionKey()

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[key]; ok {
		s.lastSeen = time.Now()
		return s
	}

	var backend resumesync.Backend = offlineBackend{}
	if r.repo != nil && id.UserID != uuid.Nil {
		backend = &repositoryBackend{repo: r.repo, owner: id.UserID}
	}
	st := r.newStore()
	s := &session{
		store:    st,
		hydrator: resumesync.NewHydrator(backend, st),
		lastSeen: time.Now(),
	}
	r.sessions[key] = s
	return s
}

// evictIdle drops sessions unused for longer than maxIdle and returns how many were removed.
func (r *sessionRegistry) evictIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for key, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(r.sessions, key)
			removed++
		}
	}
	return removed
}

func (r *sessionRegistry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
