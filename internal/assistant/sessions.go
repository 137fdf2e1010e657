package assistant

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sessions keeps one Session per id. Sessions share the store injected by
// the factory and own their transcripts. Sessions idle for longer than the
// TTL are dropped, and once the cap is reached the least recently used
// idle session makes room for a new one. Sessions busy with a submission
// are never dropped.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*entry
	factory  func(id string) *Session
	ttl      time.Duration
	max      int
	now      func() time.Time
}

type entry struct {
	session  *Session
	lastUsed time.Time
}

type SessionsOption func(*Sessions)

// WithIdleTTL drops sessions unused for longer than ttl; zero keeps them
func WithIdleTTL(ttl time.Duration) SessionsOption {
	return func(r *Sessions) { r.ttl = ttl }
}

// WithMaxSessions caps the number of sessions; zero means no cap
func WithMaxSessions(n int) SessionsOption {
	return func(r *Sessions) { r.max = n }
}

func WithSessionsClock(now func() time.Time) SessionsOption {
	return func(r *Sessions) { r.now = now }
}

func NewSessions(factory func(id string) *Session, opts ...SessionsOption) *Sessions {
	r := &Sessions{
		sessions: make(map[string]*entry),
		factory:  factory,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create starts a session with a fresh id
func (r *Sessions) Create() *Session {
	return r.GetOrCreate(uuid.NewString())
}

// Get returns a live session and marks it used
func (r *Sessions) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	e, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	if r.expired(e, now) {
		delete(r.sessions, id)
		return nil, false
	}
	e.lastUsed = now
	return e.session, true
}

func (r *Sessions) GetOrCreate(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if e, ok := r.sessions[id]; ok && !r.expired(e, now) {
		e.lastUsed = now
		return e.session
	}

	r.evictLocked(now)
	s := r.factory(id)
	r.sessions[id] = &entry{session: s, lastUsed: now}
	return s
}

func (r *Sessions) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Sessions) expired(e *entry, now time.Time) bool {
	return r.ttl > 0 && now.Sub(e.lastUsed) > r.ttl && !e.session.IsLoading()
}

// evictLocked drops expired sessions, then the least recently used idle
// ones until there is room for one more
func (r *Sessions) evictLocked(now time.Time) {
	for id, e := range r.sessions {
		if r.expired(e, now) {
			delete(r.sessions, id)
		}
	}

	for r.max > 0 && len(r.sessions) >= r.max {
		oldest := ""
		for id, e := range r.sessions {
			if e.session.IsLoading() {
				continue
			}
			if oldest == "" || e.lastUsed.Before(r.sessions[oldest].lastUsed) {
				oldest = id
			}
		}
		if oldest == "" {
			return
		}
		delete(r.sessions, oldest)
	}
}
