package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionStore keeps sessions in memory, keyed by cookie id. Sessions idle for
// longer than the TTL are dropped by Sweep.
type SessionStore struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	idleTTL  time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

func NewSessionStore(idleTTL time.Duration, now func() time.Time, logger *zap.Logger) *SessionStore {
	if now == nil {
		now = time.Now
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		idleTTL:  idleTTL,
		now:      now,
		logger:   logger.Named("sessions"),
	}
}

// Get returns the live session for id and marks it as used.
func (st *SessionStore) Get(id string) (*Session, bool) {
	st.mu.RLock()
	s, exists := st.sessions[id]
	st.mu.RUnlock()

	if !exists {
		return nil, false
	}

	now := st.now()
	if st.expired(s, now) {
		st.mu.Lock()
		delete(st.sessions, id)
		st.mu.Unlock()
		return nil, false
	}

	s.touch(now)
	return s, true
}

// Create starts a new session in the signup view.
func (st *SessionStore) Create() *Session {
	s := NewSession(uuid.NewString(), st.now())

	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()

	return s
}

// Transient returns a blank signup session that is not kept in the store.
func (st *SessionStore) Transient() *Session {
	return NewSession("", st.now())
}

func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep drops idle sessions and reports how many went.
func (st *SessionStore) Sweep() int {
	now := st.now()

	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, s := range st.sessions {
		if st.expired(s, now) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (st *SessionStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := st.Sweep(); n > 0 {
				st.logger.Info("swept idle sessions", zap.Int("removed", n), zap.Int("live", st.Len()))
			}
		}
	}
}

func (st *SessionStore) expired(s *Session, now time.Time) bool {
	return st.idleTTL > 0 && now.Sub(s.idleSince()) > st.idleTTL
}
