package model

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// SessionStore keeps the sessions of all browser tabs in memory. Sessions idle for
// longer than the ttl, or pushed out by newer ones, are closed, which cancels their poll.
type SessionStore struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, *Session]
}

func NewSessionStore(size int, ttl time.Duration) *SessionStore {
	if size <= 0 {
		size = 1024
	}
	return &SessionStore{
		cache: expirable.NewLRU[string, *Session](size, func(id string, s *Session) {
			s.Close()
		}, ttl),
	}
}

// GetOrCreate returns the session for id, creating it when unknown or expired.
// Every access restarts the idle timer.
func (s *SessionStore) GetOrCreate(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.cache.Get(id); ok {
		s.cache.Add(id, sess)
		return sess
	}
	sess := NewSession(id)
	s.cache.Add(id, sess)
	return sess
}

func (s *SessionStore) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Get(id)
}

func (s *SessionStore) Len() int {
	return s.cache.Len()
}

// Running counts the sessions with a poll in flight.
func (s *SessionStore) Running() int {
	n := 0
	for _, sess := range s.cache.Values() {
		if sess.Running() {
			n++
		}
	}
	return n
}

// Close closes every session, used on shutdown.
func (s *SessionStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Purge()
}
