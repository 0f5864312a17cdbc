package session

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// Registry holds the live course sessions, keyed by (credential, course).
// A session exists for the duration of one detail-page visit: it enters on
// first load and leaves on explicit discard or idle eviction. No course
// data survives a session.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*CourseSession
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*CourseSession)}
}

// Get retrieves the live session for a credential and course.
func (r *Registry) Get(bearer string, courseID int64) (*CourseSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[sessionKey(bearer, courseID)]
	return s, ok
}

// Add registers a session, replacing (and discarding) any previous session
// for the same credential and course.
func (r *Registry) Add(bearer string, s *CourseSession) {
	key := sessionKey(bearer, s.CourseID())

	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.sessions[key]; ok && prev != s {
		prev.Discard()
	}
	r.sessions[key] = s
}

// Remove discards and drops the session for a credential and course.
// Returns whether a session existed.
func (r *Registry) Remove(bearer string, courseID int64) bool {
	key := sessionKey(bearer, courseID)

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[key]
	if !ok {
		return false
	}
	s.Discard()
	delete(r.sessions, key)
	return true
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// EvictIdle discards and drops every session idle for longer than maxIdle.
// Returns how many were evicted.
func (r *Registry) EvictIdle(maxIdle time.Duration) int {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for key, s := range r.sessions {
		if s.IdleFor(now) > maxIdle {
			s.Discard()
			delete(r.sessions, key)
			evicted++
		}
	}
	return evicted
}

// sessionKey derives the registry key. The credential is hashed so raw
// bearer tokens never become map keys or log material.
func sessionKey(bearer string, courseID int64) string {
	sum := sha256.Sum256([]byte(bearer))
	return fmt.Sprintf("%s:%d", hex.EncodeToString(sum[:8]), courseID)
}
