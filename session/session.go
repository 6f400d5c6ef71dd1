// Package session keeps each storefront visitor's cart and checkout progress
// in memory, keyed by the session cookie.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/gspot/cart"
	"github.com/ray-remotestate/gspot/checkout"
)

const DefaultTTL = 24 * time.Hour

// Session must be locked while its cart or checkout state is read or changed.
type Session struct {
	sync.Mutex
	ID       string
	Cart     *cart.Cart
	Checkout *checkout.State
	lastSeen time.Time
}

type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// GetOrCreate returns the live session for id, or a new one when id is
// unknown or expired. The returned session's ID may differ from id.
func (s *Store) GetOrCreate(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if sess, ok := s.sessions[id]; ok && now.Sub(sess.lastSeen) < s.ttl {
		sess.lastSeen = now
		return sess
	}

	sess := &Session{
		ID:       uuid.NewString(),
		Cart:     cart.New(),
		Checkout: checkout.NewState(),
		lastSeen: now,
	}
	s.sessions[sess.ID] = sess
	return sess
}

func (s *Store) TTL() time.Duration {
	return s.ttl
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than the TTL.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) >= s.ttl {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				logrus.WithField("expired", n).Debug("swept idle sessions")
			}
		}
	}
}
