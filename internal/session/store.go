// Package session keeps one search controller per browser session.
package session

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mark-c-hall/movie-search/internal/search"
)

var ErrNotFound = errors.New("session not found")

type entry struct {
	controller *search.Controller
	lastSeen   time.Time
}

type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry

	newController func() *search.Controller
	ttl           time.Duration
	logger        *slog.Logger
	now           func() time.Time

	stop chan struct{}
	done chan struct{}
}

// NewStore starts a store whose sessions expire after ttl without use.
// Expired sessions are swept every sweepInterval.
func NewStore(newController func() *search.Controller, ttl, sweepInterval time.Duration, logger *slog.Logger) *Store {
	s := &Store{
		sessions:      make(map[string]*entry),
		newController: newController,
		ttl:           ttl,
		logger:        logger,
		now:           time.Now,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
	go s.cleanupLoop(sweepInterval)
	return s
}

// Create starts a new session and returns its id.
func (s *Store) Create() (string, *search.Controller) {
	id := uuid.NewString()
	c := s.newController()

	s.mu.Lock()
	s.sessions[id] = &entry{controller: c, lastSeen: s.now()}
	s.mu.Unlock()

	return id, c
}

// Get returns the controller of a live session and marks it as used.
func (s *Store) Get(id string) (*search.Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	e.lastSeen = s.now()
	return e.controller, nil
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) cleanupLoop(interval time.Duration) {
	defer close(s.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if n := s.sweep(); n > 0 {
				s.logger.Info("expired sessions removed", "count", n, "remaining", s.Len())
			}
		}
	}
}

// sweep drops sessions idle for longer than the ttl and returns how many
// were removed.
func (s *Store) sweep() int {
	var expired []*search.Controller

	s.mu.Lock()
	for id, e := range s.sessions {
		if s.now().Sub(e.lastSeen) > s.ttl {
			expired = append(expired, e.controller)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, c := range expired {
		c.Close()
	}
	return len(expired)
}

// Close stops the sweeper and closes every session.
func (s *Store) Close() {
	close(s.stop)
	<-s.done

	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*entry)
	s.mu.Unlock()

	for _, e := range sessions {
		e.controller.Close()
	}
}
