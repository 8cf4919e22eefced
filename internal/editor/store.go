package editor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/folio/internal/pagination"
)

// Store is a thread-safe in-memory session registry with TTL eviction.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	detector *pagination.Detector
	log      *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewStore(d *pagination.Detector, ttl time.Duration, log *slog.Logger) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		detector: d,
		log:      log,
	}
}

// Create starts a session with a single empty page.
func (s *Store) Create(title string) *Session {
	sess := newSession(uuid.NewString(), title, nil, s.detector)
	s.put(sess)
	return sess
}

// CreateFromContent starts a session whose pages are content reflowed to fit.
func (s *Store) CreateFromContent(title, content string) (*Session, error) {
	pages, err := s.detector.Reflow(content)
	if err != nil {
		return nil, err
	}
	sess := newSession(uuid.NewString(), title, pages, s.detector)
	s.put(sess)
	return sess, nil
}

func (s *Store) put(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
}

// Get returns the session with id, or nil.
func (s *Store) Get(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id]
}

// Take removes the session with id and returns it, or nil. Only one caller
// can take a given session.
func (s *Store) Take(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.sessions[id]
	delete(s.sessions, id)
	return sess
}

// Restore puts back a session obtained from Take.
func (s *Store) Restore(sess *Session) {
	s.put(sess)
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Cleanup removes sessions idle for longer than the TTL and returns how many.
func (s *Store) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	n := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.UpdatedAt()) > s.ttl {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// Start launches the janitor that runs Cleanup every interval.
func (s *Store) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.Cleanup(); n > 0 {
					s.log.Debug("sessions evicted", "count", n, "remaining", s.Len())
				}
			}
		}
	}()
}

// Stop halts the janitor and waits for it to exit.
func (s *Store) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}
