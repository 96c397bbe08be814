// Package session keeps the in-memory state of each browser session. A page
// load starts a new session; nothing outlives the process.
package session

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"studyquiz/internal/quiz"
	"studyquiz/internal/store"
)

var (
	ErrNotFound          = errors.New("session not found")
	ErrGenerationRunning = errors.New("a question generation is already running for this session")
)

type Session struct {
	ID        uuid.UUID
	Store     *store.StudyStore
	Quiz      *quiz.Engine
	CreatedAt time.Time

	mu         sync.Mutex
	lastSeen   time.Time
	generating bool
}

func newSession() *Session {
	st := store.NewStudyStore()
	now := time.Now()
	return &Session{
		ID:        uuid.New(),
		Store:     st,
		Quiz:      quiz.NewEngine(st),
		CreatedAt: now,
		lastSeen:  now,
	}
}

// BeginGeneration marks a generation in flight. Only one runs per session.
func (s *Session) BeginGeneration() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generating {
		return ErrGenerationRunning
	}
	s.generating = true
	return nil
}

func (s *Session) EndGeneration() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generating = false
}

func (s *Session) Generating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generating
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generating {
		return 0
	}
	return now.Sub(s.lastSeen)
}

// Registry holds live sessions and expires idle ones.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	idleTTL  time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewRegistry(idleTTL time.Duration) *Registry {
	return &Registry{
		sessions: make(map[uuid.UUID]*Session),
		idleTTL:  idleTTL,
		stopChan: make(chan struct{}),
	}
}

func (r *Registry) Create() *Session {
	s := newSession()

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	log.Printf("Session %s started", s.ID)
	return s
}

// Get returns a live session and refreshes its idle timer.
func (r *Registry) Get(id uuid.UUID) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	s.touch()
	return s, nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than the TTL and returns how many went.
// Sessions with a generation in flight are kept.
func (r *Registry) Sweep(now time.Time) int {
	if r.idleTTL <= 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if s.idleSince(now) > r.idleTTL {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep every interval until Stop.
func (r *Registry) StartSweeper(interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-r.stopChan:
				return
			case now := <-ticker.C:
				if n := r.Sweep(now); n > 0 {
					log.Printf("Expired %d idle sessions", n)
				}
			}
		}
	}()
}

func (r *Registry) Stop() {
	r.stopOnce.Do(func() { close(r.stopChan) })
}
