package session

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRegistry_CreateAndGet(t *testing.T) {
	r := NewRegistry(time.Hour)

	s := r.Create()
	if s.Store == nil || s.Quiz == nil {
		t.Fatalf("expected session to carry a store and a quiz")
	}
	if len(s.Store.Snapshot().QuestionSets) != 0 {
		t.Fatalf("expected a new session to start empty")
	}

	got, err := r.Get(s.ID)
	if err != nil || got != s {
		t.Fatalf("expected to get the same session, got %v, %v", got, err)
	}

	if _, err := r.Get(uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRegistry_SessionsAreIsolated(t *testing.T) {
	r := NewRegistry(time.Hour)
	a := r.Create()
	b := r.Create()

	if a.ID == b.ID || a.Store == b.Store {
		t.Fatalf("expected independent sessions")
	}
	if r.Len() != 2 {
		t.Fatalf("expected 2 sessions, got %d", r.Len())
	}
}

func TestSession_OneGenerationAtATime(t *testing.T) {
	s := NewRegistry(time.Hour).Create()

	if err := s.BeginGeneration(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.BeginGeneration(); !errors.Is(err, ErrGenerationRunning) {
		t.Fatalf("expected ErrGenerationRunning, got %v", err)
	}
	if !s.Generating() {
		t.Fatalf("expected generation to be in flight")
	}

	s.EndGeneration()
	if err := s.BeginGeneration(); err != nil {
		t.Fatalf("expected a new generation after the first ended, got %v", err)
	}
}

func TestRegistry_Sweep(t *testing.T) {
	r := NewRegistry(time.Minute)
	idle := r.Create()
	busy := r.Create()
	fresh := r.Create()

	if err := busy.BeginGeneration(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	later := time.Now().Add(2 * time.Minute)
	fresh.mu.Lock()
	fresh.lastSeen = later
	fresh.mu.Unlock()

	if n := r.Sweep(later); n != 1 {
		t.Fatalf("expected 1 expired session, got %d", n)
	}
	if _, err := r.Get(idle.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected idle session to be gone, got %v", err)
	}
	if _, err := r.Get(busy.ID); err != nil {
		t.Fatalf("expected generating session to be kept, got %v", err)
	}
	if _, err := r.Get(fresh.ID); err != nil {
		t.Fatalf("expected recently seen session to be kept, got %v", err)
	}
}

func TestRegistry_SweepDisabled(t *testing.T) {
	r := NewRegistry(0)
	r.Create()
	if n := r.Sweep(time.Now().Add(24 * time.Hour)); n != 0 {
		t.Fatalf("expected no expiry without a TTL, got %d", n)
	}
}

func TestRegistry_StopIsIdempotent(t *testing.T) {
	r := NewRegistry(time.Minute)
	r.StartSweeper(time.Millisecond)
	r.Stop()
	r.Stop()
}
