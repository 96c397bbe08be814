package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"studyquiz/internal/models"
	"studyquiz/internal/services"
	"studyquiz/internal/session"
)

type fakeGenerator struct {
	set     *models.QuestionSet
	err     error
	release chan struct{}
}

func (g *fakeGenerator) Generate(ctx context.Context, filename string, data []byte, onProgress services.ProgressFunc) (*models.QuestionSet, error) {
	if g.release != nil {
		select {
		case <-g.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	onProgress(services.Progress{Percent: 0, Batch: 1, TotalBatches: 2})
	onProgress(services.Progress{Percent: 50, Batch: 2, TotalBatches: 2})
	return g.set, g.err
}

type recordingPublisher struct {
	mu       sync.Mutex
	messages []models.WSMessage
	done     chan struct{}
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{done: make(chan struct{}, 8)}
}

func (p *recordingPublisher) Publish(sessionID uuid.UUID, msg interface{}) {
	m := msg.(models.WSMessage)
	p.mu.Lock()
	p.messages = append(p.messages, m)
	p.mu.Unlock()
	if m.Type == models.WSCompleted || m.Type == models.WSError {
		p.done <- struct{}{}
	}
}

func (p *recordingPublisher) wait(t *testing.T) []models.WSMessage {
	t.Helper()
	select {
	case <-p.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for the job to finish")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.WSMessage(nil), p.messages...)
}

func sampleSet() *models.QuestionSet {
	return models.NewQuestionSet("lecture.txt", []models.Question{{
		ID:            uuid.New(),
		Question:      "What is ATP?",
		Options:       []string{"Energy", "Protein", "Sugar", "Fat"},
		CorrectAnswer: 0,
	}})
}

func TestPool_CompletesJob(t *testing.T) {
	set := sampleSet()
	pub := newRecordingPublisher()
	pool := NewPool(&fakeGenerator{set: set}, pub, 1, 4)
	pool.Start()
	defer pool.Stop()

	sess := session.NewRegistry(time.Hour).Create()
	job, err := pool.Submit(sess, "lecture.txt", []byte("text"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.Status != models.JobQueued {
		t.Fatalf("expected queued job, got %s", job.Status)
	}

	msgs := pub.wait(t)
	if msgs[0].Type != models.WSStatusUpdate {
		t.Fatalf("expected a status update first, got %s", msgs[0].Type)
	}
	last := msgs[len(msgs)-1]
	if last.Type != models.WSCompleted {
		t.Fatalf("expected completed last, got %s", last.Type)
	}
	if ev := last.Payload.(models.CompletedEvent); ev.SetID != set.ID || ev.QuestionCount != 1 {
		t.Fatalf("unexpected completed event %+v", ev)
	}

	if snap := sess.Store.Snapshot(); snap.CurrentSet != set {
		t.Fatalf("expected the set to be added to the session store")
	}
	if sess.Generating() {
		t.Fatalf("expected generation flag to be cleared")
	}

	got, ok := pool.Job(job.ID, sess.ID)
	if !ok || got.Status != models.JobCompleted || got.Progress != 100 || got.SetID == nil || *got.SetID != set.ID {
		t.Fatalf("unexpected job state %+v", got)
	}
	if _, ok := pool.Job(job.ID, uuid.New()); ok {
		t.Fatalf("expected another session not to see the job")
	}
}

func TestPool_FailedJob(t *testing.T) {
	pub := newRecordingPublisher()
	limited := services.ErrRateLimited
	pool := NewPool(&fakeGenerator{err: limited}, pub, 1, 4)
	pool.Start()
	defer pool.Stop()

	sess := session.NewRegistry(time.Hour).Create()
	job, err := pool.Submit(sess, "lecture.txt", []byte("text"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msgs := pub.wait(t)
	last := msgs[len(msgs)-1]
	if last.Type != models.WSError {
		t.Fatalf("expected error event, got %s", last.Type)
	}
	ev := last.Payload.(models.ErrorEvent)
	if ev.ErrorCode != services.CodeRateLimited || ev.ErrorMessage != services.MessageRateLimited {
		t.Fatalf("unexpected error event %+v", ev)
	}

	got, _ := pool.Job(job.ID, sess.ID)
	if got.Status != models.JobFailed || got.ErrorCode != services.CodeRateLimited {
		t.Fatalf("unexpected job state %+v", got)
	}
	if len(sess.Store.Snapshot().QuestionSets) != 0 {
		t.Fatalf("expected no set to be stored on failure")
	}
	if sess.Generating() {
		t.Fatalf("expected generation flag to be cleared")
	}
}

func TestPool_OneGenerationPerSession(t *testing.T) {
	gen := &fakeGenerator{set: sampleSet(), release: make(chan struct{})}
	pub := newRecordingPublisher()
	pool := NewPool(gen, pub, 1, 4)
	pool.Start()
	defer pool.Stop()

	sess := session.NewRegistry(time.Hour).Create()
	if _, err := pool.Submit(sess, "a.txt", []byte("a")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := pool.Submit(sess, "b.txt", []byte("b")); !errors.Is(err, session.ErrGenerationRunning) {
		t.Fatalf("expected ErrGenerationRunning, got %v", err)
	}

	close(gen.release)
	pub.wait(t)

	if _, err := pool.Submit(sess, "c.txt", []byte("c")); err != nil {
		t.Fatalf("expected a new upload after completion, got %v", err)
	}
	pub.wait(t)
}

func TestPool_QueueFull(t *testing.T) {
	// No workers started, so the buffer only fills.
	pool := NewPool(&fakeGenerator{set: sampleSet()}, newRecordingPublisher(), 1, 1)
	registry := session.NewRegistry(time.Hour)

	if _, err := pool.Submit(registry.Create(), "a.txt", []byte("a")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second := registry.Create()
	if _, err := pool.Submit(second, "b.txt", []byte("b")); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if second.Generating() {
		t.Fatalf("expected the rejected session to be free to retry")
	}
}

func TestPool_StopRejectsSubmissions(t *testing.T) {
	pool := NewPool(&fakeGenerator{set: sampleSet()}, newRecordingPublisher(), 1, 1)
	pool.Start()
	pool.Stop()
	pool.Stop()

	sess := session.NewRegistry(time.Hour).Create()
	if _, err := pool.Submit(sess, "a.txt", []byte("a")); !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("expected ErrPoolClosed, got %v", err)
	}
	if sess.Generating() {
		t.Fatalf("expected generation flag to be cleared")
	}
}
