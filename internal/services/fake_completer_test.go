package services

import (
	"context"
	"sync"
	"time"
)

// fakeCompleter replays scripted replies and records every prompt.
type fakeCompleter struct {
	mu      sync.Mutex
	replies []fakeReply
	prompts []string
}

type fakeReply struct {
	text string
	err  error
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.prompts = append(f.prompts, prompt)
	if len(f.replies) == 0 {
		return "", nil
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r.text, r.err
}

func (f *fakeCompleter) Name() string { return "fake" }

func (f *fakeCompleter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

// sleepRecorder stands in for the generator's timer.
type sleepRecorder struct {
	waits []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return ctx.Err()
}

func newTestGenerator(c Completer, opts GeneratorOptions) (*QuestionGenerator, *sleepRecorder) {
	g := NewQuestionGenerator(c, opts)
	rec := &sleepRecorder{}
	g.sleep = rec.sleep
	return g, rec
}
