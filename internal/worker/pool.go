package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"studyquiz/internal/models"
	"studyquiz/internal/services"
	"studyquiz/internal/session"
)

var (
	ErrQueueFull  = errors.New("generation queue is full")
	ErrPoolClosed = errors.New("worker pool is stopped")
)

// jobRetention is how long finished jobs stay queryable.
const jobRetention = time.Hour

// Generator builds a question set from one uploaded document.
type Generator interface {
	Generate(ctx context.Context, filename string, data []byte, onProgress services.ProgressFunc) (*models.QuestionSet, error)
}

// Publisher pushes progress messages to a session's listeners.
type Publisher interface {
	Publish(sessionID uuid.UUID, msg interface{})
}

type task struct {
	jobID   uuid.UUID
	session *session.Session
	data    []byte
}

// Pool runs generation jobs on a fixed number of goroutines. Each job submits
// its chunks strictly one after another.
type Pool struct {
	generator   Generator
	publisher   Publisher
	workerCount int
	queue       chan task

	mu   sync.RWMutex
	jobs map[uuid.UUID]*models.GenerationJob

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	stopped bool
}

func NewPool(generator Generator, publisher Publisher, workerCount, queueSize int) *Pool {
	if workerCount <= 0 {
		workerCount = 1
	}
	if queueSize <= 0 {
		queueSize = workerCount * 4
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		generator:   generator,
		publisher:   publisher,
		workerCount: workerCount,
		queue:       make(chan task, queueSize),
		jobs:        make(map[uuid.UUID]*models.GenerationJob),
		ctx:         ctx,
		cancel:      cancel,
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	log.Printf("Started %d worker goroutines", p.workerCount)
}

// Stop cancels running jobs and waits for the workers to exit.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
}

// Submit queues a document for generation. A session runs one job at a time.
func (p *Pool) Submit(sess *session.Session, filename string, data []byte) (models.GenerationJob, error) {
	if err := sess.BeginGeneration(); err != nil {
		return models.GenerationJob{}, err
	}

	job := &models.GenerationJob{
		ID:        uuid.New(),
		SessionID: sess.ID,
		FileName:  filename,
		Status:    models.JobQueued,
		CreatedAt: time.Now(),
	}

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		sess.EndGeneration()
		return models.GenerationJob{}, ErrPoolClosed
	}
	p.pruneLocked(job.CreatedAt)
	p.jobs[job.ID] = job
	snapshot := *job
	p.mu.Unlock()

	select {
	case p.queue <- task{jobID: job.ID, session: sess, data: data}:
		return snapshot, nil
	default:
		p.mu.Lock()
		delete(p.jobs, job.ID)
		p.mu.Unlock()
		sess.EndGeneration()
		return models.GenerationJob{}, ErrQueueFull
	}
}

// Job returns a copy of a job owned by the session.
func (p *Pool) Job(id, sessionID uuid.UUID) (models.GenerationJob, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	job, ok := p.jobs[id]
	if !ok || job.SessionID != sessionID {
		return models.GenerationJob{}, false
	}
	return *job, true
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			log.Printf("Worker %d shutting down", id)
			return
		case t := <-p.queue:
			p.process(id, t)
		}
	}
}

func (p *Pool) process(workerID int, t task) {
	job := p.update(t.jobID, func(j *models.GenerationJob) {
		j.Status = models.JobProcessing
	})
	log.Printf("Worker %d: processing job %s (%s)", workerID, job.ID, job.FileName)

	p.publisher.Publish(job.SessionID, models.WSMessage{
		Type: models.WSStatusUpdate,
		Payload: models.StatusUpdate{
			JobID:    job.ID,
			StepName: "Extracting text",
		},
	})

	set, err := p.generator.Generate(p.ctx, job.FileName, t.data, func(pr services.Progress) {
		p.update(job.ID, func(j *models.GenerationJob) { j.Progress = pr.Percent })
		p.publisher.Publish(job.SessionID, models.WSMessage{
			Type: models.WSStatusUpdate,
			Payload: models.StatusUpdate{
				JobID:        job.ID,
				Progress:     pr.Percent,
				Batch:        pr.Batch,
				TotalBatches: pr.TotalBatches,
				StepName:     fmt.Sprintf("Generating batch %d/%d", pr.Batch, pr.TotalBatches),
			},
		})
	})
	if err != nil {
		t.session.EndGeneration()
		p.handleFailure(job, err)
		return
	}

	// The set is in the store and the session is free before listeners hear about it.
	t.session.Store.AddQuestionSet(set)
	t.session.EndGeneration()
	p.handleSuccess(job, set)
}

func (p *Pool) handleSuccess(job models.GenerationJob, set *models.QuestionSet) {
	now := time.Now()
	p.update(job.ID, func(j *models.GenerationJob) {
		j.Status = models.JobCompleted
		j.Progress = 100
		j.SetID = &set.ID
		j.CompletedAt = &now
	})

	p.publisher.Publish(job.SessionID, models.WSMessage{
		Type: models.WSCompleted,
		Payload: models.CompletedEvent{
			JobID:         job.ID,
			SetID:         set.ID,
			QuestionCount: len(set.Questions),
		},
	})

	log.Printf("Job %s completed successfully with %d questions", job.ID, len(set.Questions))
}

func (p *Pool) handleFailure(job models.GenerationJob, err error) {
	code := services.ErrorCode(err)
	message := services.UserMessage(err)
	now := time.Now()

	p.update(job.ID, func(j *models.GenerationJob) {
		j.Status = models.JobFailed
		j.ErrorCode = code
		j.ErrorMessage = message
		j.CompletedAt = &now
	})

	p.publisher.Publish(job.SessionID, models.WSMessage{
		Type: models.WSError,
		Payload: models.ErrorEvent{
			JobID:        job.ID,
			ErrorCode:    code,
			ErrorMessage: message,
		},
	})

	log.Printf("Job %s failed (%s): %v", job.ID, code, err)
}

// update applies fn to the stored job and returns a copy.
func (p *Pool) update(id uuid.UUID, fn func(j *models.GenerationJob)) models.GenerationJob {
	p.mu.Lock()
	defer p.mu.Unlock()

	job, ok := p.jobs[id]
	if !ok {
		return models.GenerationJob{ID: id}
	}
	fn(job)
	return *job
}

func (p *Pool) pruneLocked(now time.Time) {
	for id, job := range p.jobs {
		if job.CompletedAt != nil && now.Sub(*job.CompletedAt) > jobRetention {
			delete(p.jobs, id)
		}
	}
}
