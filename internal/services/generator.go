package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"studyquiz/internal/config"
)

var (
	ErrInsufficientContent  = errors.New("not enough readable content found in the document")
	ErrNoQuestionsGenerated = errors.New("no questions were generated")
)

type GeneratorOptions struct {
	Batches           int
	QuestionsPerBatch int
	BatchDelay        time.Duration
	RateLimitBackoff  time.Duration
	MinContentChars   int
}

func DefaultGeneratorOptions() GeneratorOptions {
	return GeneratorOptions{
		Batches:           5,
		QuestionsPerBatch: 10,
		BatchDelay:        15 * time.Second,
		RateLimitBackoff:  20 * time.Second,
		MinContentChars:   100,
	}
}

// GeneratorOptionsFromConfig maps the generation settings of cfg.
func GeneratorOptionsFromConfig(cfg *config.Config) GeneratorOptions {
	return GeneratorOptions{
		Batches:           cfg.GenerationBatches,
		QuestionsPerBatch: cfg.QuestionsPerBatch,
		BatchDelay:        cfg.BatchDelay,
		RateLimitBackoff:  cfg.RateLimitBackoff,
		MinContentChars:   cfg.MinContentChars,
	}
}

// Progress is reported before each batch is submitted.
type Progress struct {
	Percent      int
	Batch        int
	TotalBatches int
}

type ProgressFunc func(Progress)

// QuestionGenerator turns lecture text into the model's raw MCQ text, one
// sequential request per chunk.
type QuestionGenerator struct {
	completer Completer
	opts      GeneratorOptions
	sleep     func(ctx context.Context, d time.Duration) error
}

func NewQuestionGenerator(completer Completer, opts GeneratorOptions) *QuestionGenerator {
	if opts.Batches <= 0 {
		opts.Batches = 1
	}
	if opts.QuestionsPerBatch <= 0 {
		opts.QuestionsPerBatch = 1
	}
	return &QuestionGenerator{
		completer: completer,
		opts:      opts,
		sleep:     sleepContext,
	}
}

// Options returns the generator's effective settings.
func (g *QuestionGenerator) Options() GeneratorOptions {
	return g.opts
}

// GenerateMCQs submits every chunk of text in order and concatenates the replies.
func (g *QuestionGenerator) GenerateMCQs(ctx context.Context, text string, onProgress ProgressFunc) (string, error) {
	if utf8.RuneCountInString(text) < g.opts.MinContentChars {
		return "", ErrInsufficientContent
	}

	chunks := SplitChunks(text, g.opts.Batches)
	total := len(chunks)

	var all strings.Builder
	for batch, chunk := range chunks {
		log.Printf("Generating batch %d/%d...", batch+1, total)
		if onProgress != nil {
			onProgress(Progress{
				Percent:      percentOf(batch, total),
				Batch:        batch + 1,
				TotalBatches: total,
			})
		}

		reply, err := g.completeWithRetry(ctx, buildMCQPrompt(chunk, g.opts.QuestionsPerBatch))
		if err != nil {
			return "", fmt.Errorf("batch %d/%d: %w", batch+1, total, err)
		}

		if strings.TrimSpace(reply) == "" {
			log.Printf("Batch %d returned no text", batch+1)
			continue
		}

		all.WriteString(reply)
		all.WriteString("\n\n")
		log.Printf("Batch %d completed successfully", batch+1)

		if batch < total-1 {
			if err := g.sleep(ctx, g.opts.BatchDelay); err != nil {
				return "", err
			}
		}
	}

	if all.Len() == 0 {
		return "", ErrNoQuestionsGenerated
	}

	return all.String(), nil
}

// completeWithRetry re-issues a rate-limited request once after the backoff.
func (g *QuestionGenerator) completeWithRetry(ctx context.Context, prompt string) (string, error) {
	reply, err := g.completer.Complete(ctx, prompt)
	if err == nil || !IsRateLimited(err) {
		return reply, err
	}

	log.Printf("Rate limit hit, waiting %s before retrying", g.opts.RateLimitBackoff)
	if err := g.sleep(ctx, g.opts.RateLimitBackoff); err != nil {
		return "", err
	}

	return g.completer.Complete(ctx, prompt)
}

// SplitChunks divides text into at most n contiguous slices of ceil(len/n) runes.
func SplitChunks(text string, n int) []string {
	runes := []rune(text)
	if len(runes) == 0 || n <= 0 {
		return nil
	}

	size := (len(runes) + n - 1) / n
	chunks := make([]string, 0, n)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

func percentOf(batch, total int) int {
	if total == 0 {
		return 0
	}
	return (batch*100 + total/2) / total
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
