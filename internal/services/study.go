package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"studyquiz/internal/models"
)

var ErrNoValidQuestions = errors.New("no valid questions were generated")

// Error codes surfaced to the uploader.
const (
	CodeRateLimited         = "RATE_LIMITED"
	CodeInsufficientContent = "INSUFFICIENT_CONTENT"
	CodeUnsupportedFormat   = "UNSUPPORTED_FORMAT"
	CodeEmptyFile           = "EMPTY_FILE"
	CodeExtractionFailed    = "EXTRACTION_FAILED"
	CodeNoQuestions         = "NO_QUESTIONS"
	CodeGenerationFailed    = "GENERATION_FAILED"
)

const (
	MessageRateLimited      = "API rate limit reached. Please wait a few minutes and try again."
	MessageGenerationFailed = "Failed to generate questions. Please try again."
)

// StudyService runs an uploaded document through extraction, generation and parsing.
type StudyService struct {
	extractor *FileExtractService
	generator *QuestionGenerator
	debug     bool
}

func NewStudyService(extractor *FileExtractService, generator *QuestionGenerator, debug bool) *StudyService {
	return &StudyService{
		extractor: extractor,
		generator: generator,
		debug:     debug,
	}
}

// Generate builds a question set from one uploaded document.
func (s *StudyService) Generate(ctx context.Context, filename string, data []byte, onProgress ProgressFunc) (*models.QuestionSet, error) {
	text, err := s.extractor.ExtractText(filename, data)
	if err != nil {
		return nil, err
	}

	if s.debug {
		log.Printf("Extracted text sample: %q", sample(text, 500))
	}

	raw, err := s.generator.GenerateMCQs(ctx, text, onProgress)
	if err != nil {
		return nil, err
	}

	questions, dropped := parseMCQs(raw)
	if s.debug {
		log.Printf("Parsed %d questions from %d bytes of model output", len(questions), len(raw))
		if dropped > 0 {
			log.Printf("WARNING: dropped %d malformed question blocks", dropped)
		}
	}
	if len(questions) == 0 {
		return nil, ErrNoValidQuestions
	}

	set := models.NewQuestionSet(filename, questions)
	log.Printf("Question set %s created from %s with %d questions", set.ID, filename, len(questions))
	return set, nil
}

// ErrorCode classifies a pipeline error for API responses.
func ErrorCode(err error) string {
	switch {
	case IsRateLimited(err):
		return CodeRateLimited
	case errors.Is(err, ErrInsufficientContent):
		return CodeInsufficientContent
	case errors.Is(err, ErrUnsupportedFormat):
		return CodeUnsupportedFormat
	case errors.Is(err, ErrEmptyFile):
		return CodeEmptyFile
	case errors.Is(err, ErrExtractionFailed):
		return CodeExtractionFailed
	case errors.Is(err, ErrNoValidQuestions), errors.Is(err, ErrNoQuestionsGenerated):
		return CodeNoQuestions
	default:
		return CodeGenerationFailed
	}
}

// UserMessage is the message shown to the user when the upload flow fails.
// Only rate limiting is told apart from every other failure.
func UserMessage(err error) string {
	if IsRateLimited(err) {
		return MessageRateLimited
	}
	return MessageGenerationFailed
}

// CheckConnection sends a short probe prompt and reports whether the model answered.
func CheckConnection(ctx context.Context, c Completer) error {
	reply, err := c.Complete(ctx, ProbePrompt)
	if err != nil {
		return fmt.Errorf("connection check failed: %w", err)
	}
	if strings.TrimSpace(reply) == "" {
		return errors.New("connection check failed: empty reply")
	}
	log.Printf("API test result from %s: %s", c.Name(), sample(reply, 200))
	return nil
}

func sample(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
