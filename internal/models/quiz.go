package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OptionCount is the number of answer options every question carries.
const OptionCount = 4

var (
	ErrInvalidQuestion = errors.New("invalid question")
)

type Question struct {
	ID            uuid.UUID `json:"id"`
	Question      string    `json:"question"`
	Options       []string  `json:"options"`
	CorrectAnswer int       `json:"correct_answer"`
}

// Validate checks the question text, the option count and the answer index.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return errors.Join(ErrInvalidQuestion, errors.New("question text is empty"))
	}
	if len(q.Options) != OptionCount {
		return errors.Join(ErrInvalidQuestion, errors.New("question must have exactly 4 options"))
	}
	for _, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return errors.Join(ErrInvalidQuestion, errors.New("option text is empty"))
		}
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= OptionCount {
		return errors.Join(ErrInvalidQuestion, errors.New("correct answer out of range"))
	}
	return nil
}

// CorrectOption returns the text of the correct option.
func (q Question) CorrectOption() string {
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
		return ""
	}
	return q.Options[q.CorrectAnswer]
}

// QuestionSet is the collection generated from one uploaded document.
// It is never mutated after creation.
type QuestionSet struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
	CreatedAt time.Time  `json:"created_at"`
}

func NewQuestionSet(name string, questions []Question) *QuestionSet {
	return &QuestionSet{
		ID:        uuid.New(),
		Name:      name,
		Questions: questions,
		CreatedAt: time.Now(),
	}
}

type QuestionSetSummary struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	QuestionCount int       `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
}

func (s *QuestionSet) Summary() QuestionSetSummary {
	return QuestionSetSummary{
		ID:            s.ID,
		Name:          s.Name,
		QuestionCount: len(s.Questions),
		CreatedAt:     s.CreatedAt,
	}
}

type AnswerRequest struct {
	// Option is nil when the field is missing or null.
	Option *int `json:"option"`
}
