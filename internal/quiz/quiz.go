// Package quiz runs the interactive quiz over a session's study store: one
// question at a time, selection locked until continue, completion and restart.
package quiz

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"studyquiz/internal/models"
	"studyquiz/internal/store"
)

var (
	ErrNoQuestions   = errors.New("no questions available")
	ErrInvalidOption = errors.New("option out of range")
	ErrAnswerLocked  = errors.New("an answer was already selected for this question")
	ErrNotAnswered   = errors.New("select an answer before continuing")
	ErrQuizComplete  = errors.New("all questions completed")
)

type State string

const (
	StateEmpty    State = "empty"
	StateQuestion State = "question"
	StateComplete State = "complete"
)

const (
	MessageEmpty    = "No questions available. Please generate questions first."
	MessageComplete = "All questions completed! Would you like to start over?"
	FeedbackCorrect = "Correct!"
	FeedbackWrong   = "Not quite right."
)

// View is what a quiz front end renders for the current state.
type View struct {
	State    State     `json:"state"`
	Message  string    `json:"message,omitempty"`
	SetID    *uuid.UUID `json:"set_id,omitempty"`
	SetName  string     `json:"set_name,omitempty"`
	Index    int        `json:"index"`
	Position int        `json:"position"`
	Total    int        `json:"total"`

	QuestionID *uuid.UUID `json:"question_id,omitempty"`
	Question   string     `json:"question,omitempty"`
	Options    []string   `json:"options,omitempty"`

	Selected      *int   `json:"selected,omitempty"`
	Revealed      bool   `json:"revealed"`
	Correct       *bool  `json:"correct,omitempty"`
	CorrectAnswer *int   `json:"correct_answer,omitempty"`
	CorrectOption string `json:"correct_option,omitempty"`
	Feedback      string `json:"feedback,omitempty"`

	Score    int `json:"score"`
	Answered int `json:"answered"`
}

// Engine holds the per-question interaction state on top of a StudyStore.
type Engine struct {
	mu        sync.Mutex
	store     *store.StudyStore
	version   uint64
	selected  *int
	completed bool
	score     int
	answered  int
}

func NewEngine(s *store.StudyStore) *Engine {
	return &Engine{
		store:   s,
		version: s.Snapshot().Version,
	}
}

// View returns the current state without changing it.
func (e *Engine) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.viewLocked(e.syncLocked())
}

// Select records the answer for the current question and reveals feedback.
func (e *Engine) Select(option int) (View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := e.syncLocked()
	q, ok := currentQuestion(snap)
	switch {
	case !ok:
		return e.viewLocked(snap), ErrNoQuestions
	case e.completed:
		return e.viewLocked(snap), ErrQuizComplete
	case option < 0 || option >= len(q.Options):
		return e.viewLocked(snap), ErrInvalidOption
	case e.selected != nil:
		return e.viewLocked(snap), ErrAnswerLocked
	}

	e.selected = &option
	e.answered++
	if option == q.CorrectAnswer {
		e.score++
	}
	return e.viewLocked(snap), nil
}

// Continue moves to the next question. Continuing past the last question
// completes the quiz.
func (e *Engine) Continue() (View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := e.syncLocked()
	if _, ok := currentQuestion(snap); !ok {
		return e.viewLocked(snap), ErrNoQuestions
	}
	if e.completed {
		return e.viewLocked(snap), ErrQuizComplete
	}
	if e.selected == nil {
		return e.viewLocked(snap), ErrNotAnswered
	}

	_, wrapped, ok := e.store.NextQuestionIf(e.version)
	if !ok {
		// The current set was replaced since the answer; start over on it.
		return e.viewLocked(e.syncLocked()), ErrNotAnswered
	}
	e.selected = nil
	if wrapped {
		e.completed = true
	}
	return e.viewLocked(e.store.Snapshot()), nil
}

// Restart clears the score and goes back to the first question.
func (e *Engine) Restart() View {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.syncLocked()
	e.store.ResetIndex()
	e.resetLocked()
	return e.viewLocked(e.store.Snapshot())
}

// syncLocked drops interaction state when the current set was replaced.
func (e *Engine) syncLocked() store.Snapshot {
	snap := e.store.Snapshot()
	if snap.Version != e.version {
		e.version = snap.Version
		e.resetLocked()
	}
	return snap
}

func (e *Engine) resetLocked() {
	e.selected = nil
	e.completed = false
	e.score = 0
	e.answered = 0
}

func currentQuestion(snap store.Snapshot) (models.Question, bool) {
	set := snap.CurrentSet
	if set == nil || len(set.Questions) == 0 {
		return models.Question{}, false
	}
	if snap.CurrentQuestion < 0 || snap.CurrentQuestion >= len(set.Questions) {
		return models.Question{}, false
	}
	return set.Questions[snap.CurrentQuestion], true
}

func (e *Engine) viewLocked(snap store.Snapshot) View {
	set := snap.CurrentSet
	if set == nil || len(set.Questions) == 0 {
		return View{State: StateEmpty, Message: MessageEmpty}
	}

	setID := set.ID
	v := View{
		SetID:    &setID,
		SetName:  set.Name,
		Index:    snap.CurrentQuestion,
		Position: snap.CurrentQuestion + 1,
		Total:    len(set.Questions),
		Score:    e.score,
		Answered: e.answered,
	}

	if e.completed {
		v.State = StateComplete
		v.Message = MessageComplete
		return v
	}

	q, _ := currentQuestion(snap)
	v.State = StateQuestion
	questionID := q.ID
	v.QuestionID = &questionID
	v.Question = q.Question
	v.Options = append([]string(nil), q.Options...)

	if e.selected != nil {
		selected := *e.selected
		correctAnswer := q.CorrectAnswer
		correct := selected == correctAnswer
		v.Selected = &selected
		v.Revealed = true
		v.Correct = &correct
		v.CorrectAnswer = &correctAnswer
		v.CorrectOption = q.CorrectOption()
		if correct {
			v.Feedback = FeedbackCorrect
		} else {
			v.Feedback = FeedbackWrong
		}
	}
	return v
}
