package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"

	"studyquiz/internal/models"
	"studyquiz/internal/store"
)

// newQuizSet builds n questions whose correct answer is option i%4.
func newQuizSet(name string, n int) *models.QuestionSet {
	qs := make([]models.Question, n)
	for i := range qs {
		qs[i] = models.Question{
			ID:            uuid.New(),
			Question:      fmt.Sprintf("%s question %d", name, i+1),
			Options:       []string{"alpha", "beta", "gamma", "delta"},
			CorrectAnswer: i % models.OptionCount,
		}
	}
	return models.NewQuestionSet(name, qs)
}

func newEngineWithSet(n int) (*Engine, *store.StudyStore) {
	st := store.NewStudyStore()
	st.AddQuestionSet(newQuizSet("bio", n))
	return NewEngine(st), st
}

func TestEngine_EmptyStore(t *testing.T) {
	e := NewEngine(store.NewStudyStore())

	v := e.View()
	if v.State != StateEmpty || v.Message != MessageEmpty {
		t.Fatalf("expected empty view, got %+v", v)
	}
	if _, err := e.Select(0); !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
	if _, err := e.Continue(); !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "set_id") || strings.Contains(string(data), "question_id") {
		t.Fatalf("expected no ids in an empty view, got %s", data)
	}
}

func TestEngine_FirstQuestionUnrevealed(t *testing.T) {
	e, _ := newEngineWithSet(3)

	v := e.View()
	if v.State != StateQuestion {
		t.Fatalf("expected question state, got %s", v.State)
	}
	if v.Position != 1 || v.Total != 3 || v.Question != "bio question 1" {
		t.Fatalf("unexpected view %+v", v)
	}
	if v.Revealed || v.Selected != nil || v.CorrectAnswer != nil {
		t.Fatalf("expected answer to stay hidden before selection")
	}
}

func TestEngine_SelectRevealsFeedback(t *testing.T) {
	tests := []struct {
		name     string
		option   int
		correct  bool
		feedback string
		score    int
	}{
		{"correct", 0, true, FeedbackCorrect, 1},
		{"wrong", 2, false, FeedbackWrong, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e, _ := newEngineWithSet(3)

			v, err := e.Select(tc.option)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !v.Revealed || v.Selected == nil || *v.Selected != tc.option {
				t.Fatalf("expected selection to be revealed, got %+v", v)
			}
			if v.Correct == nil || *v.Correct != tc.correct {
				t.Fatalf("expected correct=%v", tc.correct)
			}
			if v.Feedback != tc.feedback {
				t.Errorf("expected feedback %q, got %q", tc.feedback, v.Feedback)
			}
			if v.CorrectAnswer == nil || *v.CorrectAnswer != 0 || v.CorrectOption != "alpha" {
				t.Errorf("expected correct answer alpha, got %+v", v)
			}
			if v.Score != tc.score || v.Answered != 1 {
				t.Errorf("expected score %d/1, got %d/%d", tc.score, v.Score, v.Answered)
			}
		})
	}
}

func TestEngine_SelectionLocksUntilContinue(t *testing.T) {
	e, _ := newEngineWithSet(3)

	if _, err := e.Select(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := e.Select(0)
	if !errors.Is(err, ErrAnswerLocked) {
		t.Fatalf("expected ErrAnswerLocked, got %v", err)
	}
	if *v.Selected != 1 || v.Answered != 1 {
		t.Fatalf("expected the first selection to stand, got %+v", v)
	}

	v, err = e.Continue()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Position != 2 || v.Revealed {
		t.Fatalf("expected fresh second question, got %+v", v)
	}
	if _, err := e.Select(1); err != nil {
		t.Fatalf("expected selection to unlock on the next question, got %v", err)
	}
}

func TestEngine_InvalidOption(t *testing.T) {
	e, _ := newEngineWithSet(1)

	for _, opt := range []int{-1, 4, 10} {
		if _, err := e.Select(opt); !errors.Is(err, ErrInvalidOption) {
			t.Errorf("Select(%d): expected ErrInvalidOption, got %v", opt, err)
		}
	}
	if v := e.View(); v.Revealed || v.Answered != 0 {
		t.Fatalf("expected invalid options to leave state untouched, got %+v", v)
	}
}

func TestEngine_ContinueRequiresAnswer(t *testing.T) {
	e, _ := newEngineWithSet(2)

	if _, err := e.Continue(); !errors.Is(err, ErrNotAnswered) {
		t.Fatalf("expected ErrNotAnswered, got %v", err)
	}
	if v := e.View(); v.Position != 1 {
		t.Fatalf("expected to stay on question 1, got %d", v.Position)
	}
}

func TestEngine_CompletesAfterLastQuestion(t *testing.T) {
	e, st := newEngineWithSet(2)

	e.Select(0)
	e.Continue()
	e.Select(1)
	v, err := e.Continue()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.State != StateComplete || v.Message != MessageComplete {
		t.Fatalf("expected completion, got %+v", v)
	}
	if v.Score != 2 || v.Answered != 2 {
		t.Fatalf("expected 2/2, got %d/%d", v.Score, v.Answered)
	}
	if st.Snapshot().CurrentQuestion != 0 {
		t.Fatalf("expected the store index to wrap to 0")
	}

	if _, err := e.Select(0); !errors.Is(err, ErrQuizComplete) {
		t.Fatalf("expected ErrQuizComplete, got %v", err)
	}
	if _, err := e.Continue(); !errors.Is(err, ErrQuizComplete) {
		t.Fatalf("expected ErrQuizComplete, got %v", err)
	}
}

func TestEngine_Restart(t *testing.T) {
	e, _ := newEngineWithSet(2)
	e.Select(0)
	e.Continue()
	e.Select(3)

	v := e.Restart()
	if v.State != StateQuestion || v.Position != 1 {
		t.Fatalf("expected first question after restart, got %+v", v)
	}
	if v.Score != 0 || v.Answered != 0 || v.Revealed {
		t.Fatalf("expected clean state after restart, got %+v", v)
	}
}

func TestEngine_ResetsWhenSetChanges(t *testing.T) {
	e, st := newEngineWithSet(3)
	e.Select(0)

	other := newQuizSet("chem", 2)
	st.AddQuestionSet(other)

	v := e.View()
	if v.SetID == nil || *v.SetID != other.ID || v.Total != 2 {
		t.Fatalf("expected the new set, got %+v", v)
	}
	if v.Revealed || v.Answered != 0 {
		t.Fatalf("expected interaction state to reset, got %+v", v)
	}

	st.SetCurrentSet(uuid.New())
	if v := e.View(); v.State != StateEmpty {
		t.Fatalf("expected empty view after unknown selection, got %s", v.State)
	}
}
