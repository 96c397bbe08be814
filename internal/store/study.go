package store

import (
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"studyquiz/internal/models"
)

// StudyStore holds the question sets of one session, the current set and the
// current question index. It starts empty and is never persisted.
type StudyStore struct {
	mu              sync.RWMutex
	questionSets    []*models.QuestionSet
	currentSet      *models.QuestionSet
	currentQuestion int
	version         uint64
}

func NewStudyStore() *StudyStore {
	return &StudyStore{}
}

// Snapshot is a read-only copy of the store state.
type Snapshot struct {
	QuestionSets    []*models.QuestionSet
	CurrentSet      *models.QuestionSet
	CurrentQuestion int
	// Version changes whenever the current set is replaced.
	Version uint64
}

// AddQuestionSet appends a set and makes it current, starting at its first question.
func (s *StudyStore) AddQuestionSet(set *models.QuestionSet) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.questionSets = append(s.questionSets, set)
	s.currentSet = set
	s.currentQuestion = 0
	s.version++
}

// HasSet reports whether a set with the given id was added.
func (s *StudyStore) HasSet(id uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return lo.ContainsBy(s.questionSets, func(qs *models.QuestionSet) bool {
		return qs.ID == id
	})
}

// SetCurrentSet selects a set by id. An unknown id clears the current set.
func (s *StudyStore) SetCurrentSet(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, found := lo.Find(s.questionSets, func(qs *models.QuestionSet) bool {
		return qs.ID == id
	})
	if found {
		s.currentSet = set
	} else {
		s.currentSet = nil
	}
	s.currentQuestion = 0
	s.version++
	return found
}

// NextQuestion advances the index modulo the current set length and reports
// whether it wrapped back to the first question.
func (s *StudyStore) NextQuestion() (index int, wrapped bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.nextLocked()
}

// NextQuestionIf advances like NextQuestion, but only while the store is still
// at the given version. It reports ok=false and changes nothing otherwise.
func (s *StudyStore) NextQuestionIf(version uint64) (index int, wrapped, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.version != version {
		return s.currentQuestion, false, false
	}
	index, wrapped = s.nextLocked()
	return index, wrapped, true
}

func (s *StudyStore) nextLocked() (index int, wrapped bool) {
	if s.currentSet == nil || len(s.currentSet.Questions) == 0 {
		s.currentQuestion = 0
		return 0, false
	}

	next := s.currentQuestion + 1
	if next >= len(s.currentSet.Questions) {
		next = 0
		wrapped = true
	}
	s.currentQuestion = next
	return next, wrapped
}

// ResetIndex moves back to the first question of the current set.
func (s *StudyStore) ResetIndex() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentQuestion = 0
}

func (s *StudyStore) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sets := make([]*models.QuestionSet, len(s.questionSets))
	copy(sets, s.questionSets)
	return Snapshot{
		QuestionSets:    sets,
		CurrentSet:      s.currentSet,
		CurrentQuestion: s.currentQuestion,
		Version:         s.version,
	}
}
