package quizui

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"studyquiz/internal/models"
	"studyquiz/internal/quiz"
	"studyquiz/internal/services"
	"studyquiz/internal/store"
)

type phase int

const (
	phaseGenerating phase = iota
	phaseQuiz
	phaseFailed
)

// Model is the terminal front end: a progress screen while questions are
// generated, then the quiz.
type Model struct {
	phase    phase
	fileName string
	progress services.Progress
	bar      progress.Model
	failure  string
	notice   string

	store  *store.StudyStore
	engine *quiz.Engine
	view   quiz.View

	events  <-chan tea.Msg
	keys    keyMap
	width   int
	noColor bool
}

// Options configures the terminal model.
type Options struct {
	NoColor bool
}

// NewModel constructs a model that listens for generation events.
func NewModel(fileName string, events <-chan tea.Msg, opts Options) Model {
	st := store.NewStudyStore()
	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	return Model{
		phase:    phaseGenerating,
		fileName: fileName,
		bar:      bar,
		store:    st,
		engine:   quiz.NewEngine(st),
		events:   events,
		keys:     defaultKeyMap(),
		noColor:  opts.NoColor,
	}
}

// ProgressMsg reports the batch about to be generated.
type ProgressMsg struct {
	Progress services.Progress
}

// ResultMsg ends generation with a question set or an error.
type ResultMsg struct {
	Set *models.QuestionSet
	Err error
}

func (m Model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.bar.Width = max(min(typed.Width-4, 60), 10)
		return m, nil
	case ProgressMsg:
		m.progress = typed.Progress
		return m, waitForEvent(m.events)
	case ResultMsg:
		return m.applyResult(typed), nil
	case tea.KeyMsg:
		return m.handleKey(typed)
	}
	return m, nil
}

func (m Model) applyResult(msg ResultMsg) Model {
	if msg.Err != nil {
		m.phase = phaseFailed
		m.failure = services.UserMessage(msg.Err)
		return m
	}
	m.store.AddQuestionSet(msg.Set)
	m.phase = phaseQuiz
	m.view = m.engine.View()
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if m.phase != phaseQuiz {
		return m, nil
	}

	m.notice = ""
	option := m.keys.optionFor(msg)
	switch {
	case option >= 0:
		view, err := m.engine.Select(option)
		m.view = view
		if errors.Is(err, quiz.ErrInvalidOption) {
			m.notice = "That option does not exist for this question."
		}
	case key.Matches(msg, m.keys.Continue):
		view, err := m.engine.Continue()
		m.view = view
		if errors.Is(err, quiz.ErrNotAnswered) {
			m.notice = "Pick an answer first."
		}
	case key.Matches(msg, m.keys.Restart):
		m.view = m.engine.Restart()
	}
	return m, nil
}

// View renders the current screen.
func (m Model) View() string {
	switch m.phase {
	case phaseFailed:
		return renderFailure(m)
	case phaseQuiz:
		return renderQuiz(m)
	default:
		return renderGenerating(m)
	}
}

// waitForEvent blocks until a generation event is available.
func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		if events == nil {
			return nil
		}
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}

func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}
