package quizui

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"studyquiz/internal/models"
	"studyquiz/internal/services"
)

// Generator builds a question set from one document.
type Generator interface {
	Generate(ctx context.Context, filename string, data []byte, onProgress services.ProgressFunc) (*models.QuestionSet, error)
}

// Run generates questions in the background and drives the interactive quiz
// until the user quits.
func Run(ctx context.Context, gen Generator, fileName string, data []byte, stdout io.Writer, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan tea.Msg, 16)
	go func() {
		defer close(events)
		set, err := gen.Generate(ctx, fileName, data, func(p services.Progress) {
			select {
			case events <- ProgressMsg{Progress: p}:
			case <-ctx.Done():
			}
		})
		select {
		case events <- ResultMsg{Set: set, Err: err}:
		case <-ctx.Done():
		}
	}()

	program := tea.NewProgram(NewModel(fileName, events, opts), tea.WithOutput(stdout), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

// PrintQuestions writes the set in its plain text form, for output that is
// not a terminal.
func PrintQuestions(w io.Writer, set *models.QuestionSet) error {
	_, err := fmt.Fprint(w, services.FormatMCQs(set.Questions))
	return err
}

// IsTerminal reports whether a writer is a TTY.
func IsTerminal(w io.Writer) bool {
	if w == nil {
		return false
	}
	if file, ok := w.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	if fder, ok := w.(interface{ Fd() uintptr }); ok {
		return term.IsTerminal(int(fder.Fd()))
	}
	return false
}
