package quizui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"studyquiz/internal/quiz"
)

var optionLetters = []string{"A", "B", "C", "D"}

const (
	colorTitle   = lipgloss.Color("33")
	colorMuted   = lipgloss.Color("242")
	colorCorrect = lipgloss.Color("42")
	colorWrong   = lipgloss.Color("196")
	colorNotice  = lipgloss.Color("214")
)

func renderGenerating(m Model) string {
	title := stylize("Generating questions from "+m.fileName, m.noColor, colorTitle)

	status := "Extracting text..."
	if m.progress.TotalBatches > 0 {
		status = fmt.Sprintf("Generating question batch %d/%d (%d%%)",
			m.progress.Batch, m.progress.TotalBatches, m.progress.Percent)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		m.bar.ViewAs(float64(m.progress.Percent)/100),
		stylize(status, m.noColor, colorMuted),
		"",
		stylize("q quit", m.noColor, colorMuted),
	)
}

func renderFailure(m Model) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		stylize("Could not generate questions", m.noColor, colorWrong),
		"",
		m.failure,
		"",
		stylize("q quit", m.noColor, colorMuted),
	)
}

func renderQuiz(m Model) string {
	v := m.view
	switch v.State {
	case quiz.StateEmpty:
		return lipgloss.JoinVertical(lipgloss.Left, v.Message, "", stylize("q quit", m.noColor, colorMuted))
	case quiz.StateComplete:
		score := fmt.Sprintf("Score: %d/%d", v.Score, v.Answered)
		return lipgloss.JoinVertical(lipgloss.Left,
			stylize(v.Message, m.noColor, colorTitle),
			score,
			"",
			stylize("r restart • q quit", m.noColor, colorMuted),
		)
	}

	lines := []string{
		stylize(fmt.Sprintf("%s • Question %d of %d", v.SetName, v.Position, v.Total), m.noColor, colorMuted),
		"",
		v.Question,
		"",
	}
	for i, opt := range v.Options {
		lines = append(lines, renderOption(m, i, opt))
	}
	lines = append(lines, "")

	if v.Revealed {
		if v.Correct != nil && *v.Correct {
			lines = append(lines, stylize(v.Feedback, m.noColor, colorCorrect))
		} else {
			lines = append(lines, stylize(fmt.Sprintf("%s The correct answer is %s.", v.Feedback, v.CorrectOption), m.noColor, colorWrong))
		}
		lines = append(lines, "")
	}
	if m.notice != "" {
		lines = append(lines, stylize(m.notice, m.noColor, colorNotice), "")
	}

	help := "a-d choose • q quit"
	if v.Revealed {
		help = "enter continue • r restart • q quit"
	}
	lines = append(lines,
		stylize(fmt.Sprintf("Score: %d/%d", v.Score, v.Answered), m.noColor, colorMuted),
		stylize(help, m.noColor, colorMuted),
	)
	return strings.Join(lines, "\n")
}

func renderOption(m Model, i int, text string) string {
	line := fmt.Sprintf("  %s) %s", optionLetters[i], text)
	v := m.view
	if !v.Revealed || v.Selected == nil || v.CorrectAnswer == nil {
		return line
	}

	switch {
	case i == *v.CorrectAnswer:
		return stylize("> "+line[2:], m.noColor, colorCorrect)
	case i == *v.Selected:
		return stylize("x "+line[2:], m.noColor, colorWrong)
	}
	return stylize(line, m.noColor, colorMuted)
}
