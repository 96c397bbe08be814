package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"studyquiz/internal/models"
)

var (
	questionMarker = regexp.MustCompile(`Q\d+\.`)
	optionPrefix   = regexp.MustCompile(`^[A-D]\)`)
)

// ParseMCQs reads the model's free-text reply into questions. Blocks without a
// question line, exactly four options and an A-D answer are dropped.
func ParseMCQs(text string) []models.Question {
	questions, _ := parseMCQs(text)
	return questions
}

// parseMCQs also reports how many question blocks were dropped. Text before
// the first marker is not a block.
func parseMCQs(text string) ([]models.Question, int) {
	parts := questionMarker.Split(text, -1)[1:]
	blocks := lo.Filter(parts, func(block string, _ int) bool {
		return strings.TrimSpace(block) != ""
	})

	questions := make([]models.Question, 0, len(blocks))
	dropped := 0
	for _, block := range blocks {
		q, ok := parseBlock(block)
		if !ok {
			dropped++
			continue
		}
		questions = append(questions, q)
	}
	return questions, dropped
}

func parseBlock(block string) (models.Question, bool) {
	lines := strings.Split(strings.TrimSpace(block), "\n")
	question := cleanLine(lines[0])

	var options []string
	correct := -1
	for _, line := range lines {
		trimmed := cleanLine(line)
		switch {
		case optionPrefix.MatchString(trimmed):
			options = append(options, strings.TrimSpace(trimmed[2:]))
		case strings.HasPrefix(trimmed, "Answer:"):
			correct = answerIndex(strings.TrimPrefix(trimmed, "Answer:"))
		}
	}

	q := models.Question{
		ID:            uuid.New(),
		Question:      question,
		Options:       options,
		CorrectAnswer: correct,
	}
	if q.Validate() != nil {
		return models.Question{}, false
	}
	return q, true
}

// answerIndex maps the first letter after "Answer:" to 0-3, or -1.
func answerIndex(s string) int {
	s = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(s), "*"))
	if s == "" {
		return -1
	}
	switch c := s[0]; c {
	case 'A', 'B', 'C', 'D':
		return int(c - 'A')
	default:
		return -1
	}
}

// cleanLine trims whitespace and markdown bold markers around a line.
func cleanLine(line string) string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "**")
	line = strings.TrimSuffix(line, "**")
	line = strings.ReplaceAll(line, "Answer:**", "Answer:")
	return strings.TrimSpace(line)
}

// FormatMCQs renders questions back into the text format the parser reads.
func FormatMCQs(questions []models.Question) string {
	var b strings.Builder
	for i, q := range questions {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Q%d. %s\n", i+1, q.Question)
		for j, opt := range q.Options {
			fmt.Fprintf(&b, "%c) %s\n", 'A'+j, opt)
		}
		fmt.Fprintf(&b, "Answer: %c\n", 'A'+q.CorrectAnswer)
	}
	return b.String()
}
