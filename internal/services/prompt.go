package services

import (
	"fmt"
	"strings"
)

// ProbePrompt is the request sent by the connection check.
const ProbePrompt = "Generate one multiple choice question about cats."

func buildMCQPrompt(chunk string, numQuestions int) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Create %d multiple choice questions based on this lecture content:\n\n", numQuestions))
	b.WriteString("\"")
	b.WriteString(chunk)
	b.WriteString("\"\n\n")

	b.WriteString(`Requirements:
- Questions should test understanding of the lecture content
- Make questions suitable for a classroom quiz
- DO NOT create questions about PDF structure or formatting

Format each question exactly like this:
Q1. [Question]
A) [Option]
B) [Option]
C) [Option]
D) [Option]
Answer: [A/B/C/D]`)

	return b.String()
}
