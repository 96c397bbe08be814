package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"testing"
)

const lectureText = "The mitochondria is the powerhouse of the cell. It produces ATP through cellular respiration."

const oneQuestion = "Q1. What does the mitochondria produce?\nA) DNA\nB) ATP\nC) RNA\nD) Glucose\nAnswer: B"

func newTestStudyService(c Completer, batches int) *StudyService {
	opts := testOptions()
	opts.Batches = batches
	gen, _ := newTestGenerator(c, opts)
	return NewStudyService(NewFileExtractService(), gen, false)
}

func TestStudyService_Generate(t *testing.T) {
	completer := &fakeCompleter{replies: []fakeReply{{text: oneQuestion}, {text: oneQuestion}}}
	svc := newTestStudyService(completer, 2)

	set, err := svc.Generate(context.Background(), "bio.txt", []byte(lectureText), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.Name != "bio.txt" {
		t.Errorf("expected set named after the file, got %q", set.Name)
	}
	if len(set.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(set.Questions))
	}
	if set.Questions[0].CorrectOption() != "ATP" {
		t.Errorf("unexpected correct option %q", set.Questions[0].CorrectOption())
	}
}

func TestStudyService_DebugLogsDroppedBlocks(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	completer := &fakeCompleter{replies: []fakeReply{{text: oneQuestion + "\n\nQ2. Broken?\nA) x\nAnswer: A"}}}
	opts := testOptions()
	opts.Batches = 1
	gen, _ := newTestGenerator(completer, opts)
	svc := NewStudyService(NewFileExtractService(), gen, true)

	set, err := svc.Generate(context.Background(), "bio.txt", []byte(lectureText), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(set.Questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(set.Questions))
	}
	if !strings.Contains(buf.String(), "dropped 1 malformed question blocks") {
		t.Fatalf("expected a dropped block warning, got:\n%s", buf.String())
	}
}

func TestStudyService_GenerateNoValidQuestions(t *testing.T) {
	completer := &fakeCompleter{replies: []fakeReply{{text: "I cannot help with that."}}}
	svc := newTestStudyService(completer, 1)

	_, err := svc.Generate(context.Background(), "bio.txt", []byte(lectureText), nil)
	if !errors.Is(err, ErrNoValidQuestions) {
		t.Fatalf("expected ErrNoValidQuestions, got %v", err)
	}
	if UserMessage(err) != MessageGenerationFailed {
		t.Errorf("unexpected message %q", UserMessage(err))
	}
}

func TestStudyService_GenerateExtractionError(t *testing.T) {
	completer := &fakeCompleter{}
	svc := newTestStudyService(completer, 1)

	_, err := svc.Generate(context.Background(), "bio.doc", []byte("legacy"), nil)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if completer.calls() != 0 {
		t.Fatalf("expected no completions for a rejected file")
	}
}

func TestErrorCodeAndMessage(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    string
		message string
	}{
		{"rate limited", fmt.Errorf("batch 2/5: %w", rateLimited("gemini", errors.New("quota"))), CodeRateLimited, MessageRateLimited},
		{"insufficient", ErrInsufficientContent, CodeInsufficientContent, MessageGenerationFailed},
		{"unsupported", fmt.Errorf("%w: .doc", ErrUnsupportedFormat), CodeUnsupportedFormat, MessageGenerationFailed},
		{"empty file", ErrEmptyFile, CodeEmptyFile, MessageGenerationFailed},
		{"extraction", ErrExtractionFailed, CodeExtractionFailed, MessageGenerationFailed},
		{"nothing generated", ErrNoQuestionsGenerated, CodeNoQuestions, MessageGenerationFailed},
		{"nothing parsed", ErrNoValidQuestions, CodeNoQuestions, MessageGenerationFailed},
		{"other", errors.New("boom"), CodeGenerationFailed, MessageGenerationFailed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ErrorCode(tc.err); got != tc.code {
				t.Errorf("ErrorCode = %q, want %q", got, tc.code)
			}
			if got := UserMessage(tc.err); got != tc.message {
				t.Errorf("UserMessage = %q, want %q", got, tc.message)
			}
		})
	}
}

func TestCheckConnection(t *testing.T) {
	ok := &fakeCompleter{replies: []fakeReply{{text: "Q1. What do cats chase?"}}}
	if err := CheckConnection(context.Background(), ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok.prompts[0] != ProbePrompt {
		t.Errorf("expected the probe prompt, got %q", ok.prompts[0])
	}

	empty := &fakeCompleter{replies: []fakeReply{{text: "  "}}}
	if err := CheckConnection(context.Background(), empty); err == nil {
		t.Fatalf("expected an empty reply to fail the check")
	}

	failing := &fakeCompleter{replies: []fakeReply{{err: errors.New("dial tcp: connection refused")}}}
	err := CheckConnection(context.Background(), failing)
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected the cause to be kept, got %v", err)
	}
}
