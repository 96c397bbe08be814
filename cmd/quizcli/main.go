package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"studyquiz/internal/config"
	"studyquiz/internal/services"
	"studyquiz/internal/ui/quizui"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("quizcli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	check := fs.Bool("check", false, "check the language model connection and exit")
	noColor := fs.Bool("no-color", false, "disable colored output")
	logFile := fs.String("log", "", "write logs to this file while the interactive quiz runs")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: quizcli [flags] <lecture-file>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	log.SetOutput(stderr)
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "✗ Invalid configuration: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	completer, err := services.NewCompleter(ctx, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "✗ Language model client initialization failed: %v\n", err)
		return 1
	}
	defer completer.Close()

	if *check {
		if err := services.CheckConnection(ctx, completer.Probe()); err != nil {
			fmt.Fprintf(stderr, "✗ %s: %v\n", completer.Name(), err)
			return 1
		}
		fmt.Fprintf(stdout, "✓ %s is reachable\n", completer.Name())
		return 0
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	path := fs.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "✗ Failed to read %s: %v\n", path, err)
		return 1
	}

	fileName := filepath.Base(path)
	generator := services.NewQuestionGenerator(completer, services.GeneratorOptionsFromConfig(cfg))
	study := services.NewStudyService(services.NewFileExtractService(), generator, false)

	if !quizui.IsTerminal(stdout) {
		return printPlain(ctx, study, fileName, data, stdout, stderr)
	}

	// The alternate screen owns the terminal, so logs go to a file or nowhere.
	if *logFile != "" {
		f, err := tea.LogToFile(*logFile, "quizcli")
		if err != nil {
			fmt.Fprintf(stderr, "✗ Failed to open log file: %v\n", err)
			return 1
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	if err := quizui.Run(ctx, study, fileName, data, stdout, quizui.Options{NoColor: *noColor}); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintf(stderr, "✗ %v\n", err)
		return 1
	}
	return 0
}

func printPlain(ctx context.Context, study quizui.Generator, fileName string, data []byte, stdout, stderr io.Writer) int {
	set, err := study.Generate(ctx, fileName, data, func(p services.Progress) {
		fmt.Fprintf(stderr, "Generating question batch %d/%d (%d%%)\n", p.Batch, p.TotalBatches, p.Percent)
	})
	if err != nil {
		fmt.Fprintf(stderr, "✗ %s\n", services.UserMessage(err))
		log.Printf("Generation failed: %v", err)
		return 1
	}

	if err := quizui.PrintQuestions(stdout, set); err != nil {
		fmt.Fprintf(stderr, "✗ Failed to write questions: %v\n", err)
		return 1
	}
	return 0
}
