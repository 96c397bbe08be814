package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studyquiz/internal/config"
	"studyquiz/internal/handlers"
	"studyquiz/internal/middleware"
	"studyquiz/internal/router"
	"studyquiz/internal/services"
	"studyquiz/internal/session"
	"studyquiz/internal/websocket"
	"studyquiz/internal/worker"
)

// Tokens outlive idle sessions; the registry decides when a session ends.
const sessionTokenTTL = 24 * time.Hour

func main() {
	log.Println("🚀 Starting StudyQuiz server...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("✗ Invalid configuration: %v", err)
	}
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize Language Model Client ────
	completer, err := services.NewCompleter(context.Background(), cfg)
	if err != nil {
		log.Fatalf("✗ Language model client initialization failed: %v", err)
	}
	defer completer.Close()
	log.Printf("✓ Language model client initialized (%s)", completer.Name())

	// ──── Initialize Services ────
	fileExtractService := services.NewFileExtractService()
	generator := services.NewQuestionGenerator(completer, services.GeneratorOptionsFromConfig(cfg))
	studyService := services.NewStudyService(fileExtractService, generator, cfg.Env == "development")

	// ──── Step 3: Initialize Sessions ────
	sessions := session.NewRegistry(cfg.SessionIdleTTL)
	sessions.StartSweeper(time.Minute)
	sessionAuth := middleware.NewSessionAuth(cfg.SessionSecret, sessionTokenTTL, sessions)
	log.Println("✓ Session registry started")

	// ──── Step 4: Start WebSocket Hub ────
	wsHub := websocket.NewHub(sessionAuth)
	log.Println("✓ WebSocket hub started")

	// ──── Step 5: Start Job Worker Pool ────
	workerPool := worker.NewPool(studyService, wsHub, cfg.WorkerCount, cfg.WorkerCount*4)
	workerPool.Start()
	log.Printf("✓ Worker pool started (%d goroutines)", cfg.WorkerCount)

	// ──── Initialize Handlers ────
	sessionHandler := handlers.NewSessionHandler(sessions, sessionAuth)
	contentHandler := handlers.NewContentHandler(workerPool, cfg.MaxUploadBytes)
	quizHandler := handlers.NewQuizHandler()
	systemHandler := handlers.NewSystemHandler(completer)

	// ──── Step 6: Start HTTP Server ────
	r := router.New(
		sessionAuth,
		sessionHandler,
		contentHandler,
		quizHandler,
		systemHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		workerPool.Stop()
		sessions.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ StudyQuiz ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
