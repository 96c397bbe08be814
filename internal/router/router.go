package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"studyquiz/internal/handlers"
	"studyquiz/internal/middleware"
	"studyquiz/internal/websocket"
)

func New(
	sessionAuth *middleware.SessionAuth,
	sessionHandler *handlers.SessionHandler,
	contentHandler *handlers.ContentHandler,
	quizHandler *handlers.QuizHandler,
	systemHandler *handlers.SystemHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Session creation and model checks (per IP)
	sessionLimiter := middleware.NewRateLimiter(30, time.Minute)
	checkLimiter := middleware.NewRateLimiter(5, time.Minute)

	r.Get("/health", systemHandler.Health)

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Public Routes ────
		r.With(sessionLimiter.Middleware).Post("/sessions", sessionHandler.Create)
		r.Get("/content/supported-formats", contentHandler.SupportedFormats)
		r.With(checkLimiter.Middleware).Post("/llm/check", systemHandler.CheckLLM)

		// WebSocket authenticates through ?token=
		r.Get("/ws", wsHub.HandleWebSocket)

		// ──── Session Routes ────
		r.Group(func(r chi.Router) {
			r.Use(sessionAuth.Middleware)

			r.Post("/content/upload", contentHandler.Upload)
			r.Get("/jobs/{id}", contentHandler.GetJob)

			r.Get("/sets", quizHandler.ListSets)
			r.Put("/sets/{id}/current", quizHandler.SelectSet)

			r.Route("/quiz", func(r chi.Router) {
				r.Get("/", quizHandler.Current)
				r.Post("/answer", quizHandler.Answer)
				r.Post("/continue", quizHandler.Continue)
				r.Post("/restart", quizHandler.Restart)
			})
		})
	})

	return r
}
