package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"studyquiz/internal/services"
)

const connectionCheckTimeout = 30 * time.Second

type SystemHandler struct {
	completer services.ProbingCompleter
}

func NewSystemHandler(completer services.ProbingCompleter) *SystemHandler {
	return &SystemHandler{completer: completer}
}

func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CheckLLM sends a short probe prompt to the configured model.
func (h *SystemHandler) CheckLLM(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), connectionCheckTimeout)
	defer cancel()

	probe := h.completer.Probe()
	if err := services.CheckConnection(ctx, probe); err != nil {
		log.Printf("Language model check failed: %v", err)
		if services.IsRateLimited(err) {
			writeJSON(w, http.StatusTooManyRequests, errorResp(services.CodeRateLimited, services.MessageRateLimited, r))
			return
		}
		writeJSON(w, http.StatusBadGateway, errorResp("LLM_UNAVAILABLE", "Could not reach the language model", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"provider": probe.Name(),
	})
}
