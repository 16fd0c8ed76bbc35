// Package api provides the HTTP transport for the call orchestrator.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	contractx "github.com/abcfin/collectcall/agent/contract"
)

// CallService is the orchestrator surface the transport needs.
type CallService interface {
	StartCall(ctx context.Context, customerID string) (sessionID, reply string, err error)
	ContinueCall(ctx context.Context, sessionID, userText string) (string, string, error)
}

type Handler struct {
	calls CallService
}

func NewHandler(calls CallService) *Handler {
	return &Handler{calls: calls}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/chat", h.chat)
	r.Get("/healthz", h.health)
	return r
}

type chatRequest struct {
	SessionID  string `json:"sessionId"`
	CustomerID string `json:"customerId"`
	Message    string `json:"message"`
	NewCall    bool   `json:"newCall"`
}

type chatResponse struct {
	SessionID string `json:"sessionId"`
	Reply     string `json:"reply"`
}

func (h *Handler) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch {
	case req.NewCall:
		sessionID, reply, err := h.calls.StartCall(r.Context(), req.CustomerID)
		if err != nil {
			h.writeCallError(w, err)
			return
		}
		JSON(w, http.StatusOK, chatResponse{SessionID: sessionID, Reply: reply})

	case strings.TrimSpace(req.SessionID) != "" && strings.TrimSpace(req.Message) != "":
		sessionID, reply, err := h.calls.ContinueCall(r.Context(), req.SessionID, req.Message)
		if err != nil {
			h.writeCallError(w, err)
			return
		}
		JSON(w, http.StatusOK, chatResponse{SessionID: sessionID, Reply: reply})

	default:
		Error(w, http.StatusBadRequest, "either newCall must be true or sessionId and message must be provided")
	}
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeCallError maps orchestrator failures to transport responses without
// leaking internals to the chat surface.
func (h *Handler) writeCallError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, contractx.ErrInvalidCustomer):
		Error(w, http.StatusBadRequest, "customerId is required and must be known")
	case errors.Is(err, contractx.ErrUnknownSession):
		Error(w, http.StatusNotFound, "session not found")
	default:
		log.Error().Err(err).Msg("call turn failed")
		Error(w, http.StatusBadGateway, "the call could not be processed, please retry")
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
