package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/newsmate/internal/model/chat"
	chatService "github.com/zhouzirui/newsmate/internal/service/chat"
	"github.com/zhouzirui/newsmate/pkg/utils"
)

// Handler serves the chat, history and reset endpoints.
type Handler struct {
	chatSvc *chatService.Service
	logger  zerolog.Logger
}

// New creates the chat handler.
func New(chatSvc *chatService.Service, logger zerolog.Logger) *Handler {
	return &Handler{chatSvc: chatSvc, logger: logger}
}

// RegisterRoutes mounts the HTTP routes and the websocket endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/history/{sessionID}", h.handleHistory)
	r.Post("/reset/{sessionID}", h.handleReset)
	r.Get("/ws", newSocket(h.chatSvc, h.logger).ServeHTTP)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chat.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	answer, err := h.chatSvc.Reply(r.Context(), payload.SessionID, payload.Message)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error().Err(err).Str("session_id", payload.SessionID).Msg("reply failed")
		}
		utils.RespondError(w, status, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, chat.SendResult{Response: answer})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.chatSvc.History(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		utils.RespondError(w, statusFor(err), err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, entries)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := h.chatSvc.Reset(r.Context(), sessionID); err != nil {
		utils.RespondError(w, statusFor(err), err.Error())
		return
	}
	h.logger.Info().Str("session_id", sessionID).Msg("session reset")
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, chatService.ErrSessionRequired), errors.Is(err, chatService.ErrMessageRequired):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}
