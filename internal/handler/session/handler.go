package session

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	sessionService "github.com/magonotec/magonotec-api/internal/service/session"
	"github.com/magonotec/magonotec-api/pkg/utils"
)

// Handler exposes the conversation lifecycle to the widget UI.
type Handler struct {
	ctrl *sessionService.Controller
}

// New creates the session handler.
func New(ctrl *sessionService.Controller) *Handler {
	return &Handler{ctrl: ctrl}
}

// RegisterRoutes wires the session endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/session", func(r chi.Router) {
		r.Get("/messages", h.handleListMessages)
		r.Post("/messages", h.handleSendMessage)
		r.Post("/clear", h.handleClear)
		r.Post("/image", h.handleAttachImage)
		r.Delete("/image", h.handleRemoveImage)
		r.Post("/enter", h.handleViewEnter)
		r.Post("/leave", h.handleViewLeave)
	})
}

func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"messages": h.ctrl.Messages(),
	})
}

func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, reply, failed, err := h.ctrl.OnUserSend(r.Context(), payload.Text)
	switch {
	case errors.Is(err, sessionService.ErrEmptyMessage):
		utils.RespondError(w, http.StatusBadRequest, "message is empty")
		return
	case errors.Is(err, sessionService.ErrReplyInFlight):
		utils.RespondError(w, http.StatusConflict, "a reply is still on its way")
		return
	case err != nil:
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"message":     user,
		"reply":       reply,
		"replyFailed": failed,
	})
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	h.ctrl.OnHistoryCleared()
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"messages": h.ctrl.Messages(),
	})
}

func (h *Handler) handleAttachImage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Image string `json:"image"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Image == "" {
		utils.RespondError(w, http.StatusBadRequest, "image is required")
		return
	}

	h.ctrl.AttachImage(payload.Image)
	utils.RespondJSON(w, http.StatusAccepted, map[string]string{"status": "staged"})
}

func (h *Handler) handleRemoveImage(w http.ResponseWriter, r *http.Request) {
	h.ctrl.RemoveImage()
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (h *Handler) handleViewEnter(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.OnViewEnter(); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to start greeting checks")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "active"})
}

func (h *Handler) handleViewLeave(w http.ResponseWriter, r *http.Request) {
	h.ctrl.OnViewLeave()
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "idle"})
}
