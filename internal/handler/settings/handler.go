package settings

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	settingsModel "github.com/magonotec/magonotec-api/internal/model/settings"
	sessionService "github.com/magonotec/magonotec-api/internal/service/session"
	"github.com/magonotec/magonotec-api/pkg/utils"
)

// Handler exposes the "かんたん設定" preferences.
type Handler struct {
	ctrl *sessionService.Controller
}

// New creates the settings handler.
func New(ctrl *sessionService.Controller) *Handler {
	return &Handler{ctrl: ctrl}
}

// RegisterRoutes wires the settings endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/settings", h.handleGet)
	r.Put("/settings", h.handlePut)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.ctrl.Settings())
}

func (h *Handler) handlePut(w http.ResponseWriter, r *http.Request) {
	var payload settingsModel.Settings
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	applied := h.ctrl.OnSettingsChanged(payload)
	utils.RespondJSON(w, http.StatusOK, applied)
}
