package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	eventsHandler "github.com/magonotec/magonotec-api/internal/handler/events"
	sessionHandler "github.com/magonotec/magonotec-api/internal/handler/session"
	settingsHandler "github.com/magonotec/magonotec-api/internal/handler/settings"
	middlewarePkg "github.com/magonotec/magonotec-api/internal/middleware"
	sessionService "github.com/magonotec/magonotec-api/internal/service/session"
	"github.com/magonotec/magonotec-api/pkg/utils"
)

// NewRouter wires HTTP routes to the session core.
func NewRouter(ctrl *sessionService.Controller) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Route("/api", func(api chi.Router) {
		sessionHandler.New(ctrl).RegisterRoutes(api)
		settingsHandler.New(ctrl).RegisterRoutes(api)
		eventsHandler.New(ctrl).RegisterRoutes(api)

		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	})

	return r
}
