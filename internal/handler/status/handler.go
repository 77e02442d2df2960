package status

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/springlegal/website/backend/pkg/utils"
)

// Handler answers the API existence checks. Neither route has side effects.
type Handler struct {
	siteName string
	version  string
}

func New(siteName, version string) *Handler {
	return &Handler{siteName: siteName, version: version}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Get("/health", h.handleHealth)
}

func (h *Handler) handleIndex(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"message": h.siteName + " API",
		"version": h.version,
		"status":  "running",
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
