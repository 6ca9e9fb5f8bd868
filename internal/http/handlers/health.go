package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/hongminglow/storefront/internal/http/respond"
)

// HealthHandler returns uptime and basic status.
type HealthHandler struct {
	startedAt time.Time
}

// NewHealthHandler creates a health endpoint handler.
func NewHealthHandler(startedAt time.Time) *HealthHandler {
	return &HealthHandler{startedAt: startedAt}
}

// Register wires the handler into the router.
func (h *HealthHandler) Register(r *mux.Router) {
	r.HandleFunc("/health", h.handle).Methods(http.MethodGet)
}

func (h *HealthHandler) handle(w http.ResponseWriter, r *http.Request) {
	respond.Raw(w, http.StatusOK, map[string]string{
		"status": "ok",
		"uptime": time.Since(h.startedAt).Truncate(time.Second).String(),
	})
}
