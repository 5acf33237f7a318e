package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// HealthHandler serves the liveness and readiness probes (§6).
type HealthHandler struct {
	logs   *zap.SugaredLogger
	health Health
}

func NewHealthHandler(logger *zap.SugaredLogger, health Health) *HealthHandler {
	return &HealthHandler{logs: logger, health: health}
}

func (h *HealthHandler) HandleLivez(w http.ResponseWriter, r *http.Request) {
	writeOK(w, h.logs, map[string]string{"status": "alive"})
}

func (h *HealthHandler) HandleReadyz(w http.ResponseWriter, r *http.Request) {
	if !h.health.Ready() {
		writeError(w, h.logs, "not-ready", http.StatusServiceUnavailable, "dependencies not yet healthy")
		return
	}
	writeOK(w, h.logs, map[string]string{"status": "ready"})
}
