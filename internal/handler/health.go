package handler

import (
	"net/http"
	"time"

	natsclient "github.com/clearview-home/sms-concierge/internal/nats"
)

// ServiceName identifies this service in health responses.
const ServiceName = "sms-concierge"

// HealthHandler handles health check and index endpoints.
type HealthHandler struct {
	natsClient *natsclient.Client
}

// NewHealthHandler creates a new health handler. natsClient may be nil
// when the audit stream is not configured.
func NewHealthHandler(natsClient *natsclient.Client) *HealthHandler {
	return &HealthHandler{
		natsClient: natsClient,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   ServiceName,
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	// The audit stream is optional; report it only when configured.
	if h.natsClient != nil && !h.natsClient.IsConnected() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "NATS not connected",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// Index handles GET /
func (h *HealthHandler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "ClearView Home Services SMS concierge",
		"endpoints": []string{
			"POST /api/initiate-contact",
			"POST /api/sms/webhook",
			"GET /api/conversations",
			"GET /api/conversations/{phone}",
			"GET /health",
			"GET /ready",
			"GET /metrics",
		},
	})
}
