package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/clearview-home/sms-concierge/internal/middleware"
	"github.com/clearview-home/sms-concierge/internal/model"
	"github.com/clearview-home/sms-concierge/internal/service"
	"github.com/clearview-home/sms-concierge/pkg/logger"
)

// ContactHandler handles the automation trigger endpoint.
type ContactHandler struct {
	service *service.ConversationService
	logger  *logger.Logger
}

// NewContactHandler creates a new contact handler.
func NewContactHandler(svc *service.ConversationService, log *logger.Logger) *ContactHandler {
	return &ContactHandler{
		service: svc,
		logger:  log,
	}
}

// Initiate handles POST /api/initiate-contact
func (h *ContactHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.InitiateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidatePhone(req.CustomerPhone); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateTriggerContext(req.TriggerContext); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	greeting, err := h.service.InitiateContact(ctx, req.CustomerPhone, req.CustomerName, req.TriggerContext)
	if err != nil {
		h.logger.Error("failed to initiate contact",
			zap.String("phone", req.CustomerPhone),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "failed to initiate contact")
		return
	}

	writeJSON(w, http.StatusOK, model.InitiateContactResponse{
		Success:        true,
		Message:        "Conversation started",
		InitialMessage: greeting,
	})
}
