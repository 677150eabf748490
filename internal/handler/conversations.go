package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clearview-home/sms-concierge/internal/middleware"
	"github.com/clearview-home/sms-concierge/internal/service"
	"github.com/clearview-home/sms-concierge/pkg/logger"
)

// ConversationHandler handles the read-only inspection endpoints.
type ConversationHandler struct {
	service *service.ConversationService
	logger  *logger.Logger
}

// NewConversationHandler creates a new conversation handler.
func NewConversationHandler(svc *service.ConversationService, log *logger.Logger) *ConversationHandler {
	return &ConversationHandler{
		service: svc,
		logger:  log,
	}
}

// Get handles GET /api/conversations/{phone}
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")

	if err := middleware.ValidatePhone(phone); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conv, ok := h.service.Get(phone)
	if !ok {
		writeError(w, http.StatusNotFound, "Conversation not found")
		return
	}

	writeJSON(w, http.StatusOK, conv)
}

// List handles GET /api/conversations
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.List())
}
