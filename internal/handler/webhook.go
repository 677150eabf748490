package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/clearview-home/sms-concierge/internal/middleware"
	"github.com/clearview-home/sms-concierge/internal/model"
	"github.com/clearview-home/sms-concierge/internal/service"
	"github.com/clearview-home/sms-concierge/pkg/logger"
)

// WebhookHandler handles inbound SMS callbacks from the carrier.
type WebhookHandler struct {
	service *service.ConversationService
	logger  *logger.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(svc *service.ConversationService, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: svc,
		logger:  log,
	}
}

// Inbound handles POST /api/sms/webhook. The carrier is always
// acknowledged with an empty TwiML document: returning an error status
// would make it retry into whatever is already failing.
func (h *WebhookHandler) Inbound(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		h.logger.Warn("malformed webhook form", zap.Error(err))
		writeTwiML(w, http.StatusOK)
		return
	}

	from := r.PostFormValue("From")
	body := r.PostFormValue("Body")

	if err := middleware.ValidatePhone(from); err != nil {
		h.logger.Warn("webhook with invalid From number",
			zap.String("from", from),
			zap.Error(err),
		)
		writeTwiML(w, http.StatusOK)
		return
	}
	if err := middleware.ValidateMessageBody(body); err != nil {
		h.logger.Warn("webhook with invalid body",
			zap.String("from", from),
			zap.Error(err),
		)
		writeTwiML(w, http.StatusOK)
		return
	}

	result := h.service.HandleInbound(ctx, from, body)
	if result.Status == model.DispatchFailed {
		h.logger.Error("inbound exchange failed, acknowledging anyway",
			zap.String("from", from),
			zap.Error(result.Err),
		)
	}

	writeTwiML(w, http.StatusOK)
}
