package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/clearview-home/sms-concierge/internal/model"
	natsclient "github.com/clearview-home/sms-concierge/internal/nats"
	"github.com/clearview-home/sms-concierge/internal/sms"
	"github.com/clearview-home/sms-concierge/internal/store"
	"github.com/clearview-home/sms-concierge/pkg/logger"
	"github.com/clearview-home/sms-concierge/pkg/metrics"
)

// Fixed replies for the appointment keywords. Keyword exchanges never
// touch the transcript.
const (
	ConfirmationReply = "You're confirmed! We'll see you at your scheduled time. Reply STOP to opt out."
	RescheduleReply   = "No problem! Our team will reach out shortly to find a time that works better. Reply STOP to opt out."
)

// historyLines is how many transcript entries feed the reply prompt.
const historyLines = 3

// ConversationService orchestrates the initiate-contact and inbound
// flows over the conversation store, composer and dispatch gateway.
type ConversationService struct {
	store    store.Store
	composer *Composer
	sender   sms.Sender
	events   *natsclient.Publisher
	logger   *logger.Logger
}

// NewConversationService creates the orchestrator. events may be nil
// when the audit stream is not configured.
func NewConversationService(
	st store.Store,
	composer *Composer,
	sender sms.Sender,
	events *natsclient.Publisher,
	log *logger.Logger,
) *ConversationService {
	return &ConversationService{
		store:    st,
		composer: composer,
		sender:   sender,
		events:   events,
		logger:   log,
	}
}

// InitiateContact starts (or restarts) a conversation for a phone
// number: it overwrites any existing transcript, composes a greeting
// framed around the trigger context, dispatches it and records it.
// Dispatch failures propagate to the caller.
func (s *ConversationService) InitiateContact(ctx context.Context, phone, name, triggerContext string) (string, error) {
	if phone == "" {
		return "", fmt.Errorf("customer phone is required")
	}

	conv := model.NewConversation(phone, name, triggerContext)

	greeting := s.composer.Greet(ctx, conv.Name, triggerContext)

	if _, err := s.sender.Send(ctx, phone, greeting); err != nil {
		s.logger.Error("failed to dispatch opening message",
			zap.String("phone", phone),
			zap.Error(err),
		)
		return "", err
	}

	msg := model.NewMessage(model.DirectionOutbound, greeting)
	conv.Messages = append(conv.Messages, msg)
	s.store.Put(phone, conv)

	metrics.ConversationsTotal.WithLabelValues("trigger").Inc()
	metrics.MessagesTotal.WithLabelValues(string(model.DirectionOutbound)).Inc()
	s.publishEvent(ctx, phone, conv.Context, msg)

	s.logger.Info("conversation initiated",
		zap.String("phone", phone),
		zap.String("context", triggerContext),
	)

	return greeting, nil
}

// HandleInbound processes one inbound message. It never returns an
// error: every outcome, including dispatch failures, is captured in
// the typed result so the webhook handler can always acknowledge the
// carrier.
func (s *ConversationService) HandleInbound(ctx context.Context, phone, body string) model.InboundResult {
	lowered := strings.ToLower(body)

	// Appointment keywords short-circuit before the transcript is touched.
	switch {
	case strings.Contains(lowered, "confirm"):
		return s.shortCircuit(ctx, phone, "confirm", ConfirmationReply)
	case strings.Contains(lowered, "reschedule"):
		return s.shortCircuit(ctx, phone, "reschedule", RescheduleReply)
	}

	// Append the inbound message and snapshot the prompt inputs under
	// the per-phone lock so concurrent webhooks cannot lose an append.
	var (
		contextLabel string
		history      string
		created      bool
	)
	inboundMsg := model.NewMessage(model.DirectionInbound, body)
	s.store.Update(phone,
		func() *model.Conversation {
			created = true
			return model.NewConversation(phone, "", "")
		},
		func(conv *model.Conversation) {
			conv.Messages = append(conv.Messages, inboundMsg)
			contextLabel = conv.Context
			history = formatHistory(conv.Messages)
		},
	)
	if created {
		metrics.ConversationsTotal.WithLabelValues("inbound").Inc()
	}
	metrics.MessagesTotal.WithLabelValues(string(model.DirectionInbound)).Inc()
	s.publishEvent(ctx, phone, contextLabel, inboundMsg)

	reply := s.composer.Compose(ctx, body, PromptContext{
		Business: contextLabel,
		History:  history,
	})

	if _, err := s.sender.Send(ctx, phone, reply); err != nil {
		s.logger.Error("failed to dispatch reply",
			zap.String("phone", phone),
			zap.Error(err),
		)
		return model.InboundResult{Status: model.DispatchFailed, Reply: reply, Err: err}
	}

	outboundMsg := model.NewMessage(model.DirectionOutbound, reply)
	s.store.Update(phone,
		func() *model.Conversation { return model.NewConversation(phone, "", "") },
		func(conv *model.Conversation) {
			conv.Messages = append(conv.Messages, outboundMsg)
		},
	)
	metrics.MessagesTotal.WithLabelValues(string(model.DirectionOutbound)).Inc()
	s.publishEvent(ctx, phone, contextLabel, outboundMsg)

	return model.InboundResult{Status: model.DispatchSent, Reply: reply}
}

// Get returns the full conversation for a phone number.
func (s *ConversationService) Get(phone string) (*model.Conversation, bool) {
	return s.store.Get(phone)
}

// List returns per-phone summaries. Transcripts are never included so
// the listing stays bounded regardless of conversation size.
func (s *ConversationService) List() map[string]model.Summary {
	all := s.store.All()
	out := make(map[string]model.Summary, len(all))
	for phone, conv := range all {
		out[phone] = conv.Summarize()
	}
	return out
}

func (s *ConversationService) shortCircuit(ctx context.Context, phone, keyword, reply string) model.InboundResult {
	metrics.KeywordShortCircuitsTotal.WithLabelValues(keyword).Inc()

	if _, err := s.sender.Send(ctx, phone, reply); err != nil {
		s.logger.Error("failed to dispatch keyword reply",
			zap.String("phone", phone),
			zap.String("keyword", keyword),
			zap.Error(err),
		)
		return model.InboundResult{Status: model.DispatchFailed, Reply: reply, Err: err}
	}

	s.publishEvent(ctx, phone, "", model.NewMessage(model.DirectionOutbound, reply))

	return model.InboundResult{Status: model.DispatchShortCircuit, Reply: reply}
}

func (s *ConversationService) publishEvent(ctx context.Context, phone, contextLabel string, msg model.Message) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, &model.MessageEvent{
		ID:        msg.ID,
		Phone:     phone,
		Direction: msg.Direction,
		Body:      msg.Body,
		Context:   contextLabel,
		CreatedAt: msg.CreatedAt,
	})
}

// formatHistory renders the last few transcript entries as
// direction-prefixed lines, oldest first.
func formatHistory(messages []model.Message) string {
	start := len(messages) - historyLines
	if start < 0 {
		start = 0
	}

	lines := make([]string, 0, historyLines)
	for _, msg := range messages[start:] {
		prefix := "Customer"
		if msg.Direction == model.DirectionOutbound {
			prefix = "Assistant"
		}
		lines = append(lines, prefix+": "+msg.Body)
	}
	return strings.Join(lines, "\n")
}
