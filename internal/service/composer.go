// Package service provides the conversation business logic.
package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/clearview-home/sms-concierge/internal/llm"
	"github.com/clearview-home/sms-concierge/pkg/logger"
	"github.com/clearview-home/sms-concierge/pkg/metrics"
)

// FallbackReply is returned verbatim whenever the completion API fails.
const FallbackReply = "Thanks for your message. We'll get back to you soon. Reply STOP to opt out."

const systemPrompt = "You are the friendly SMS assistant for ClearView Home Services, " +
	"a window treatment installation and service company. Keep every reply " +
	"under 160 characters so it fits a single SMS. Be warm and helpful. " +
	"Remind customers they can reply STOP to opt out when it fits naturally."

const (
	composerMaxTokens   = 100
	composerTemperature = 0.7
)

// PromptContext carries the optional per-conversation inputs to a
// composition: the conversation's context label and up to the last
// three transcript lines, direction-prefixed and newline-joined.
type PromptContext struct {
	Business string
	History  string
}

// Composer turns a customer message plus context into a reply via the
// completion API, degrading to a static reply on any failure.
type Composer struct {
	client llm.Client
	logger *logger.Logger
}

// NewComposer creates a composer over an LLM client.
func NewComposer(client llm.Client, log *logger.Logger) *Composer {
	return &Composer{
		client: client,
		logger: log,
	}
}

// Compose generates a reply to the customer's latest message. It never
// returns an error: completion failures are logged and replaced with
// FallbackReply. There is no retry.
func (c *Composer) Compose(ctx context.Context, customerText string, pc PromptContext) string {
	system := systemPrompt
	if pc.Business != "" {
		system += "\n\nContext for this conversation: " + pc.Business
	}
	if pc.History != "" {
		system += "\n\nRecent conversation:\n" + pc.History
	}

	resp, err := c.client.Complete(ctx, &llm.CompletionRequest{
		System:      system,
		Messages:    []llm.ChatMessage{{Role: "user", Content: customerText}},
		MaxTokens:   composerMaxTokens,
		Temperature: composerTemperature,
	})
	if err != nil {
		c.logger.Error("completion failed, using fallback reply", zap.Error(err))
		metrics.ComposerFallbacksTotal.Inc()
		return FallbackReply
	}

	metrics.RecordCompletion(resp.Model, "success",
		float64(resp.LatencyMs)/1000.0, resp.TokensIn, resp.TokensOut)

	reply := strings.TrimSpace(resp.Content)
	if reply == "" {
		c.logger.Warn("completion returned empty text, using fallback reply")
		metrics.ComposerFallbacksTotal.Inc()
		return FallbackReply
	}
	return reply
}

// Greet composes the opening message for a newly triggered conversation.
func (c *Composer) Greet(ctx context.Context, name, triggerContext string) string {
	prompt := fmt.Sprintf(
		"Write a brief, friendly opening text to %s about their request: %s. "+
			"Introduce yourself as the ClearView Home Services assistant and invite questions.",
		name, triggerContext,
	)
	return c.Compose(ctx, prompt, PromptContext{Business: triggerContext})
}
