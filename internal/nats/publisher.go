package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/clearview-home/sms-concierge/internal/model"
)

const (
	// StreamName is the name of the conversation audit stream.
	StreamName = "SMS_CONVERSATIONS"

	// SubjectPrefix is the prefix for all audit subjects.
	SubjectPrefix = "sms"
)

// Publisher writes message events to the JetStream audit stream.
// Publishing is best effort; the request path never depends on it.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher over an established client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// EnsureStream ensures the audit stream exists with proper configuration.
func (p *Publisher) EnsureStream(ctx context.Context) error {
	js := p.client.JetStream()

	// Check if stream exists
	_, err := js.Stream(ctx, StreamName)
	if err == nil {
		return nil
	}

	_, err = js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      90 * 24 * time.Hour,
		MaxBytes:    10 * 1024 * 1024 * 1024,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Compression: jetstream.S2Compression,
		Description: "SMS concierge message audit trail",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	return nil
}

// EventSubject returns the subject for a message event. Phone numbers
// are reduced to digits so they form a valid subject token.
func EventSubject(direction model.Direction, phone string) string {
	return fmt.Sprintf("%s.%s.%s", SubjectPrefix, direction, phoneToken(phone))
}

// Publish writes a message event to the stream. Failures are logged
// and dropped; the audit stream never fails a customer exchange.
func (p *Publisher) Publish(ctx context.Context, event *model.MessageEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		p.client.logger.Error("failed to marshal message event", zap.Error(err))
		return
	}

	subject := EventSubject(event.Direction, event.Phone)
	if _, err := p.client.JetStream().Publish(ctx, subject, data); err != nil {
		p.client.logger.Warn("failed to publish message event",
			zap.String("subject", subject),
			zap.Error(err),
		)
	}
}

func phoneToken(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "unknown"
	}
	return b.String()
}
