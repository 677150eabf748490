package sms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/clearview-home/sms-concierge/pkg/logger"
	"github.com/clearview-home/sms-concierge/pkg/metrics"
)

// DefaultBaseURL is the carrier REST endpoint.
const DefaultBaseURL = "https://api.twilio.com/2010-04-01"

// Config holds carrier credentials and the fixed sender number.
type Config struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	BaseURL    string
	Timeout    time.Duration
}

// Client sends messages through the carrier's REST API.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *logger.Logger
}

// NewClient creates a carrier client.
func NewClient(cfg Config, log *logger.Logger) (*Client, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, errors.New("carrier account SID and auth token are required")
	}
	if cfg.FromNumber == "" {
		return nil, errors.New("carrier sender number is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: log,
	}, nil
}

type carrierReceipt struct {
	SID     string `json:"sid"`
	To      string `json:"to"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Send forwards the message verbatim to the carrier from the configured
// sender number.
func (c *Client) Send(ctx context.Context, to, body string) (*Receipt, error) {
	start := time.Now()

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.cfg.FromNumber)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json",
		strings.TrimSuffix(c.cfg.BaseURL, "/"), c.cfg.AccountSID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &DispatchError{To: to, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.cfg.AccountSID, c.cfg.AuthToken)

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordDispatch("error", time.Since(start).Seconds())
		c.logger.Error("carrier request failed",
			zap.String("to", to),
			zap.Error(err),
		)
		return nil, &DispatchError{To: to, Err: err}
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var cr carrierReceipt
	if err := json.Unmarshal(payload, &cr); err != nil && resp.StatusCode < 300 {
		metrics.RecordDispatch("error", time.Since(start).Seconds())
		return nil, &DispatchError{To: to, StatusCode: resp.StatusCode, Reason: "malformed receipt", Err: err}
	}

	if resp.StatusCode >= 300 {
		metrics.RecordDispatch("rejected", time.Since(start).Seconds())
		c.logger.Error("carrier rejected message",
			zap.String("to", to),
			zap.Int("status_code", resp.StatusCode),
			zap.String("reason", cr.Message),
		)
		return nil, &DispatchError{To: to, StatusCode: resp.StatusCode, Reason: cr.Message}
	}

	metrics.RecordDispatch("sent", time.Since(start).Seconds())
	c.logger.Info("sms dispatched",
		zap.String("to", to),
		zap.String("sid", cr.SID),
		zap.String("status", cr.Status),
	)

	return &Receipt{
		SID:       cr.SID,
		To:        cr.To,
		Status:    cr.Status,
		CreatedAt: time.Now().UTC(),
	}, nil
}
