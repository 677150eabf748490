package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearview-home/sms-concierge/internal/llm"
	"github.com/clearview-home/sms-concierge/internal/model"
	"github.com/clearview-home/sms-concierge/internal/service"
	"github.com/clearview-home/sms-concierge/internal/sms"
	"github.com/clearview-home/sms-concierge/internal/store"
	"github.com/clearview-home/sms-concierge/pkg/logger"
)

type stubLLM struct {
	reply string
}

func (s *stubLLM) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return &llm.CompletionResponse{Content: s.reply, Model: "stub"}, nil
}

func (s *stubLLM) Name() string { return "stub" }

type stubSender struct {
	sent []string
	err  error
}

func (s *stubSender) Send(ctx context.Context, to, body string) (*sms.Receipt, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.sent = append(s.sent, body)
	return &sms.Receipt{SID: "SM1", To: to, Status: "queued"}, nil
}

func newTestRouter(t *testing.T, llmReply string, sendErr error) (*chi.Mux, *stubSender) {
	t.Helper()
	log := logger.NewNop()
	sender := &stubSender{err: sendErr}
	svc := service.NewConversationService(
		store.NewMemory(0),
		service.NewComposer(&stubLLM{reply: llmReply}, log),
		sender,
		nil,
		log,
	)

	contact := NewContactHandler(svc, log)
	webhook := NewWebhookHandler(svc, log)
	conversations := NewConversationHandler(svc, log)
	health := NewHealthHandler(nil)

	r := chi.NewRouter()
	r.Get("/", health.Index)
	r.Get("/health", health.Health)
	r.Get("/ready", health.Ready)
	r.Route("/api", func(r chi.Router) {
		r.Post("/initiate-contact", contact.Initiate)
		r.Post("/sms/webhook", webhook.Inbound)
		r.Get("/conversations", conversations.List)
		r.Get("/conversations/{phone}", conversations.Get)
	})
	return r, sender
}

func postWebhook(router http.Handler, from, body string) *httptest.ResponseRecorder {
	form := url.Values{}
	form.Set("From", from)
	form.Set("Body", body)

	req := httptest.NewRequest(http.MethodPost, "/api/sms/webhook", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestInitiateContact_Success(t *testing.T) {
	router, sender := newTestRouter(t, "Hi Jane, about your blinds!", nil)

	payload := `{"customer_phone":"+15551234567","customer_name":"Jane","trigger_context":"blind install quote"}`
	req := httptest.NewRequest(http.MethodPost, "/api/initiate-contact", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.InitiateContactResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Hi Jane, about your blinds!", resp.InitialMessage)
	assert.Len(t, sender.sent, 1)
}

func TestInitiateContact_InvalidBody(t *testing.T) {
	router, _ := newTestRouter(t, "hi", nil)

	req := httptest.NewRequest(http.MethodPost, "/api/initiate-contact", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInitiateContact_MissingPhone(t *testing.T) {
	router, _ := newTestRouter(t, "hi", nil)

	req := httptest.NewRequest(http.MethodPost, "/api/initiate-contact",
		strings.NewReader(`{"customer_name":"Jane"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInitiateContact_DispatchFailureIs500(t *testing.T) {
	router, _ := newTestRouter(t, "hi", &sms.DispatchError{To: "+15551234567", StatusCode: 400})

	payload := `{"customer_phone":"+15551234567","customer_name":"Jane","trigger_context":"quote"}`
	req := httptest.NewRequest(http.MethodPost, "/api/initiate-contact", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["error"])
}

func TestWebhook_AlwaysAcknowledgesWithTwiML(t *testing.T) {
	router, _ := newTestRouter(t, "thanks!", nil)

	rec := postWebhook(router, "+15559876543", "do you do repairs?")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/xml", rec.Header().Get("Content-Type"))
	assert.Equal(t, "<Response></Response>", rec.Body.String())
}

func TestWebhook_AcknowledgesOnDispatchFailure(t *testing.T) {
	router, _ := newTestRouter(t, "thanks!", &sms.DispatchError{To: "+15559876543", StatusCode: 500})

	rec := postWebhook(router, "+15559876543", "hello?")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<Response></Response>", rec.Body.String())
}

func TestWebhook_AcknowledgesOnMissingFields(t *testing.T) {
	router, _ := newTestRouter(t, "thanks!", nil)

	rec := postWebhook(router, "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<Response></Response>", rec.Body.String())
}

func TestWebhook_KeywordReply(t *testing.T) {
	router, sender := newTestRouter(t, "unused", nil)

	rec := postWebhook(router, "+15559876543", "CONFIRM")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, service.ConfirmationReply, sender.sent[0])
}

func TestGetConversation_NotFound(t *testing.T) {
	router, _ := newTestRouter(t, "hi", nil)

	req := httptest.NewRequest(http.MethodGet, "/api/conversations/+10000000000", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Conversation not found", resp["error"])
}

func TestGetConversation_FullTranscript(t *testing.T) {
	router, _ := newTestRouter(t, "happy to help", nil)

	postWebhook(router, "+15559876543", "hi")

	req := httptest.NewRequest(http.MethodGet, "/api/conversations/+15559876543", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var conv model.Conversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conv))
	assert.Equal(t, model.DefaultName, conv.Name)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, "hi", conv.Messages[0].Body)
}

func TestListConversations_SummariesNotTranscripts(t *testing.T) {
	router, _ := newTestRouter(t, "sure", nil)

	postWebhook(router, "+15559876543", "hi")
	postWebhook(router, "+15559876543", "more questions")

	req := httptest.NewRequest(http.MethodGet, "/api/conversations", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]model.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)

	summary := resp["+15559876543"]
	assert.Equal(t, 4, summary.MessageCount)
	require.NotNil(t, summary.LastMessage)
	assert.Equal(t, "sure", summary.LastMessage.Body)
	assert.NotContains(t, rec.Body.String(), `"messages"`)
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t, "hi", nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, ServiceName, resp["service"])
	assert.NotEmpty(t, resp["timestamp"])
}

func TestReady_NoNATSConfigured(t *testing.T) {
	router, _ := newTestRouter(t, "hi", nil)

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIndex_ListsEndpoints(t *testing.T) {
	router, _ := newTestRouter(t, "hi", nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Message   string   `json:"message"`
		Endpoints []string `json:"endpoints"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Message)
	assert.Contains(t, resp.Endpoints, "POST /api/sms/webhook")
}
