// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// SMSDispatchDuration tracks carrier send latency.
	SMSDispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sms_dispatch_duration_seconds",
			Help:    "SMS carrier dispatch duration",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"status"},
	)

	// SMSDispatchTotal tracks sends by outcome.
	SMSDispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sms_dispatch_total",
			Help: "Total SMS dispatch attempts",
		},
		[]string{"status"},
	)

	// LLMCompletionDuration tracks LLM completion duration.
	LLMCompletionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_completion_duration_seconds",
			Help:    "LLM completion duration",
			Buckets: []float64{.25, .5, 1, 2, 5, 10, 20, 30},
		},
		[]string{"model", "status"},
	)

	// LLMTokensTotal tracks total LLM tokens processed.
	LLMTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_tokens_total",
			Help: "Total LLM tokens processed",
		},
		[]string{"model", "direction"},
	)

	// ComposerFallbacksTotal counts completions replaced by the static
	// fallback reply.
	ComposerFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "composer_fallbacks_total",
			Help: "Total composer fallback replies",
		},
	)

	// ConversationsTotal tracks conversations created.
	ConversationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversations_total",
			Help: "Total conversations created",
		},
		[]string{"origin"},
	)

	// MessagesTotal tracks transcript messages appended.
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_total",
			Help: "Total transcript messages appended",
		},
		[]string{"direction"},
	)

	// KeywordShortCircuitsTotal counts inbound messages answered by the
	// fixed keyword replies.
	KeywordShortCircuitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keyword_short_circuits_total",
			Help: "Total keyword short-circuit replies",
		},
		[]string{"keyword"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordDispatch records metrics for a carrier send.
func RecordDispatch(status string, duration float64) {
	SMSDispatchDuration.WithLabelValues(status).Observe(duration)
	SMSDispatchTotal.WithLabelValues(status).Inc()
}

// RecordCompletion records metrics for an LLM completion.
func RecordCompletion(model, status string, duration float64, tokensIn, tokensOut int) {
	LLMCompletionDuration.WithLabelValues(model, status).Observe(duration)
	LLMTokensTotal.WithLabelValues(model, "in").Add(float64(tokensIn))
	LLMTokensTotal.WithLabelValues(model, "out").Add(float64(tokensOut))
}
