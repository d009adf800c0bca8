package observability

import (
	"context"
	"fmt"
	"time"

	"folio/internal/config"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Business events counted by RecordEvent
const (
	EventResumeParsed     = "resume_parsed"
	EventResumeAnalyzed   = "resume_analyzed"
	EventResumeOptimized  = "resume_optimized"
	EventBlogMutated      = "blog_mutated"
	EventContactSubmitted = "contact_submitted"
)

// Metrics holds the application instruments. A nil instrument is skipped.
type Metrics struct {
	aiEnabled       bool
	businessEnabled bool
	rateEnabled     bool

	AIProcessingTime metric.Float64Histogram
	AIRequestCount   metric.Int64Counter
	AIErrorCount     metric.Int64Counter
	AITokenUsage     metric.Int64Histogram

	Events           metric.Int64Counter
	DegradedOutcomes metric.Int64Counter

	CertReloadCount metric.Int64Counter
	CertExpiryTime  metric.Float64Gauge

	RateLimitHits metric.Int64Counter
}

func newMetrics(meter metric.Meter, toggles config.CustomMetricsConfig) (*Metrics, error) {
	m := &Metrics{
		aiEnabled:       toggles.AIOperations,
		businessEnabled: toggles.BusinessMetrics,
		rateEnabled:     toggles.RateLimits,
	}
	var err error

	if m.AIProcessingTime, err = meter.Float64Histogram("folio_ai_processing_duration_seconds",
		metric.WithDescription("Time spent waiting for the AI provider"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("failed to create AI processing time metric: %w", err)
	}
	if m.AIRequestCount, err = meter.Int64Counter("folio_ai_requests_total",
		metric.WithDescription("Total number of AI requests")); err != nil {
		return nil, fmt.Errorf("failed to create AI request count metric: %w", err)
	}
	if m.AIErrorCount, err = meter.Int64Counter("folio_ai_errors_total",
		metric.WithDescription("Total number of failed AI requests")); err != nil {
		return nil, fmt.Errorf("failed to create AI error count metric: %w", err)
	}
	if m.AITokenUsage, err = meter.Int64Histogram("folio_ai_token_usage",
		metric.WithDescription("Token usage per AI request"),
		metric.WithUnit("tokens")); err != nil {
		return nil, fmt.Errorf("failed to create AI token usage metric: %w", err)
	}
	if m.Events, err = meter.Int64Counter("folio_events_total",
		metric.WithDescription("Completed resume, blog and contact operations")); err != nil {
		return nil, fmt.Errorf("failed to create events metric: %w", err)
	}
	if m.DegradedOutcomes, err = meter.Int64Counter("folio_degraded_outcomes_total",
		metric.WithDescription("Pipeline results that fell back to a default value")); err != nil {
		return nil, fmt.Errorf("failed to create degraded outcome metric: %w", err)
	}
	if m.CertReloadCount, err = meter.Int64Counter("folio_cert_reloads_total",
		metric.WithDescription("Total number of certificate reloads")); err != nil {
		return nil, fmt.Errorf("failed to create certificate reload count metric: %w", err)
	}
	if m.CertExpiryTime, err = meter.Float64Gauge("folio_cert_expiry_seconds",
		metric.WithDescription("Seconds until certificate expiry"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("failed to create certificate expiry metric: %w", err)
	}
	if m.RateLimitHits, err = meter.Int64Counter("folio_rate_limit_hits_total",
		metric.WithDescription("Requests rejected by the rate limiter")); err != nil {
		return nil, fmt.Errorf("failed to create rate limit hits metric: %w", err)
	}

	return m, nil
}

// RecordAICall records one provider call
func (m *Manager) RecordAICall(ctx context.Context, operation, model string, duration time.Duration, inputTokens, outputTokens int64, err error) {
	if m == nil || m.metrics.AIRequestCount == nil || !m.metrics.aiEnabled {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("model", model),
		attribute.Bool("success", err == nil),
	)
	m.metrics.AIProcessingTime.Record(ctx, duration.Seconds(), attrs)
	m.metrics.AIRequestCount.Add(ctx, 1, attrs)
	if err != nil {
		m.metrics.AIErrorCount.Add(ctx, 1, attrs)
		return
	}

	for _, usage := range []struct {
		tokenType string
		value     int64
	}{
		{"input", inputTokens},
		{"output", outputTokens},
		{"total", inputTokens + outputTokens},
	} {
		m.metrics.AITokenUsage.Record(ctx, usage.value, metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("model", model),
			attribute.String("token_type", usage.tokenType),
		))
	}
}

// RecordDegraded counts a pipeline result that fell back to a default
func (m *Manager) RecordDegraded(ctx context.Context, operation, reason string) {
	if m == nil || m.metrics.DegradedOutcomes == nil || !m.metrics.businessEnabled {
		return
	}
	m.metrics.DegradedOutcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("reason", reason),
	))
}

// RecordEvent counts a completed business operation
func (m *Manager) RecordEvent(ctx context.Context, event string, success bool, attrs ...attribute.KeyValue) {
	if m == nil || m.metrics.Events == nil || !m.metrics.businessEnabled {
		return
	}
	all := append([]attribute.KeyValue{
		attribute.String("event", event),
		attribute.Bool("success", success),
	}, attrs...)
	m.metrics.Events.Add(ctx, 1, metric.WithAttributes(all...))
}

// RecordRateLimitHit counts a rejected request
func (m *Manager) RecordRateLimitHit(ctx context.Context, limitType string) {
	if m == nil || m.metrics.RateLimitHits == nil || !m.metrics.rateEnabled {
		return
	}
	m.metrics.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attribute.String("limit_type", limitType)))
}

// RecordCertReload counts a certificate reload attempt
func (m *Manager) RecordCertReload(ctx context.Context, success bool) {
	if m == nil || m.metrics.CertReloadCount == nil {
		return
	}
	m.metrics.CertReloadCount.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
}

// RecordCertExpiry records the time left before the serving certificate expires
func (m *Manager) RecordCertExpiry(ctx context.Context, remaining time.Duration) {
	if m == nil || m.metrics.CertExpiryTime == nil {
		return
	}
	m.metrics.CertExpiryTime.Record(ctx, remaining.Seconds())
}
