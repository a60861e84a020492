package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"spendwise/internal/amqp"
	"spendwise/internal/analytics"
)

// InsightService computes the insight report of one user.
type InsightService interface {
	Insights(ctx context.Context, userID string, days int) (analytics.InsightReport, error)
}

// DigestPublisher sends computed insights onwards.
type DigestPublisher interface {
	PublishDigest(ctx context.Context, msg *amqp.InsightDigestMessage) error
}

// RequestConsumer delivers insight requests until ctx is done.
type RequestConsumer interface {
	ConsumeInsightRequests(ctx context.Context, handler amqp.RequestHandler) error
}

// InsightWorker answers insight requests with digests.
type InsightWorker struct {
	service     InsightService
	publisher   DigestPublisher
	defaultDays int
	timeout     time.Duration
	now         func() time.Time
}

func NewInsightWorker(service InsightService, publisher DigestPublisher, defaultDays int, timeout time.Duration) *InsightWorker {
	if defaultDays <= 0 {
		defaultDays = analytics.DefaultInsightDays
	}
	return &InsightWorker{
		service:     service,
		publisher:   publisher,
		defaultDays: defaultDays,
		timeout:     timeout,
		now:         time.Now,
	}
}

// HandleRequest computes the requested insights and publishes the digest. Errors
// from the service are returned unchanged so the consumer can decide between
// dropping and requeueing the delivery.
func (w *InsightWorker) HandleRequest(ctx context.Context, msg *amqp.InsightRequestMessage) error {
	days := msg.Days
	if days == 0 {
		days = w.defaultDays
	}

	slog.InfoContext(ctx, "Processing insight request",
		"request_id", msg.RequestID,
		"user_id", msg.UserID,
		"days", days)

	fetchCtx := ctx
	if w.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	start := w.now()
	report, err := w.service.Insights(fetchCtx, msg.UserID, days)
	if err != nil {
		return fmt.Errorf("compute insights for %s: %w", msg.UserID, err)
	}

	digest := &amqp.InsightDigestMessage{
		RequestID:   msg.RequestID,
		UserID:      msg.UserID,
		Period:      report.Period,
		TotalSpent:  report.TotalSpent,
		Insights:    report.Insights,
		GeneratedAt: w.now(),
	}
	if err := w.publisher.PublishDigest(ctx, digest); err != nil {
		return fmt.Errorf("publish digest: %w", err)
	}

	slog.InfoContext(ctx, "Insight digest published",
		"request_id", msg.RequestID,
		"user_id", msg.UserID,
		"insights", len(report.Insights),
		"duration_ms", w.now().Sub(start).Milliseconds())
	return nil
}

// Run consumes requests until ctx is cancelled.
func (w *InsightWorker) Run(ctx context.Context, consumer RequestConsumer) error {
	slog.InfoContext(ctx, "Insight worker started", "default_days", w.defaultDays)
	err := consumer.ConsumeInsightRequests(ctx, w.HandleRequest)
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("consume insight requests: %w", err)
	}
	slog.InfoContext(ctx, "Insight worker stopped")
	return nil
}
