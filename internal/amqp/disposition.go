package amqp

import (
	"context"
	"errors"
	"log/slog"

	"spendwise/internal/core"
	"spendwise/internal/metrics"
)

// Disposition is what happens to a delivery after handling.
type Disposition int

const (
	// Ack removes a processed message.
	Ack Disposition = iota
	// Drop acks a message that can never succeed.
	Drop
	// Reject nacks without requeue, dead-lettering if the queue has a DLX.
	Reject
	// Requeue nacks for redelivery.
	Requeue
)

func (d Disposition) String() string {
	switch d {
	case Ack:
		return "acked"
	case Drop:
		return "dropped"
	case Reject:
		return "rejected"
	case Requeue:
		return "requeued"
	default:
		return "unknown"
	}
}

// DispositionFor maps a handler result to a disposition. Bad input is never
// retried; source failures are.
func DispositionFor(err error) Disposition {
	switch {
	case err == nil:
		return Ack
	case errors.Is(err, ErrMalformedMessage):
		return Reject
	case errors.Is(err, core.ErrInvalidArgument):
		return Drop
	default:
		return Requeue
	}
}

// acknowledger is the part of amqp091.Delivery used to settle a message.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// RequestHandler processes one decoded insight request.
type RequestHandler func(ctx context.Context, msg *InsightRequestMessage) error

// settle decodes body, runs handler and settles the delivery.
func settle(ctx context.Context, d acknowledger, body []byte, handler RequestHandler) Disposition {
	msg, err := InsightRequestFromJSON(body)
	if err == nil {
		err = handler(ctx, msg)
	}
	disp := DispositionFor(err)

	var ackErr error
	switch disp {
	case Ack, Drop:
		ackErr = d.Ack(false)
	case Reject:
		ackErr = d.Nack(false, false)
	case Requeue:
		ackErr = d.Nack(false, true)
	}
	metrics.WorkerMessages.WithLabelValues(disp.String()).Inc()

	attrs := []any{"disposition", disp.String()}
	if msg != nil {
		attrs = append(attrs, "request_id", msg.RequestID, "user_id", msg.UserID)
	}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	switch disp {
	case Ack:
		slog.InfoContext(ctx, "Insight request processed", attrs...)
	case Requeue:
		slog.ErrorContext(ctx, "Insight request failed, requeued", attrs...)
	default:
		slog.WarnContext(ctx, "Insight request discarded", attrs...)
	}
	if ackErr != nil {
		slog.ErrorContext(ctx, "Failed to settle delivery", "error", ackErr)
	}
	return disp
}
