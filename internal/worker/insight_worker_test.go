package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"spendwise/internal/amqp"
	"spendwise/internal/analytics"
	"spendwise/internal/core"
)

type fakeService struct {
	gotUser string
	gotDays int
	report  analytics.InsightReport
	err     error
}

func (f *fakeService) Insights(_ context.Context, userID string, days int) (analytics.InsightReport, error) {
	f.gotUser, f.gotDays = userID, days
	return f.report, f.err
}

type fakePublisher struct {
	published []*amqp.InsightDigestMessage
	err       error
}

func (f *fakePublisher) PublishDigest(_ context.Context, msg *amqp.InsightDigestMessage) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, msg)
	return nil
}

type fakeConsumer struct {
	messages []*amqp.InsightRequestMessage
	results  []error
	err      error
}

func (f *fakeConsumer) ConsumeInsightRequests(ctx context.Context, handler amqp.RequestHandler) error {
	for _, m := range f.messages {
		f.results = append(f.results, handler(ctx, m))
	}
	return f.err
}

func sampleReport() analytics.InsightReport {
	return analytics.InsightReport{
		Insights: []core.Insight{
			{Kind: core.InsightAverageDaily, Message: "Your average daily spending is 5.33"},
		},
		TotalExpenses: 3,
		TotalSpent:    160,
		Period:        "Last 30 days",
	}
}

func TestHandleRequest_PublishesDigest(t *testing.T) {
	svc := &fakeService{report: sampleReport()}
	pub := &fakePublisher{}
	w := NewInsightWorker(svc, pub, 30, time.Second)
	fixed := time.Date(2025, 1, 12, 9, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return fixed }

	err := w.HandleRequest(context.Background(), &amqp.InsightRequestMessage{RequestID: "r1", UserID: "u1", Days: 7})
	if err != nil {
		t.Fatalf("HandleRequest() error = %v", err)
	}
	if svc.gotUser != "u1" || svc.gotDays != 7 {
		t.Errorf("service called with (%q, %d)", svc.gotUser, svc.gotDays)
	}
	if len(pub.published) != 1 {
		t.Fatalf("published %d digests, want 1", len(pub.published))
	}
	d := pub.published[0]
	if d.RequestID != "r1" || d.UserID != "u1" || d.Period != "Last 30 days" || d.TotalSpent != 160 {
		t.Errorf("digest = %+v", d)
	}
	if len(d.Insights) != 1 {
		t.Errorf("digest insights = %d, want 1", len(d.Insights))
	}
	if !d.GeneratedAt.Equal(fixed) {
		t.Errorf("GeneratedAt = %v, want %v", d.GeneratedAt, fixed)
	}
}

func TestHandleRequest_DefaultDays(t *testing.T) {
	tests := []struct {
		name        string
		defaultDays int
		want        int
	}{
		{"configured default", 14, 14},
		{"fallback default", 0, analytics.DefaultInsightDays},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{report: sampleReport()}
			w := NewInsightWorker(svc, &fakePublisher{}, tt.defaultDays, 0)
			if err := w.HandleRequest(context.Background(), &amqp.InsightRequestMessage{UserID: "u1"}); err != nil {
				t.Fatalf("HandleRequest() error = %v", err)
			}
			if svc.gotDays != tt.want {
				t.Errorf("days = %d, want %d", svc.gotDays, tt.want)
			}
		})
	}
}

func TestHandleRequest_ErrorsKeepDisposition(t *testing.T) {
	tests := []struct {
		name    string
		svcErr  error
		pubErr  error
		want    amqp.Disposition
		wantPub bool
	}{
		{
			name:   "invalid argument is dropped",
			svcErr: core.InvalidArgument("days must be positive, got -3"),
			want:   amqp.Drop,
		},
		{
			name:   "upstream failure is requeued",
			svcErr: &core.FetchError{Source: "sheets", Period: "Last 30 days", Err: errors.New("quota exceeded")},
			want:   amqp.Requeue,
		},
		{
			name:   "publish failure is requeued",
			pubErr: errors.New("channel/connection is not open"),
			want:   amqp.Requeue,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{report: sampleReport(), err: tt.svcErr}
			pub := &fakePublisher{err: tt.pubErr}
			w := NewInsightWorker(svc, pub, 30, 0)

			err := w.HandleRequest(context.Background(), &amqp.InsightRequestMessage{RequestID: "r1", UserID: "u1"})
			if err == nil {
				t.Fatal("HandleRequest() should fail")
			}
			if got := amqp.DispositionFor(err); got != tt.want {
				t.Errorf("DispositionFor(%v) = %v, want %v", err, got, tt.want)
			}
			if len(pub.published) != 0 {
				t.Error("no digest should be published on failure")
			}
		})
	}
}

func TestRun(t *testing.T) {
	svc := &fakeService{report: sampleReport()}
	pub := &fakePublisher{}
	w := NewInsightWorker(svc, pub, 30, 0)

	consumer := &fakeConsumer{messages: []*amqp.InsightRequestMessage{
		{RequestID: "r1", UserID: "u1"},
		{RequestID: "r2", UserID: "u2"},
	}}
	if err := w.Run(context.Background(), consumer); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(pub.published) != 2 {
		t.Errorf("published %d digests, want 2", len(pub.published))
	}

	consumer = &fakeConsumer{err: errors.New("start consuming: access refused")}
	if err := w.Run(context.Background(), consumer); err == nil {
		t.Error("Run() should surface consumer errors")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	consumer = &fakeConsumer{err: context.Canceled}
	if err := w.Run(ctx, consumer); err != nil {
		t.Errorf("Run() after cancel error = %v, want nil", err)
	}
}
