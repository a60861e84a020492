package analytics

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/metrics"
	"spendwise/internal/source"
)

// Defaults applied by callers that leave a parameter unset.
const (
	DefaultInsightDays   = 30
	DefaultDailyDays     = 30
	DefaultTopLimit      = 10
	DefaultCategoryToken = TokenMonth
	noTopCategory        = "None"
)

type (
	// Summary is the display-facing view of one calendar month.
	Summary struct {
		Period                string             `json:"period"`
		TotalSpent            float64            `json:"totalSpent"`
		TransactionCount      int                `json:"transactionCount"`
		CategoryBreakdown     map[string]float64 `json:"categoryBreakdown"`
		AveragePerTransaction float64            `json:"averagePerTransaction"`
	}

	CategoryAnalysis struct {
		Period      string               `json:"period"`
		Categories  []core.CategoryGroup `json:"categories"`
		TotalSpent  float64              `json:"totalSpent"`
		TopCategory string               `json:"topCategory"`
	}

	// DailyPattern lists only days with spending; see GroupByDay.
	DailyPattern struct {
		DailyData        []core.DailyAmount `json:"dailyData"`
		AvgDailySpending float64            `json:"avgDailySpending"`
		Period           string             `json:"period"`
	}

	InsightReport struct {
		Insights      []core.Insight `json:"insights"`
		TotalExpenses int            `json:"totalExpenses"`
		TotalSpent    float64        `json:"totalSpent"`
		Period        string         `json:"period"`
	}
)

// Service computes each analytic on demand: resolve the window, fetch the
// user's transactions, reduce. Nothing is cached between calls.
type Service struct {
	source     source.TransactionSource
	sourceName string
	resolver   *Resolver
}

type Option func(*Service)

// WithSourceName sets the source label used in errors and metrics.
func WithSourceName(name string) Option {
	return func(s *Service) { s.sourceName = name }
}

func NewService(src source.TransactionSource, r *Resolver, opts ...Option) *Service {
	if r == nil {
		r = NewResolver(nil)
	}
	s := &Service{source: src, sourceName: "transactions", resolver: r}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolver returns the resolver the service computes windows with.
func (s *Service) Resolver() *Resolver {
	return s.resolver
}

// MonthlySummary aggregates one calendar month; zero year or month mean current.
func (s *Service) MonthlySummary(ctx context.Context, userID string, year, month int) (Summary, error) {
	p, err := s.resolver.ResolveMonth(year, month)
	if err != nil {
		return Summary{}, err
	}
	txs, err := s.fetch(ctx, userID, p)
	if err != nil {
		return Summary{}, err
	}
	snap := Aggregate(txs, p)
	return Summary{
		Period:                p.Label,
		TotalSpent:            snap.TotalSpent,
		TransactionCount:      snap.TransactionCount,
		CategoryBreakdown:     snap.CategoryTotals,
		AveragePerTransaction: core.Round2(snap.AveragePerTransaction),
	}, nil
}

// Trends returns the last months calendar months, oldest first.
func (s *Service) Trends(ctx context.Context, userID string, months int) ([]core.TrendPoint, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return BuildTrend(ctx, s.resolver, func(ctx context.Context, p core.Period) ([]core.Transaction, error) {
		return s.fetch(ctx, userID, p)
	}, months)
}

// CategoryAnalysis breaks down the spend of a relative window (week, month,
// year) by category. An empty token means month.
func (s *Service) CategoryAnalysis(ctx context.Context, userID, token string) (CategoryAnalysis, error) {
	if strings.TrimSpace(token) == "" {
		token = DefaultCategoryToken
	}
	p, err := s.resolver.ResolveToken(token)
	if err != nil {
		return CategoryAnalysis{}, err
	}
	txs, err := s.fetch(ctx, userID, p)
	if err != nil {
		return CategoryAnalysis{}, err
	}
	groups := GroupByCategory(FilterPeriod(txs, p))
	res := CategoryAnalysis{
		Period:      p.Label,
		Categories:  groups,
		TopCategory: noTopCategory,
	}
	for _, g := range groups {
		res.TotalSpent += g.TotalSpent
	}
	if len(groups) > 0 {
		res.TopCategory = groups[0].Category
	}
	return res, nil
}

// DailyPattern returns per-day spend over the trailing days window.
func (s *Service) DailyPattern(ctx context.Context, userID string, days int) (DailyPattern, error) {
	p, err := s.resolver.Trailing(days)
	if err != nil {
		return DailyPattern{}, err
	}
	txs, err := s.fetch(ctx, userID, p)
	if err != nil {
		return DailyPattern{}, err
	}
	daily := GroupByDay(FilterPeriod(txs, p))
	return DailyPattern{
		DailyData:        daily,
		AvgDailySpending: AverageActiveDay(daily),
		Period:           p.Label,
	}, nil
}

// TopExpenses returns the user's largest expenses of all time.
func (s *Service) TopExpenses(ctx context.Context, userID string, limit int) ([]core.Transaction, error) {
	if limit <= 0 {
		return nil, core.InvalidArgument("limit must be positive, got %d", limit)
	}
	p := core.AllTime()
	txs, err := s.fetch(ctx, userID, p)
	if err != nil {
		return nil, err
	}
	return TopExpenses(txs, limit)
}

// Insights evaluates the insight rules over the trailing days window.
func (s *Service) Insights(ctx context.Context, userID string, days int) (InsightReport, error) {
	p, err := s.resolver.Trailing(days)
	if err != nil {
		return InsightReport{}, err
	}
	txs, err := s.fetch(ctx, userID, p)
	if err != nil {
		return InsightReport{}, err
	}
	in := FilterPeriod(txs, p)
	snap := Aggregate(in, p)
	insights, err := DeriveInsights(in, snap.TotalSpent, p.Days())
	if err != nil {
		return InsightReport{}, err
	}
	for _, i := range insights {
		metrics.InsightsEmitted.WithLabelValues(string(i.Kind)).Inc()
	}
	return InsightReport{
		Insights:      insights,
		TotalExpenses: snap.TransactionCount,
		TotalSpent:    snap.TotalSpent,
		Period:        p.Label,
	}, nil
}

func (s *Service) fetch(ctx context.Context, userID string, p core.Period) ([]core.Transaction, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	start := time.Now()
	txs, err := s.source.Find(ctx, userID, p.Range())
	if err != nil {
		metrics.SourceFetchFailures.WithLabelValues(s.sourceName).Inc()
		slog.ErrorContext(ctx, "Transaction fetch failed",
			"source", s.sourceName,
			"period", p.Label,
			"error", err)
		return nil, &core.FetchError{Source: s.sourceName, Period: p.Label, Err: err}
	}
	slog.DebugContext(ctx, "Transactions fetched",
		"source", s.sourceName,
		"period", p.Label,
		"count", len(txs),
		"duration_ms", time.Since(start).Milliseconds())
	return txs, nil
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return core.InvalidArgument("user id is required")
	}
	return nil
}
