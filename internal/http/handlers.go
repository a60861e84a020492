package http

import (
	"context"
	"net/http"
	"time"

	"spendwise/internal/log"
)

// fetchContext bounds one analytics request by the configured fetch timeout.
func (s *Server) fetchContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.defaults.FetchTimeout)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(map[string]any{
		"status":    "healthy",
		"service":   "spendwise",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
	}).Write(w)
}

// handleReady reports whether the transaction backend is reachable.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code, check := "ready", http.StatusOK, "ok"
	if s.ready != nil {
		if err := s.ready(ctx); err != nil {
			s.logger.WarnContext(ctx, "Readiness check failed", log.FieldError, err)
			status, code, check = "not_ready", http.StatusServiceUnavailable, "failed: "+err.Error()
		}
	}
	NewJSONResponse().Status(code).Data(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    map[string]string{"backend": check},
	}).Write(w)
}

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	p, err := ParseMonthParams(r.URL.Query())
	if err != nil {
		writeServiceError(w, r, log.OpMonthlySummary, err)
		return
	}
	ctx, cancel := s.fetchContext(r)
	defer cancel()

	start := time.Now()
	user := userID(r)
	sum, err := s.svc.MonthlySummary(ctx, user, p.Year, p.Month)
	if err != nil {
		writeServiceError(w, r, log.OpMonthlySummary, err)
		return
	}
	s.logAnalytic(r, log.OpMonthlySummary, user, sum.Period, start)
	NewJSONResponse().Data(sum).Write(w)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	months, err := parseIntParam(r.URL.Query(), "months", s.defaults.TrendMonths)
	if err != nil {
		writeServiceError(w, r, log.OpTrends, err)
		return
	}
	ctx, cancel := s.fetchContext(r)
	defer cancel()

	start := time.Now()
	user := userID(r)
	points, err := s.svc.Trends(ctx, user, months)
	if err != nil {
		writeServiceError(w, r, log.OpTrends, err)
		return
	}
	s.logAnalytic(r, log.OpTrends, user, "", start)
	NewJSONResponse().Data(points).Write(w)
}

func (s *Server) handleCategoryAnalysis(w http.ResponseWriter, r *http.Request) {
	token := parsePeriodToken(r.URL.Query(), "month")
	ctx, cancel := s.fetchContext(r)
	defer cancel()

	start := time.Now()
	user := userID(r)
	res, err := s.svc.CategoryAnalysis(ctx, user, token)
	if err != nil {
		writeServiceError(w, r, log.OpCategoryAnalysis, err)
		return
	}
	s.logAnalytic(r, log.OpCategoryAnalysis, user, res.Period, start)
	NewJSONResponse().Data(res).Write(w)
}

func (s *Server) handleDailyPattern(w http.ResponseWriter, r *http.Request) {
	days, err := parseIntParam(r.URL.Query(), "days", s.defaults.DailyDays)
	if err != nil {
		writeServiceError(w, r, log.OpDailyPattern, err)
		return
	}
	ctx, cancel := s.fetchContext(r)
	defer cancel()

	start := time.Now()
	user := userID(r)
	res, err := s.svc.DailyPattern(ctx, user, days)
	if err != nil {
		writeServiceError(w, r, log.OpDailyPattern, err)
		return
	}
	s.logAnalytic(r, log.OpDailyPattern, user, res.Period, start)
	NewJSONResponse().Data(res).Write(w)
}

func (s *Server) handleTopExpenses(w http.ResponseWriter, r *http.Request) {
	limit, err := parseIntParam(r.URL.Query(), "limit", s.defaults.TopLimit)
	if err != nil {
		writeServiceError(w, r, log.OpTopExpenses, err)
		return
	}
	ctx, cancel := s.fetchContext(r)
	defer cancel()

	start := time.Now()
	user := userID(r)
	top, err := s.svc.TopExpenses(ctx, user, limit)
	if err != nil {
		writeServiceError(w, r, log.OpTopExpenses, err)
		return
	}
	s.logAnalytic(r, log.OpTopExpenses, user, "all", start)
	NewJSONResponse().Data(top).Write(w)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	days, err := parseIntParam(r.URL.Query(), "days", s.defaults.InsightDays)
	if err != nil {
		writeServiceError(w, r, log.OpInsights, err)
		return
	}
	ctx, cancel := s.fetchContext(r)
	defer cancel()

	start := time.Now()
	user := userID(r)
	rep, err := s.svc.Insights(ctx, user, days)
	if err != nil {
		writeServiceError(w, r, log.OpInsights, err)
		return
	}
	s.logAnalytic(r, log.OpInsights, user, rep.Period, start)
	NewJSONResponse().Data(rep).Write(w)
}

func (s *Server) logAnalytic(r *http.Request, op, user, period string, start time.Time) {
	log.NewStructuredLogger(log.FromContext(r.Context())).
		LogAnalytic(r.Context(), op, user, period, time.Since(start).Milliseconds())
}
