package http

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"spendwise/internal/analytics"
	"spendwise/internal/log"
	"spendwise/internal/metrics"
)

// Defaults are the request parameters used when a query leaves them out.
type Defaults struct {
	TrendMonths  int
	InsightDays  int
	DailyDays    int
	TopLimit     int
	FetchTimeout time.Duration
}

func DefaultDefaults() Defaults {
	return Defaults{
		TrendMonths:  analytics.DefaultTrendMonths,
		InsightDays:  analytics.DefaultInsightDays,
		DailyDays:    analytics.DefaultDailyDays,
		TopLimit:     analytics.DefaultTopLimit,
		FetchTimeout: 7 * time.Second,
	}
}

// Options configures a Server.
type Options struct {
	Defaults Defaults
	// Ready is polled by /readyz; nil means always ready.
	Ready func(ctx context.Context) error
	// RateLimit is the per-client request budget per minute; 0 disables it.
	RateLimit int
	Logger    *log.Logger
}

type Server struct {
	http.Server
	svc         *analytics.Service
	defaults    Defaults
	ready       func(ctx context.Context) error
	logger      *log.Logger
	reqLogger   *log.StructuredLogger
	rateLimiter *rateLimiter
	started     time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc *analytics.Service, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}
	if opts.Defaults == (Defaults{}) {
		opts.Defaults = DefaultDefaults()
	}
	logger := opts.Logger.WithComponent(log.ComponentHTTP)

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		svc:         svc,
		defaults:    opts.Defaults,
		ready:       opts.Ready,
		logger:      logger,
		reqLogger:   log.NewStructuredLogger(logger),
		rateLimiter: newRateLimiter(opts.RateLimit),
		started:     time.Now(),
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	s.route(mux, "/api/analytics/monthly-summary", s.handleMonthlySummary)
	s.route(mux, "/api/analytics/trends", s.handleTrends)
	s.route(mux, "/api/analytics/category-analysis", s.handleCategoryAnalysis)
	s.route(mux, "/api/analytics/daily-pattern", s.handleDailyPattern)
	s.route(mux, "/api/analytics/top-expenses", s.handleTopExpenses)
	s.route(mux, "/api/analytics/insights", s.handleInsights)

	return s
}

// route registers an authenticated GET analytics endpoint.
func (s *Server) route(mux *http.ServeMux, path string, h http.HandlerFunc) {
	mux.Handle("GET "+path, s.withMiddleware(path, s.requireUser(h)))
}

// withMiddleware adds request ids, security headers, rate limiting, request
// logging and metrics.
func (s *Server) withMiddleware(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		reqID := requestID(r)

		logger := s.logger.With(log.FieldRequestID, reqID)
		ctx := log.WithLogger(r.Context(), logger)
		r = r.WithContext(ctx)

		w.Header().Set(RequestIDHeader, reqID)
		setSecurityHeaders(w.Header())
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		defer func() {
			elapsed := time.Since(start)
			metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(rw.statusCode)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
			log.NewStructuredLogger(logger).LogHTTPEnd(ctx, r, rw.statusCode, elapsed.Milliseconds(), clientIP)
		}()

		s.reqLogger.LogHTTPStart(ctx, r, clientIP)

		if isSuspiciousRequest(r) {
			metrics.HTTPRejections.WithLabelValues("suspicious").Inc()
			logger.WarnContext(ctx, "Suspicious request blocked", log.FieldClientIP, clientIP)
			ErrorResponse(http.StatusBadRequest, "bad request").Write(rw)
			return
		}
		if !s.rateLimiter.allow(clientIP, start) {
			metrics.HTTPRejections.WithLabelValues("rate_limited").Inc()
			logger.WarnContext(ctx, "Rate limit exceeded", log.FieldClientIP, clientIP)
			ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded").
				Header("Retry-After", "60").
				Write(rw)
			return
		}

		next.ServeHTTP(rw, r)
	})
}

// requireUser rejects requests without a user-id header.
func (s *Server) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if userID(r) == "" {
			metrics.HTTPRejections.WithLabelValues("unauthenticated").Inc()
			log.FromContext(r.Context()).WarnContext(r.Context(), "Request without user id",
				log.FieldPath, r.URL.Path,
				log.FieldErrorType, log.ErrorTypeAuth)
			ErrorResponse(http.StatusUnauthorized, "missing "+UserIDHeader+" header").Write(w)
			return
		}
		next(w, r)
	}
}

// Shutdown gracefully shuts down the server and the rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
