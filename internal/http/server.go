package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"billcycle/internal/cache"
	"billcycle/internal/core"
	"billcycle/internal/ledger"
	"billcycle/internal/log"
	"billcycle/internal/services"
)

const (
	handlerTimeout = 7 * time.Second
	maxCycleCount  = 24
	writesPerMin   = 60
)

// Options wires the server's dependencies.
type Options struct {
	Addr       string
	Store      ledger.Store
	Reports    *services.ReportService
	Ready      func(ctx context.Context) error
	Logger     *log.Logger
	CycleCount int
	// Now is the clock used when a request gives no ?today; nil means time.Now.
	Now func() time.Time
}

type Server struct {
	http.Server
	store      ledger.Store
	reports    *services.ReportService
	ready      func(ctx context.Context) error
	logger     *log.Logger
	now        func() time.Time
	cycleCount int
	startedAt  time.Time

	rateLimiter   *rateLimiter
	metrics       *securityMetrics
	overviewCache *cache.LRUCache[core.MonthOverview]
	cacheManager  *cache.Manager
	shutdownOnce  sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Ready == nil {
		opts.Ready = func(context.Context) error { return nil }
	}
	if opts.CycleCount < 1 {
		opts.CycleCount = 6
	}

	s := &Server{
		store:         opts.Store,
		reports:       opts.Reports,
		ready:         opts.Ready,
		logger:        opts.Logger.WithComponent(log.ComponentHTTP),
		now:           opts.Now,
		cycleCount:    opts.CycleCount,
		startedAt:     opts.Now(),
		rateLimiter:   newRateLimiter(writesPerMin),
		metrics:       &securityMetrics{},
		overviewCache: cache.NewLRUCache[core.MonthOverview](100, 5*time.Minute),
		cacheManager:  cache.NewManager(opts.Logger.WithComponent(log.ComponentHTTP)),
	}
	s.cacheManager.Register(s.overviewCache)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/configs", s.handleListConfigs)
	mux.HandleFunc("POST /api/configs", s.handleSaveConfig)
	mux.HandleFunc("DELETE /api/configs/{id}", s.handleDeactivateConfig)
	mux.HandleFunc("POST /api/transactions", s.handleAddTransaction)

	mux.HandleFunc("GET /api/overview", s.handleMonthOverview)
	mux.HandleFunc("GET /api/weeks", s.handleWeeklyTotals)
	mux.HandleFunc("GET /api/current", s.handleCurrentTotals)
	mux.HandleFunc("GET /api/cycles", s.handleCardCycles)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           log.RequestMiddleware(opts.Logger, requestID)(s.withSecurity(mux)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Start launches background cleanup loops. Call Shutdown to stop them.
func (s *Server) Start() {
	s.cacheManager.StartCleanup(10 * time.Minute)
	s.rateLimiter.startCleanup(5 * time.Minute)
}

// withSecurity adds security headers, rejects scanner traffic and rate limits
// writes per client IP.
func (s *Server) withSecurity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setSecurityHeaders(w.Header())
		logger := log.FromContext(r.Context())
		clientIP := extractClientIP(r)

		if detectSuspiciousRequest(r, s.metrics) {
			logger.WarnContext(r.Context(), "Suspicious request blocked", "client_ip", clientIP, log.FieldPath, r.URL.Path)
			s.writeError(w, r, http.StatusBadRequest, "request rejected")
			return
		}

		if r.Method != http.MethodGet && r.Method != http.MethodHead && !s.rateLimiter.allow(clientIP, s.metrics) {
			logger.WarnContext(r.Context(), "Rate limit exceeded", "client_ip", clientIP, log.FieldMethod, r.Method)
			w.Header().Set("Retry-After", "60")
			s.writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeError(w http.ResponseWriter, _ *http.Request, status int, msg string) {
	ErrorResponse(status, msg, w.Header().Get("X-Request-ID")).Write(w)
}

// fail logs err and answers with the status it maps to. Server errors hide
// their details from the client.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	logger := log.FromContext(r.Context())
	fields := log.NewFields().WithOperation(op).WithError(err)
	if status >= http.StatusInternalServerError {
		logger.Fields(r.Context(), slog.LevelError, "Request failed", fields)
		s.writeError(w, r, status, "internal error")
		return
	}
	logger.Fields(r.Context(), slog.LevelInfo, "Request rejected", fields)
	s.writeError(w, r, status, err.Error())
}

func (s *Server) today(r *http.Request) (core.Date, error) {
	return ParseToday(r.URL.Query(), s.now())
}

// Shutdown stops background loops and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	if err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
