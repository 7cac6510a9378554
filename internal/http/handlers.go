package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"billcycle/internal/core"
	"billcycle/internal/log"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(map[string]any{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    s.now().Sub(s.startedAt).Round(time.Second).String(),
	}).Write(w)
}

// handleReady checks that storage answers
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]any{}
	if err := s.ready(ctx); err != nil {
		checks["storage"] = fmt.Sprintf("failed: %v", err)
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["storage"] = "ok"
	}
	checks["overview_cache_entries"] = s.overviewCache.Size()
	checks["rate_limited_clients"] = s.rateLimiter.ActiveClients()

	NewJSONResponse().Status(code).Data(map[string]any{
		"status":    status,
		"timestamp": s.now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleMetrics exposes counters in plain text
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	var b strings.Builder
	fmt.Fprintf(&b, "# TYPE billcycle_rate_limit_hits_total counter\n")
	fmt.Fprintf(&b, "billcycle_rate_limit_hits_total %d\n", atomic.LoadInt64(&s.metrics.rateLimitHits))
	fmt.Fprintf(&b, "# TYPE billcycle_suspicious_requests_total counter\n")
	fmt.Fprintf(&b, "billcycle_suspicious_requests_total %d\n", atomic.LoadInt64(&s.metrics.suspiciousRequests))
	fmt.Fprintf(&b, "# TYPE billcycle_overview_cache_entries gauge\n")
	fmt.Fprintf(&b, "billcycle_overview_cache_entries %d\n", s.overviewCache.Size())
	_, _ = w.Write([]byte(b.String()))
}

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	configs, err := s.store.ListConfigs(ctx)
	if err != nil {
		s.fail(w, r, log.OpList, err)
		return
	}
	if configs == nil {
		configs = []core.PaymentMethodConfig{}
	}
	NewJSONResponse().Data(configs).Write(w)
}

type configRequest struct {
	ID          string `json:"id"`
	Method      string `json:"method"`
	Alias       string `json:"alias"`
	IsDefault   bool   `json:"is_default"`
	WithdrawDay int    `json:"withdraw_day"`
	Active      *bool  `json:"active"`
}

func (s *Server) handleSaveConfig(w http.ResponseWriter, r *http.Request) {
	var req configRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	cfg := core.PaymentMethodConfig{
		ID:          sanitizeInput(req.ID),
		Method:      core.PaymentMethod(strings.ToLower(sanitizeInput(req.Method))),
		Alias:       sanitizeInput(req.Alias),
		IsDefault:   req.IsDefault,
		WithdrawDay: req.WithdrawDay,
		Active:      active,
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	saved, err := s.store.SaveConfig(ctx, cfg)
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	s.overviewCache.Clear()

	log.FromContext(ctx).Fields(ctx, slog.LevelInfo, "Payment method config saved",
		log.NewFields().WithOperation(log.OpCreate).WithCard(saved))
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/configs/"+saved.ID).
		Data(saved).
		Write(w)
}

func (s *Server) handleDeactivateConfig(w http.ResponseWriter, r *http.Request) {
	id := sanitizeInput(r.PathValue("id"))

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	if err := s.store.DeactivateConfig(ctx, id); err != nil {
		s.fail(w, r, log.OpDeactivate, err)
		return
	}
	s.overviewCache.Clear()
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

type transactionRequest struct {
	Date             string `json:"date"`
	Method           string `json:"method"`
	ConfigID         string `json:"config_id"`
	BillingDelayDays int    `json:"billing_delay_days"`
	Amount           string `json:"amount"`
	Description      string `json:"description"`
	Category         string `json:"category"`
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}

	date, err := core.ParseDate(req.Date)
	if err != nil {
		s.fail(w, r, log.OpCreate, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		s.fail(w, r, log.OpCreate, fmt.Errorf("%w: %v", core.ErrInvalidAmount, err))
		return
	}
	tx := core.Transaction{
		Date:             date,
		Method:           core.PaymentMethod(strings.ToLower(sanitizeInput(req.Method))),
		ConfigID:         sanitizeInput(req.ConfigID),
		BillingDelayDays: req.BillingDelayDays,
		Amount:           core.Money{Cents: cents},
		Description:      sanitizeInput(req.Description),
		Category:         sanitizeInput(req.Category),
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	saved, err := s.store.AddTransaction(ctx, tx)
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	s.overviewCache.Clear()
	NewJSONResponse().Status(http.StatusCreated).Data(saved).Write(w)
}
