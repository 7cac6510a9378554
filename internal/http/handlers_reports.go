package http

import (
	"context"
	"fmt"
	"net/http"

	"billcycle/internal/log"
)

func (s *Server) handleMonthOverview(w http.ResponseWriter, r *http.Request) {
	today, err := s.today(r)
	if err != nil {
		s.fail(w, r, log.OpReport, err)
		return
	}
	params, err := ParseMonthParams(r.URL.Query(), today)
	if err != nil {
		s.fail(w, r, log.OpReport, err)
		return
	}

	key := fmt.Sprintf("%04d-%02d", params.Year, params.Month)
	if ov, ok := s.overviewCache.Get(key); ok {
		NewJSONResponse().Header("X-Cache", "HIT").Data(ov).Write(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	ov, err := s.reports.MonthOverview(ctx, params.Year, params.Month)
	if err != nil {
		s.fail(w, r, log.OpReport, err)
		return
	}
	s.overviewCache.Set(key, ov)
	NewJSONResponse().Header("X-Cache", "MISS").Data(ov).Write(w)
}

func (s *Server) handleWeeklyTotals(w http.ResponseWriter, r *http.Request) {
	today, err := s.today(r)
	if err != nil {
		s.fail(w, r, log.OpReport, err)
		return
	}
	params, err := ParseMonthParams(r.URL.Query(), today)
	if err != nil {
		s.fail(w, r, log.OpReport, err)
		return
	}
	weekStart, err := ParseWeekStart(r.URL.Query())
	if err != nil {
		s.fail(w, r, log.OpReport, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	weeks, err := s.reports.WeeklyTotals(ctx, params.Year, params.Month, weekStart)
	if err != nil {
		s.fail(w, r, log.OpReport, err)
		return
	}
	NewJSONResponse().Data(weeks).Write(w)
}

func (s *Server) handleCurrentTotals(w http.ResponseWriter, r *http.Request) {
	today, err := s.today(r)
	if err != nil {
		s.fail(w, r, log.OpReport, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	totals, err := s.reports.CurrentTotals(ctx, today)
	if err != nil {
		s.fail(w, r, log.OpReport, err)
		return
	}
	NewJSONResponse().Data(totals).Write(w)
}

func (s *Server) handleCardCycles(w http.ResponseWriter, r *http.Request) {
	today, err := s.today(r)
	if err != nil {
		s.fail(w, r, log.OpReport, err)
		return
	}
	count, err := ParseCount(r.URL.Query(), s.cycleCount, maxCycleCount)
	if err != nil {
		s.fail(w, r, log.OpReport, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	cards, err := s.reports.CardCycles(ctx, count, today)
	if err != nil {
		s.fail(w, r, log.OpReport, err)
		return
	}
	NewJSONResponse().Data(cards).Write(w)
}
