package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"billcycle/internal/core"
	"billcycle/internal/ledger/memory"
	"billcycle/internal/services"
)

var fixedNow = time.Date(2024, time.September, 15, 10, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, ready func(context.Context) error) *Server {
	t.Helper()
	store := memory.New()
	ctx := context.Background()

	for _, c := range []core.PaymentMethodConfig{
		{ID: "visa", Method: core.Credit, Alias: "Visa", WithdrawDay: 20, IsDefault: true, Active: true},
		{ID: "wallet", Method: core.Cash, Alias: "Wallet", Active: true},
	} {
		if _, err := store.SaveConfig(ctx, c); err != nil {
			t.Fatalf("SaveConfig() error = %v", err)
		}
	}
	for _, tx := range []core.Transaction{
		{Date: core.NewDate(2024, 8, 25), Method: core.Credit, ConfigID: "visa", Amount: core.Money{Cents: 1000}, Description: "Groceries", Category: "Food"},
		{Date: core.NewDate(2024, 9, 5), Method: core.Cash, Amount: core.Money{Cents: 500}, Description: "Espresso", Category: "Coffee"},
	} {
		if _, err := store.AddTransaction(ctx, tx); err != nil {
			t.Fatalf("AddTransaction() error = %v", err)
		}
	}

	return NewServer(Options{
		Addr:       ":0",
		Store:      store,
		Reports:    services.NewReportService(store, store, 120),
		Ready:      ready,
		CycleCount: 2,
		Now:        func() time.Time { return fixedNow },
	})
}

func do(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t, nil)
	for _, path := range []string{"/healthz", "/readyz"} {
		if rr := do(t, srv, http.MethodGet, path, ""); rr.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rr.Code)
		}
	}

	down := newTestServer(t, func(context.Context) error { return errors.New("db locked") })
	rr := do(t, down, http.MethodGet, "/readyz", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("/readyz status = %d, want 503", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "not_ready") {
		t.Errorf("/readyz body = %s, want not_ready", rr.Body.String())
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	srv := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	if got := rr.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("X-Request-ID = %q, want abc-123", got)
	}
}

func TestMonthOverview_CachedUntilWrite(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := do(t, srv, http.MethodGet, "/api/overview?year=2024&month=9", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("overview status = %d, body %s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("X-Cache") != "MISS" {
		t.Errorf("first X-Cache = %q, want MISS", rr.Header().Get("X-Cache"))
	}
	var ov core.MonthOverview
	if err := json.NewDecoder(rr.Body).Decode(&ov); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ov.Total.Cents != 1500 || ov.Count != 2 {
		t.Errorf("overview total = %d count = %d, want 1500 and 2", ov.Total.Cents, ov.Count)
	}

	if rr := do(t, srv, http.MethodGet, "/api/overview?year=2024&month=9", ""); rr.Header().Get("X-Cache") != "HIT" {
		t.Errorf("second X-Cache = %q, want HIT", rr.Header().Get("X-Cache"))
	}

	body := `{"date":"2024-09-10","method":"cash","amount":"4,50","description":"Lunch"}`
	if rr := do(t, srv, http.MethodPost, "/api/transactions", body); rr.Code != http.StatusCreated {
		t.Fatalf("add transaction status = %d, body %s", rr.Code, rr.Body.String())
	}

	rr = do(t, srv, http.MethodGet, "/api/overview?year=2024&month=9", "")
	if rr.Header().Get("X-Cache") != "MISS" {
		t.Errorf("X-Cache after write = %q, want MISS", rr.Header().Get("X-Cache"))
	}
	ov = core.MonthOverview{}
	if err := json.NewDecoder(rr.Body).Decode(&ov); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ov.Total.Cents != 1950 {
		t.Errorf("overview total after write = %d, want 1950", ov.Total.Cents)
	}
}

func TestAddTransaction_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "malformed json", body: `{"date":`, want: http.StatusBadRequest},
		{name: "unknown field", body: `{"date":"2024-09-10","foo":1}`, want: http.StatusBadRequest},
		{name: "bad date", body: `{"date":"10/09/2024","method":"cash","amount":"1","description":"x"}`, want: http.StatusBadRequest},
		{name: "bad amount", body: `{"date":"2024-09-10","method":"cash","amount":"-3","description":"x"}`, want: http.StatusUnprocessableEntity},
		{name: "card on cash", body: `{"date":"2024-09-10","method":"cash","config_id":"visa","amount":"3","description":"x"}`, want: http.StatusUnprocessableEntity},
		{name: "negative delay", body: `{"date":"2024-09-10","method":"cheque","billing_delay_days":-1,"amount":"3","description":"x"}`, want: http.StatusUnprocessableEntity},
	}

	srv := newTestServer(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, http.MethodPost, "/api/transactions", tt.body)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rr.Code, tt.want, rr.Body.String())
			}
			var body ErrorBody
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil || body.Error == "" {
				t.Errorf("error body = %+v, decode err %v", body, err)
			}
		})
	}
}

func TestConfigs_SaveListDeactivate(t *testing.T) {
	srv := newTestServer(t, nil)

	for _, body := range []string{
		`{"method":"bitcoin","alias":"x"}`,
		`{"method":"credit","alias":"x","withdraw_day":45}`,
		`{"method":"cash","alias":"x","withdraw_day":3}`,
	} {
		if rr := do(t, srv, http.MethodPost, "/api/configs", body); rr.Code != http.StatusUnprocessableEntity {
			t.Errorf("POST %s status = %d, want 422", body, rr.Code)
		}
	}

	rr := do(t, srv, http.MethodPost, "/api/configs", `{"method":"credit","alias":"Amex","withdraw_day":28,"is_default":true}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("save status = %d, body %s", rr.Code, rr.Body.String())
	}
	var saved core.PaymentMethodConfig
	if err := json.NewDecoder(rr.Body).Decode(&saved); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if saved.ID == "" || !saved.Active {
		t.Errorf("saved = %+v, want an ID and active", saved)
	}
	if saved.WithdrawDay != 28 {
		t.Errorf("saved.WithdrawDay = %d, want 28", saved.WithdrawDay)
	}

	rr = do(t, srv, http.MethodGet, "/api/configs", "")
	var list []core.PaymentMethodConfig
	if err := json.NewDecoder(rr.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	defaults := 0
	for _, c := range list {
		if c.IsDefault {
			defaults++
		}
	}
	if len(list) != 3 || defaults != 1 {
		t.Errorf("list has %d configs and %d defaults, want 3 and 1", len(list), defaults)
	}

	if rr := do(t, srv, http.MethodDelete, "/api/configs/"+saved.ID, ""); rr.Code != http.StatusNoContent {
		t.Errorf("deactivate status = %d, want 204", rr.Code)
	}
	if rr := do(t, srv, http.MethodDelete, "/api/configs/missing", ""); rr.Code != http.StatusNotFound {
		t.Errorf("deactivate unknown status = %d, want 404", rr.Code)
	}
}

func TestCardCycles(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := do(t, srv, http.MethodGet, "/api/cycles", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	var cards []core.CardCycles
	if err := json.NewDecoder(rr.Body).Decode(&cards); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cards) != 1 || cards[0].Card.ID != "visa" {
		t.Fatalf("cards = %+v, want only visa", cards)
	}
	cycles := cards[0].Cycles
	if len(cycles) != 2 {
		t.Fatalf("len(cycles) = %d, want 2", len(cycles))
	}
	last := cycles[1]
	if !last.Cycle.Start.Equal(core.NewDate(2024, 8, 21)) || !last.Cycle.End.Equal(core.NewDate(2024, 9, 20)) {
		t.Errorf("current cycle = %v..%v, want 2024-08-21..2024-09-20", last.Cycle.Start, last.Cycle.End)
	}
	if last.Spent.Cents != 1000 || last.Count != 1 {
		t.Errorf("current cycle spent = %d count = %d, want 1000 and 1", last.Spent.Cents, last.Count)
	}

	if rr := do(t, srv, http.MethodGet, "/api/cycles?count=500", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("oversized count status = %d, want 400", rr.Code)
	}
}

func TestWeeklyAndCurrent(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := do(t, srv, http.MethodGet, "/api/weeks?year=2024&month=9&week_start=monday", "")
	var weeks []core.WeekTotal
	if err := json.NewDecoder(rr.Body).Decode(&weeks); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(weeks) != 6 {
		t.Errorf("len(weeks) = %d, want 6", len(weeks))
	}

	if rr := do(t, srv, http.MethodGet, "/api/weeks?week_start=funday", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("bad week_start status = %d, want 400", rr.Code)
	}

	rr = do(t, srv, http.MethodGet, "/api/current?today=2024-09-15", "")
	var cur core.CurrentTotals
	if err := json.NewDecoder(rr.Body).Decode(&cur); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cur.Total.Cents != 1500 || cur.Count != 2 {
		t.Errorf("current = %d/%d, want 1500/2", cur.Total.Cents, cur.Count)
	}
}

func TestSecurity_BlocksProbes(t *testing.T) {
	srv := newTestServer(t, nil)

	if rr := do(t, srv, http.MethodGet, "/.env", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("probe status = %d, want 400", rr.Code)
	}
	rr := do(t, srv, http.MethodGet, "/metrics", "")
	if !strings.Contains(rr.Body.String(), "billcycle_suspicious_requests_total 1") {
		t.Errorf("metrics = %s, want one suspicious request", rr.Body.String())
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Errorf("missing security headers")
	}
}
