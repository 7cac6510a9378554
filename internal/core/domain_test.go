package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateOfDropsTimeOfDay(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	// 23:30 on Oct 28 in UTC+9 is still Oct 28 locally.
	got := DateOf(time.Date(2024, 10, 28, 23, 30, 0, 0, loc))
	want := NewDate(2024, 10, 28)
	if !got.Equal(want) {
		t.Errorf("DateOf() = %v, want %v", got, want)
	}
}

func TestDateJSON(t *testing.T) {
	b, err := json.Marshal(NewDate(2024, 2, 29))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2024-02-29"` {
		t.Fatalf("unexpected json %s", b)
	}
	var d Date
	if err := json.Unmarshal([]byte(`"2023-01-30"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !d.Equal(NewDate(2023, 1, 30)) {
		t.Fatalf("unexpected date %v", d)
	}
	if err := json.Unmarshal([]byte(`"2023-02-30"`), &d); err == nil {
		t.Fatalf("expected error for invalid date")
	}
}

func TestDateSameMonth(t *testing.T) {
	if !NewDate(2024, 9, 1).SameMonth(NewDate(2024, 9, 30)) {
		t.Error("expected same month")
	}
	if NewDate(2024, 9, 1).SameMonth(NewDate(2023, 9, 1)) {
		t.Error("different years must not match")
	}
}

func TestClampWithdrawDay(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 0},
		{-4, 1},
		{1, 1},
		{20, 20},
		{31, 31},
		{45, 31},
	}
	for _, tt := range tests {
		if got := ClampWithdrawDay(tt.in); got != tt.want {
			t.Errorf("ClampWithdrawDay(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestPaymentMethodConfigNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   PaymentMethodConfig
		want int
	}{
		{"cash drops withdraw day", PaymentMethodConfig{Method: Cash, WithdrawDay: 12}, 0},
		{"cheque drops withdraw day", PaymentMethodConfig{Method: Cheque, WithdrawDay: 3}, 0},
		{"credit clamps high", PaymentMethodConfig{Method: Credit, WithdrawDay: 40}, 31},
		{"credit clamps low", PaymentMethodConfig{Method: Credit, WithdrawDay: -1}, 1},
		{"credit unset stays unset", PaymentMethodConfig{Method: Credit}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			if got.WithdrawDay != tt.want {
				t.Errorf("Normalize().WithdrawDay = %d, want %d", got.WithdrawDay, tt.want)
			}
		})
	}
}

func TestPaymentMethodConfigValidate(t *testing.T) {
	good := PaymentMethodConfig{Method: Credit, Alias: "Visa", WithdrawDay: 20, Active: true}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	tests := []struct {
		name string
		cfg  PaymentMethodConfig
		want error
	}{
		{"unknown method", PaymentMethodConfig{Method: "bitcoin", Alias: "x"}, ErrInvalidPaymentMethod},
		{"empty alias", PaymentMethodConfig{Method: Cash, Alias: "  "}, ErrEmptyAlias},
		{"withdraw day on cash", PaymentMethodConfig{Method: Cash, Alias: "Wallet", WithdrawDay: 5}, ErrInvalidWithdrawDay},
		{"withdraw day out of range", PaymentMethodConfig{Method: Credit, Alias: "Visa", WithdrawDay: 32}, ErrInvalidWithdrawDay},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Date:        NewDate(2025, 1, 1),
		Method:      Credit,
		ConfigID:    "card-1",
		Amount:      Money{Cents: 100},
		Description: "ok",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Date: Date{}, Method: Cash, Amount: Money{Cents: 1}, Description: "a"},
		{Date: NewDate(2025, 1, 1), Method: "barter", Amount: Money{Cents: 1}, Description: "a"},
		{Date: NewDate(2025, 1, 1), Method: Cash, ConfigID: "card-1", Amount: Money{Cents: 1}, Description: "a"},
		{Date: NewDate(2025, 1, 1), Method: Cheque, BillingDelayDays: -3, Amount: Money{Cents: 1}, Description: "a"},
		{Date: NewDate(2025, 1, 1), Method: Cash, Amount: Money{Cents: 1}, Description: ""},
		{Date: NewDate(2025, 1, 1), Method: Cash, Amount: Money{Cents: 0}, Description: "a"},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}
