package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Cash   PaymentMethod = "cash"
	Credit PaymentMethod = "credit"
	Cheque PaymentMethod = "cheque"
)

const (
	MinWithdrawDay = 1
	MaxWithdrawDay = 31
)

type (
	PaymentMethod string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// PaymentMethodConfig is a configured payment instrument. Only credit
	// configs carry a withdraw day; zero means "not configured".
	PaymentMethodConfig struct {
		ID          string        `json:"id"`
		Method      PaymentMethod `json:"method"`
		Alias       string        `json:"alias"`
		IsDefault   bool          `json:"is_default"`
		WithdrawDay int           `json:"withdraw_day,omitempty"`
		Active      bool          `json:"active"`
	}

	Transaction struct {
		ID               string        `json:"id"`
		Date             Date          `json:"date"`
		Method           PaymentMethod `json:"method"`
		ConfigID         string        `json:"config_id,omitempty"`          // card reference, credit only
		BillingDelayDays int           `json:"billing_delay_days,omitempty"` // 0 means settled on the purchase date
		Amount           Money         `json:"amount_cents"`
		Description      string        `json:"description"`
		Category         string        `json:"category,omitempty"`
	}

	// BillingCycle is a derived statement period. ID is positional within the
	// series that produced it and is not a durable key.
	BillingCycle struct {
		ID       int    `json:"id"`
		CardID   string `json:"card_id"`
		CardName string `json:"card_name"`
		Start    Date   `json:"start"`
		End      Date   `json:"end"` // inclusive
		Due      Date   `json:"due"`
	}
)

var (
	ErrInvalidDay           = errors.New("invalid day")
	ErrInvalidMonth         = errors.New("invalid month")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrEmptyDescription     = errors.New("empty description")
	ErrEmptyAlias           = errors.New("empty alias")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidWithdrawDay   = errors.New("invalid withdraw day")
	ErrUnexpectedCardRef    = errors.New("card reference on non-credit transaction")
	ErrNegativeDelay        = errors.New("negative billing delay")
)

const dateLayout = "2006-01-02"

// NewDate creates a new Date from year, month and day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the time of day from t, keeping the calendar day in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month as a number in [1,12].
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year.
func (d Date) Year() int {
	return d.Time.Year()
}

// AddDays returns the date n calendar days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// SameMonth reports whether both dates fall in the same calendar month.
func (d Date) SameMonth(o Date) bool {
	return d.Year() == o.Year() && d.Month() == o.Month()
}

func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }
func (d Date) After(o Date) bool  { return d.Time.After(o.Time) }
func (d Date) Equal(o Date) bool  { return d.Time.Equal(o.Time) }

// IsEmpty returns true if the date is zero (for optional dates)
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (p PaymentMethod) IsValid() bool {
	switch p {
	case Cash, Credit, Cheque:
		return true
	default:
		return false
	}
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ClampWithdrawDay forces a configured withdraw day into [1,31]. Zero stays
// zero (not configured).
func ClampWithdrawDay(day int) int {
	switch {
	case day == 0:
		return 0
	case day < MinWithdrawDay:
		return MinWithdrawDay
	case day > MaxWithdrawDay:
		return MaxWithdrawDay
	default:
		return day
	}
}

// Normalize applies the config invariants that legacy rows may violate:
// non-credit kinds carry no withdraw day, credit withdraw days are clamped.
func (c PaymentMethodConfig) Normalize() PaymentMethodConfig {
	if c.Method != Credit {
		c.WithdrawDay = 0
		return c
	}
	c.WithdrawDay = ClampWithdrawDay(c.WithdrawDay)
	return c
}

// HasWithdrawDay reports whether the config defines a statement cycle.
func (c PaymentMethodConfig) HasWithdrawDay() bool {
	return c.Method == Credit && c.WithdrawDay >= MinWithdrawDay && c.WithdrawDay <= MaxWithdrawDay
}

// DisplayName is the alias, or the method kind when no alias was given.
func (c PaymentMethodConfig) DisplayName() string {
	if alias := strings.TrimSpace(c.Alias); alias != "" {
		return alias
	}
	return string(c.Method)
}

func (c PaymentMethodConfig) Validate() error {
	if !c.Method.IsValid() {
		return ErrInvalidPaymentMethod
	}
	if strings.TrimSpace(c.Alias) == "" {
		return ErrEmptyAlias
	}
	if len(c.Alias) > 100 {
		return errors.New("alias too long (max 100 characters)")
	}
	if c.Method != Credit && c.WithdrawDay != 0 {
		return fmt.Errorf("%w: only credit configs have one", ErrInvalidWithdrawDay)
	}
	if c.WithdrawDay < 0 || c.WithdrawDay > MaxWithdrawDay {
		return ErrInvalidWithdrawDay
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.Method.IsValid() {
		return ErrInvalidPaymentMethod
	}
	if t.ConfigID != "" && t.Method != Credit {
		return ErrUnexpectedCardRef
	}
	if t.BillingDelayDays < 0 {
		return ErrNegativeDelay
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return t.Amount.Validate()
}
