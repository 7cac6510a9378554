package memory

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"billcycle/internal/core"
)

type seedFile struct {
	Cards        []seedCard        `yaml:"cards"`
	Transactions []seedTransaction `yaml:"transactions"`
}

type seedCard struct {
	ID          string `yaml:"id"`
	Method      string `yaml:"method"`
	Alias       string `yaml:"alias"`
	Default     bool   `yaml:"default"`
	WithdrawDay int    `yaml:"withdraw_day"`
	Active      *bool  `yaml:"active"`
}

type seedTransaction struct {
	Date        string `yaml:"date"`
	Method      string `yaml:"method"`
	Card        string `yaml:"card"`
	DelayDays   int    `yaml:"delay_days"`
	Amount      string `yaml:"amount"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
}

// NewFromFile returns a store seeded from a YAML file. A missing file yields
// an empty store.
func NewFromFile(path string) (*Store, error) {
	s := New()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	if err := s.Seed(data); err != nil {
		return nil, fmt.Errorf("seed %s: %w", path, err)
	}
	return s, nil
}

// Seed loads cards and transactions from YAML. Cards default to active.
func (s *Store) Seed(data []byte) error {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	ctx := context.Background()

	for i, c := range f.Cards {
		active := true
		if c.Active != nil {
			active = *c.Active
		}
		cfg := core.PaymentMethodConfig{
			ID:          c.ID,
			Method:      core.PaymentMethod(c.Method),
			Alias:       c.Alias,
			IsDefault:   c.Default,
			WithdrawDay: c.WithdrawDay,
			Active:      active,
		}
		if _, err := s.SaveConfig(ctx, cfg); err != nil {
			return fmt.Errorf("card %d: %w", i+1, err)
		}
	}

	for i, t := range f.Transactions {
		date, err := core.ParseDate(t.Date)
		if err != nil {
			return fmt.Errorf("transaction %d: %w", i+1, err)
		}
		cents, err := core.ParseDecimalToCents(t.Amount)
		if err != nil {
			return fmt.Errorf("transaction %d: %w", i+1, err)
		}
		tx := core.Transaction{
			Date:             date,
			Method:           core.PaymentMethod(t.Method),
			ConfigID:         t.Card,
			BillingDelayDays: t.DelayDays,
			Amount:           core.Money{Cents: cents},
			Description:      t.Description,
			Category:         t.Category,
		}
		if _, err := s.AddTransaction(ctx, tx); err != nil {
			return fmt.Errorf("transaction %d: %w", i+1, err)
		}
	}
	return nil
}
