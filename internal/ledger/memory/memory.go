package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"billcycle/internal/core"
	"billcycle/internal/ledger"
)

type Store struct {
	mu      sync.Mutex
	configs []core.PaymentMethodConfig
	items   []core.Transaction
}

var _ ledger.Store = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// SaveConfig stores cfg, replacing any config with the same ID. A new default
// config clears the default flag on every other config.
func (s *Store) SaveConfig(_ context.Context, cfg core.PaymentMethodConfig) (core.PaymentMethodConfig, error) {
	if err := cfg.Validate(); err != nil {
		return core.PaymentMethodConfig{}, err
	}
	cfg = cfg.Normalize()
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cfg.IsDefault {
		for i := range s.configs {
			s.configs[i].IsDefault = false
		}
	}
	for i := range s.configs {
		if s.configs[i].ID == cfg.ID {
			s.configs[i] = cfg
			return cfg, nil
		}
	}
	s.configs = append(s.configs, cfg)
	return cfg, nil
}

func (s *Store) DeactivateConfig(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.configs {
		if s.configs[i].ID == id {
			s.configs[i].Active = false
			s.configs[i].IsDefault = false
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ledger.ErrConfigNotFound, id)
}

func (s *Store) ListConfigs(_ context.Context) ([]core.PaymentMethodConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.PaymentMethodConfig(nil), s.configs...), nil
}

// AddTransaction stores tx with a fresh ID when it has none.
func (s *Store) AddTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	tx.Date = core.DateOf(tx.Date.Time)
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, tx)
	return tx, nil
}

// MaxBillingDelay implements ledger.TransactionLister.
func (s *Store) MaxBillingDelay(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	longest := 0
	for _, tx := range s.items {
		longest = max(longest, tx.BillingDelayDays)
	}
	return longest, nil
}

func (s *Store) ListTransactions(_ context.Context, from, to core.Date) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, tx := range s.items {
		if tx.Date.Before(from) || tx.Date.After(to) {
			continue
		}
		out = append(out, tx)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
