package ledger

import (
	"context"
	"errors"

	"billcycle/internal/core"
)

var ErrConfigNotFound = errors.New("payment method config not found")

// Ports for outbound adapters.
type (
	ConfigReader interface {
		// ListConfigs returns every payment method config, inactive ones included.
		ListConfigs(ctx context.Context) ([]core.PaymentMethodConfig, error)
	}

	ConfigWriter interface {
		// SaveConfig creates or replaces a config and returns it with its ID set.
		SaveConfig(ctx context.Context, cfg core.PaymentMethodConfig) (core.PaymentMethodConfig, error)
		// DeactivateConfig marks a config inactive; history stays readable.
		DeactivateConfig(ctx context.Context, id string) error
	}

	TransactionWriter interface {
		AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	}

	// TransactionLister returns transactions whose purchase date is within
	// [from, to], both inclusive, ordered by date.
	TransactionLister interface {
		ListTransactions(ctx context.Context, from, to core.Date) ([]core.Transaction, error)
		// MaxBillingDelay is the largest BillingDelayDays stored, 0 when empty.
		MaxBillingDelay(ctx context.Context) (int, error)
	}

	Store interface {
		ConfigReader
		ConfigWriter
		TransactionWriter
		TransactionLister
	}
)
