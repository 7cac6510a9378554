package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"billcycle/internal/core"
	"billcycle/internal/ledger"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ ledger.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("SQLite schema ready", "path", dbPath, "schema_version", version)

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping implements the readiness check.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

const upsertConfig = `
INSERT INTO payment_method_configs (id, method, alias, is_default, withdraw_day, active)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    method = excluded.method,
    alias = excluded.alias,
    is_default = excluded.is_default,
    withdraw_day = excluded.withdraw_day,
    active = excluded.active,
    updated_at = CURRENT_TIMESTAMP`

// SaveConfig implements ledger.ConfigWriter. Saving a default config clears
// the previous default in the same transaction.
func (r *SQLiteRepository) SaveConfig(ctx context.Context, cfg core.PaymentMethodConfig) (core.PaymentMethodConfig, error) {
	if err := cfg.Validate(); err != nil {
		return core.PaymentMethodConfig{}, err
	}
	cfg = cfg.Normalize()
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.PaymentMethodConfig{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if cfg.IsDefault {
		if _, err := tx.ExecContext(ctx,
			`UPDATE payment_method_configs SET is_default = 0, updated_at = CURRENT_TIMESTAMP WHERE is_default = 1 AND id <> ?`,
			cfg.ID); err != nil {
			return core.PaymentMethodConfig{}, fmt.Errorf("clear default config: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, upsertConfig,
		cfg.ID, string(cfg.Method), cfg.Alias, boolToInt(cfg.IsDefault), cfg.WithdrawDay, boolToInt(cfg.Active)); err != nil {
		return core.PaymentMethodConfig{}, fmt.Errorf("save config: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.PaymentMethodConfig{}, fmt.Errorf("commit transaction: %w", err)
	}

	slog.InfoContext(ctx, "Payment method config saved",
		"card_id", cfg.ID,
		"method", cfg.Method,
		"withdraw_day", cfg.WithdrawDay,
		"is_default", cfg.IsDefault)

	return cfg, nil
}

// DeactivateConfig implements ledger.ConfigWriter. Rows are kept so past
// transactions still resolve their card.
func (r *SQLiteRepository) DeactivateConfig(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE payment_method_configs SET active = 0, is_default = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivate config: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate config: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ledger.ErrConfigNotFound, id)
	}

	slog.InfoContext(ctx, "Payment method config deactivated", "card_id", id)
	return nil
}

// ListConfigs implements ledger.ConfigReader. Rows pass through Normalize so
// out-of-range withdraw days never reach the billing engine.
func (r *SQLiteRepository) ListConfigs(ctx context.Context) ([]core.PaymentMethodConfig, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, method, alias, is_default, withdraw_day, active FROM payment_method_configs ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list configs: %w", err)
	}
	defer rows.Close()

	var out []core.PaymentMethodConfig
	for rows.Next() {
		var (
			cfg               core.PaymentMethodConfig
			method            string
			isDefault, active int64
			withdrawDay       int64
		)
		if err := rows.Scan(&cfg.ID, &method, &cfg.Alias, &isDefault, &withdrawDay, &active); err != nil {
			return nil, fmt.Errorf("scan config: %w", err)
		}
		cfg.Method = core.PaymentMethod(method)
		cfg.IsDefault = isDefault != 0
		cfg.Active = active != 0
		cfg.WithdrawDay = int(withdrawDay)

		normalized := cfg.Normalize()
		if normalized.WithdrawDay != cfg.WithdrawDay {
			slog.WarnContext(ctx, "Stored withdraw day out of range, clamped",
				"card_id", cfg.ID,
				"stored", cfg.WithdrawDay,
				"withdraw_day", normalized.WithdrawDay)
		}
		out = append(out, normalized)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate configs: %w", err)
	}
	return out, nil
}

// AddTransaction implements ledger.TransactionWriter.
func (r *SQLiteRepository) AddTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	t.Date = core.DateOf(t.Date.Time)
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	var configID sql.NullString
	if t.ConfigID != "" {
		configID = sql.NullString{String: t.ConfigID, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO transactions (id, purchase_date, method, config_id, billing_delay_days, amount_cents, description, category)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Date.String(), string(t.Method), configID, t.BillingDelayDays, t.Amount.Cents, t.Description, t.Category)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", t.ID,
		"date", t.Date.String(),
		"method", t.Method,
		"amount_cents", t.Amount.Cents)

	return t, nil
}

// MaxBillingDelay implements ledger.TransactionLister.
func (r *SQLiteRepository) MaxBillingDelay(ctx context.Context) (int, error) {
	var longest int64
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(billing_delay_days), 0) FROM transactions`).Scan(&longest)
	if err != nil {
		return 0, fmt.Errorf("max billing delay: %w", err)
	}
	return int(longest), nil
}

// ListTransactions implements ledger.TransactionLister.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, from, to core.Date) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, purchase_date, method, config_id, billing_delay_days, amount_cents, description, category
FROM transactions
WHERE purchase_date BETWEEN ? AND ?
ORDER BY purchase_date, rowid`, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			t        core.Transaction
			date     string
			method   string
			configID sql.NullString
			delay    int64
		)
		if err := rows.Scan(&t.ID, &date, &method, &configID, &delay, &t.Amount.Cents, &t.Description, &t.Category); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		d, err := core.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", t.ID, err)
		}
		t.Date = d
		t.Method = core.PaymentMethod(method)
		t.ConfigID = configID.String
		t.BillingDelayDays = int(delay)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
