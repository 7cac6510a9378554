// Package worker runs the periodic statement check.
package worker

import (
	"context"
	"log/slog"
	"time"

	"billcycle/internal/core"
	"billcycle/internal/log"
)

// Notifier publishes statements that closed on or before today.
type Notifier interface {
	Notify(ctx context.Context, today core.Date) (int, error)
}

// StatementWorker calls the notifier once at start and then on every tick.
type StatementWorker struct {
	notifier Notifier
	interval time.Duration
	now      func() time.Time
	logger   *log.Logger
}

func NewStatementWorker(notifier Notifier, interval time.Duration, logger *log.Logger) *StatementWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &StatementWorker{
		notifier: notifier,
		interval: interval,
		now:      time.Now,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// Run blocks until ctx is cancelled. Failed checks are logged and retried on
// the next tick.
func (w *StatementWorker) Run(ctx context.Context) error {
	w.logger.Info("Statement worker started", "interval", w.interval)

	w.check(ctx, w.now())

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Statement worker stopped")
			return ctx.Err()
		case now := <-ticker.C:
			w.check(ctx, now)
		}
	}
}

func (w *StatementWorker) check(ctx context.Context, now time.Time) {
	start := time.Now()
	sent, err := w.notifier.Notify(ctx, core.DateOf(now))
	fields := log.NewFields().
		WithOperation(log.OpNotify).
		With(log.FieldCount, sent).
		With(log.FieldDuration, time.Since(start).Milliseconds())
	if err != nil {
		w.logger.Fields(ctx, slog.LevelError, "Statement check failed", fields.WithError(err))
		return
	}
	w.logger.Fields(ctx, slog.LevelInfo, "Statement check complete",
		fields.With("next_check", now.Add(w.interval).Format("15:04:05")))
}
