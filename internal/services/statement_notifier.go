package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"billcycle/internal/amqp"
	"billcycle/internal/cache"
	"billcycle/internal/core"
	"billcycle/internal/log"
)

// StatementPublisher delivers statement-closed notifications.
type StatementPublisher interface {
	PublishStatementClosed(ctx context.Context, msg *amqp.StatementClosedMessage) error
}

// StatementNotifier announces each card's most recently closed statement.
type StatementNotifier struct {
	reports   *ReportService
	publisher StatementPublisher
	sent      cache.Cache[time.Time]
	now       func() time.Time
}

func NewStatementNotifier(reports *ReportService, publisher StatementPublisher, sent cache.Cache[time.Time]) *StatementNotifier {
	return &StatementNotifier{
		reports:   reports,
		publisher: publisher,
		sent:      sent,
		now:       time.Now,
	}
}

// Notify publishes the cycle preceding the one that contains today, once per
// card and cycle. It returns how many messages were published; failed
// publishes are retried on the next call.
func (n *StatementNotifier) Notify(ctx context.Context, today core.Date) (int, error) {
	logger := log.FromContext(ctx).WithComponent(log.ComponentNotifier)
	if n.publisher == nil {
		logger.WarnContext(ctx, "AMQP client not available, skipping statement notifications")
		return 0, nil
	}

	cards, err := n.reports.CardCycles(ctx, 2, today)
	if err != nil {
		return 0, fmt.Errorf("load card cycles: %w", err)
	}

	published := 0
	var errs []error
	for _, card := range cards {
		closed := card.Cycles[0]
		key := statementKey(closed.Cycle)
		if !n.sent.Add(key, n.now()) {
			continue
		}

		fields := log.NewFields().WithOperation(log.OpNotify).WithCard(card.Card).WithCycle(closed.Cycle)
		msg := amqp.NewStatementClosedMessage(closed, n.now())
		if err := n.publisher.PublishStatementClosed(ctx, msg); err != nil {
			n.sent.Delete(key)
			logger.Fields(ctx, slog.LevelError, "Failed to publish statement closed", fields.WithError(err))
			errs = append(errs, fmt.Errorf("card %s: %w", card.Card.ID, err))
			continue
		}
		published++
		logger.Fields(ctx, slog.LevelInfo, "Statement closed notification sent",
			fields.With(log.FieldAmountCents, closed.Spent.Cents).With(log.FieldCount, closed.Count))
	}

	return published, errors.Join(errs...)
}

func statementKey(c core.BillingCycle) string {
	return c.CardID + ":" + c.End.String()
}
