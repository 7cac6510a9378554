package amqp

import (
	"encoding/json"
	"time"

	"billcycle/internal/core"
)

// StatementClosedMessage announces that a card's billing cycle has closed.
type StatementClosedMessage struct {
	CardID           string    `json:"card_id"`
	CardName         string    `json:"card_name"`
	CycleStart       core.Date `json:"cycle_start"`
	CycleEnd         core.Date `json:"cycle_end"`
	DueDate          core.Date `json:"due_date"`
	TotalCents       int64     `json:"total_cents"`
	TransactionCount int       `json:"transaction_count"`
	Timestamp        time.Time `json:"timestamp"`
}

func NewStatementClosedMessage(s core.CycleSummary, now time.Time) *StatementClosedMessage {
	return &StatementClosedMessage{
		CardID:           s.Cycle.CardID,
		CardName:         s.Cycle.CardName,
		CycleStart:       s.Cycle.Start,
		CycleEnd:         s.Cycle.End,
		DueDate:          s.Cycle.Due,
		TotalCents:       s.Spent.Cents,
		TransactionCount: s.Count,
		Timestamp:        now,
	}
}

func (m *StatementClosedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func StatementClosedMessageFromJSON(data []byte) (*StatementClosedMessage, error) {
	var msg StatementClosedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
