// Package events publishes notifications about completed funds operations
// for downstream consumers (statements, alerting). Publishing is best-effort
// and happens only after the operation committed.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OperationCompleted describes one successfully executed funds operation.
type OperationCompleted struct {
	OperationID uuid.UUID `json:"operation_id"`
	Kind        string    `json:"kind"`
	Amount      int64     `json:"amount"`
	Source      int64     `json:"source_account_id"`
	Destination int64     `json:"destination_account_id,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}

type Publisher interface {
	PublishOperationCompleted(ctx context.Context, ev OperationCompleted) error
}
