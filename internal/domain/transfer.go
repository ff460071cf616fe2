package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "pending"
	TransferStatusCompleted TransferStatus = "completed"
	TransferStatusFailed    TransferStatus = "failed"
)

// Transfer is one balance movement between two accounts. Rows are written
// once with status "completed" and never updated afterwards.
type Transfer struct {
	ID          int64
	SenderID    int64
	ReceiverID  int64
	Amount      decimal.Decimal
	Description string
	Status      TransferStatus
	CreatedAt   time.Time
	CompletedAt *time.Time
}
