package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type TransferRepository interface {
	// Execute applies the debit, the credit, and the transfer insert as one
	// atomic unit. It returns ErrReceiverNotFound when the receiver does not
	// exist and ErrInsufficientBalance when the sender cannot cover amount;
	// in both cases no balance changes.
	Execute(ctx context.Context, senderID, receiverID int64, amount decimal.Decimal, description string, now time.Time) (Transfer, error)
	// ListByAccount returns every transfer the account sent or received,
	// newest first.
	ListByAccount(ctx context.Context, accountID int64) ([]Transfer, error)
	GetByID(ctx context.Context, id int64) (Transfer, error)
}
