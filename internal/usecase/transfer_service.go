package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamgad/DVBLab/internal/domain"
	"github.com/mamgad/DVBLab/internal/logger"
)

// TransferService is the ledger: it moves money between accounts and answers
// transfer queries, enforcing ownership on every read path.
type TransferService struct {
	transferRepo domain.TransferRepository
	audit        *AuditService
}

func NewTransferService(transferRepo domain.TransferRepository, audit *AuditService) *TransferService {
	return &TransferService{transferRepo: transferRepo, audit: audit}
}

// Transfer debits the sender, credits the receiver, and records the movement
// as one atomic unit. Sending to oneself is not rejected; the originating
// system allowed it and it nets to zero.
func (s *TransferService) Transfer(ctx context.Context, sender domain.User, receiverID int64, amount decimal.Decimal, description, ip string, now time.Time) (domain.Transfer, error) {
	if !amount.IsPositive() {
		return domain.Transfer{}, domain.NewValidationError("amount must be greater than zero")
	}

	transfer, err := s.transferRepo.Execute(ctx, sender.ID, receiverID, amount, description, now)
	if err != nil {
		return domain.Transfer{}, err
	}

	logger.Info("transfer completed", logger.Fields{
		"transferId": transfer.ID,
		"senderId":   transfer.SenderID,
		"receiverId": transfer.ReceiverID,
		"amount":     transfer.Amount.String(),
	})
	s.audit.Record(ctx, &sender.ID, "transfer", map[string]any{
		"transferId": transfer.ID,
		"receiverId": receiverID,
		"amount":     transfer.Amount.String(),
	}, ip, now)

	return transfer, nil
}

// ListForAccount returns the account's transfer history, newest first. Only
// the account owner may read it.
func (s *TransferService) ListForAccount(ctx context.Context, accountID, requesterID int64) ([]domain.Transfer, error) {
	if accountID != requesterID {
		return nil, domain.ErrUnauthorized
	}

	return s.transferRepo.ListByAccount(ctx, accountID)
}

// Get returns a single transfer, visible only to its sender or receiver.
func (s *TransferService) Get(ctx context.Context, transferID, requesterID int64) (domain.Transfer, error) {
	transfer, err := s.transferRepo.GetByID(ctx, transferID)
	if err != nil {
		return domain.Transfer{}, err
	}

	if transfer.SenderID != requesterID && transfer.ReceiverID != requesterID {
		return domain.Transfer{}, domain.ErrUnauthorized
	}

	return transfer, nil
}
