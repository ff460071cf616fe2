package models

import (
	"github.com/shopspring/decimal"

	"github.com/mamgad/DVBLab/internal/domain"
)

type TransferRequest struct {
	ToUserID int64 `json:"to_user_id"`
	// Amount accepts a JSON number or a numeric string.
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

func (r TransferRequest) Validate() error {
	if r.ToUserID <= 0 {
		return domain.NewValidationError("to_user_id is required")
	}
	if !r.Amount.IsPositive() {
		return domain.NewValidationError("amount must be greater than zero")
	}
	return nil
}

type TransferPayload struct {
	ID          int64   `json:"id"`
	SenderID    int64   `json:"sender_id"`
	ReceiverID  int64   `json:"receiver_id"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
	CompletedAt *string `json:"completed_at"`
}

type TransferResponse struct {
	Message     string          `json:"message"`
	Transaction TransferPayload `json:"transaction"`
}

func NewTransferPayload(transfer domain.Transfer) TransferPayload {
	payload := TransferPayload{
		ID:          transfer.ID,
		SenderID:    transfer.SenderID,
		ReceiverID:  transfer.ReceiverID,
		Amount:      transfer.Amount.InexactFloat64(),
		Description: transfer.Description,
		Status:      string(transfer.Status),
		CreatedAt:   FormatTime(transfer.CreatedAt),
	}
	if transfer.CompletedAt != nil {
		completed := FormatTime(*transfer.CompletedAt)
		payload.CompletedAt = &completed
	}
	return payload
}

func NewTransferPayloads(transfers []domain.Transfer) []TransferPayload {
	payloads := make([]TransferPayload, 0, len(transfers))
	for _, transfer := range transfers {
		payloads = append(payloads, NewTransferPayload(transfer))
	}
	return payloads
}
