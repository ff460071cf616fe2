package implementations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamgad/DVBLab/internal/domain"
	"github.com/mamgad/DVBLab/internal/logger"
)

type TransferRepository struct {
	db *DB
}

func NewTransferRepository(db *DB) *TransferRepository {
	return &TransferRepository{db: db}
}

const transferColumns = `id, sender_id, receiver_id, amount, description, status, created_at, completed_at`

// Execute moves amount from sender to receiver and records the transfer, all
// in one SQL transaction. The debit carries its own balance guard in the
// WHERE clause, so two racing transfers can never both spend the same funds:
// whichever commits second sees the reduced balance and affects zero rows.
func (r *TransferRepository) Execute(ctx context.Context, senderID, receiverID int64, amount decimal.Decimal, description string, now time.Time) (transfer domain.Transfer, err error) {
	logger.Info("transfer repository execute", logger.Fields{
		"senderId":   senderID,
		"receiverId": receiverID,
		"amount":     amount.String(),
	})

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Transfer{}, fmt.Errorf("begin transfer transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var receiverExists int64
	checkReceiver := r.db.Rebind(`SELECT id FROM users WHERE id = ?`)
	if err = tx.QueryRowContext(ctx, checkReceiver, receiverID).Scan(&receiverExists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = domain.ErrReceiverNotFound
			return domain.Transfer{}, err
		}
		return domain.Transfer{}, fmt.Errorf("check receiver: %w", err)
	}

	debit := func() error {
		query := r.db.Rebind(`
UPDATE users
SET balance = balance - ?
WHERE id = ?
  AND balance >= ?`)
		result, execErr := tx.ExecContext(ctx, query, amount, senderID, amount)
		if execErr != nil {
			return fmt.Errorf("debit sender: %w", execErr)
		}
		affected, execErr := result.RowsAffected()
		if execErr != nil {
			return fmt.Errorf("debit sender rows affected: %w", execErr)
		}
		if affected == 0 {
			return domain.ErrInsufficientBalance
		}
		return nil
	}

	credit := func() error {
		query := r.db.Rebind(`
UPDATE users
SET balance = balance + ?
WHERE id = ?`)
		result, execErr := tx.ExecContext(ctx, query, amount, receiverID)
		if execErr != nil {
			return fmt.Errorf("credit receiver: %w", execErr)
		}
		affected, execErr := result.RowsAffected()
		if execErr != nil {
			return fmt.Errorf("credit receiver rows affected: %w", execErr)
		}
		if affected == 0 {
			return domain.ErrReceiverNotFound
		}
		return nil
	}

	// Row locks are taken in ascending account id order so two transfers
	// crossing the same pair of accounts in opposite directions cannot
	// deadlock.
	steps := []func() error{debit, credit}
	if receiverID < senderID {
		steps = []func() error{credit, debit}
	}
	for _, step := range steps {
		if err = step(); err != nil {
			return domain.Transfer{}, err
		}
	}

	insert := r.db.Rebind(`
INSERT INTO transactions (sender_id, receiver_id, amount, description, status, created_at, completed_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id`)

	completedAt := toMillis(now)
	var id int64
	if err = tx.QueryRowContext(
		ctx,
		insert,
		senderID,
		receiverID,
		amount,
		description,
		domain.TransferStatusCompleted,
		toMillis(now),
		completedAt,
	).Scan(&id); err != nil {
		return domain.Transfer{}, fmt.Errorf("insert transfer: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return domain.Transfer{}, fmt.Errorf("commit transfer transaction: %w", err)
	}

	completed := fromMillis(completedAt)
	transfer = domain.Transfer{
		ID:          id,
		SenderID:    senderID,
		ReceiverID:  receiverID,
		Amount:      amount,
		Description: description,
		Status:      domain.TransferStatusCompleted,
		CreatedAt:   fromMillis(toMillis(now)),
		CompletedAt: &completed,
	}

	logger.Info("transfer repository execute success", logger.Fields{
		"transferId": transfer.ID,
		"senderId":   senderID,
		"receiverId": receiverID,
	})

	return transfer, nil
}

func (r *TransferRepository) ListByAccount(ctx context.Context, accountID int64) ([]domain.Transfer, error) {
	query := r.db.Rebind(`
SELECT ` + transferColumns + `
FROM transactions
WHERE sender_id = ? OR receiver_id = ?
ORDER BY created_at DESC, id DESC`)

	rows, err := r.db.QueryContext(ctx, query, accountID, accountID)
	if err != nil {
		logger.Error("transfer repository list failed", err, logger.Fields{
			"accountId": accountID,
		})
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()

	transfers := []domain.Transfer{}
	for rows.Next() {
		var transfer domain.Transfer
		if err := scanTransfer(rows, &transfer); err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		transfers = append(transfers, transfer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transfers: %w", err)
	}

	return transfers, nil
}

func (r *TransferRepository) GetByID(ctx context.Context, id int64) (domain.Transfer, error) {
	query := r.db.Rebind(`SELECT ` + transferColumns + ` FROM transactions WHERE id = ?`)

	var transfer domain.Transfer
	if err := scanTransfer(r.db.QueryRowContext(ctx, query, id), &transfer); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Transfer{}, domain.ErrRecordNotFound
		}
		logger.Error("transfer repository get failed", err, logger.Fields{
			"transferId": id,
		})
		return domain.Transfer{}, fmt.Errorf("get transfer: %w", err)
	}

	return transfer, nil
}

func scanTransfer(row rowScanner, transfer *domain.Transfer) error {
	var (
		amount      decimal.Decimal
		description sql.NullString
		createdAt   int64
		completedAt sql.NullInt64
	)

	if err := row.Scan(
		&transfer.ID,
		&transfer.SenderID,
		&transfer.ReceiverID,
		&amount,
		&description,
		&transfer.Status,
		&createdAt,
		&completedAt,
	); err != nil {
		return err
	}

	transfer.Amount = amount
	transfer.Description = description.String
	transfer.CreatedAt = fromMillis(createdAt)
	if completedAt.Valid {
		value := fromMillis(completedAt.Int64)
		transfer.CompletedAt = &value
	}

	return nil
}
