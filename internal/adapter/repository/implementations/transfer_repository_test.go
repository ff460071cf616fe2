package implementations

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamgad/DVBLab/internal/domain"
)

func TestTransferExecuteMovesMoney(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	transfers := NewTransferRepository(db)

	alice := createTestUser(t, users, "alice", "5000.00")
	bob := createTestUser(t, users, "bob", "3000.00")
	now := time.Date(2026, time.March, 5, 10, 0, 0, 0, time.UTC)

	transfer, err := transfers.Execute(context.Background(), alice.ID, bob.ID, decimal.RequireFromString("100.00"), "Rent payment", now)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if transfer.ID == 0 {
		t.Fatal("expected assigned transfer id")
	}
	if transfer.Status != domain.TransferStatusCompleted {
		t.Fatalf("status = %q, want completed", transfer.Status)
	}
	if transfer.CompletedAt == nil {
		t.Fatal("expected completed_at to be set")
	}

	aliceAfter, err := users.GetByID(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("reload alice: %v", err)
	}
	bobAfter, err := users.GetByID(context.Background(), bob.ID)
	if err != nil {
		t.Fatalf("reload bob: %v", err)
	}
	if !aliceAfter.Balance.Equal(decimal.RequireFromString("4900.00")) {
		t.Fatalf("alice balance = %s, want 4900.00", aliceAfter.Balance)
	}
	if !bobAfter.Balance.Equal(decimal.RequireFromString("3100.00")) {
		t.Fatalf("bob balance = %s, want 3100.00", bobAfter.Balance)
	}

	history, err := transfers.ListByAccount(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history length = %d, want 1", len(history))
	}
}

func TestTransferExecuteInsufficientBalance(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	transfers := NewTransferRepository(db)

	alice := createTestUser(t, users, "alice", "50.00")
	bob := createTestUser(t, users, "bob", "0.00")

	_, err := transfers.Execute(context.Background(), alice.ID, bob.ID, decimal.RequireFromString("100.00"), "", time.Now().UTC())
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}

	// Nothing moved and nothing was recorded.
	aliceAfter, err := users.GetByID(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("reload alice: %v", err)
	}
	bobAfter, err := users.GetByID(context.Background(), bob.ID)
	if err != nil {
		t.Fatalf("reload bob: %v", err)
	}
	if !aliceAfter.Balance.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("alice balance = %s, want 50.00", aliceAfter.Balance)
	}
	if !bobAfter.Balance.Equal(decimal.RequireFromString("0.00")) {
		t.Fatalf("bob balance = %s, want 0.00", bobAfter.Balance)
	}

	history, err := transfers.ListByAccount(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("history length = %d, want 0", len(history))
	}
}

func TestTransferExecuteReceiverNotFound(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	transfers := NewTransferRepository(db)

	alice := createTestUser(t, users, "alice", "100.00")

	_, err := transfers.Execute(context.Background(), alice.ID, 999, decimal.RequireFromString("10.00"), "", time.Now().UTC())
	if !errors.Is(err, domain.ErrReceiverNotFound) {
		t.Fatalf("err = %v, want ErrReceiverNotFound", err)
	}

	aliceAfter, err := users.GetByID(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("reload alice: %v", err)
	}
	if !aliceAfter.Balance.Equal(decimal.RequireFromString("100.00")) {
		t.Fatalf("alice balance = %s, want 100.00", aliceAfter.Balance)
	}
}

// Concurrent transfers from one account must never overdraw it: the debits
// that commit can sum to at most the starting balance.
func TestTransferExecuteConcurrentOverdrawAttempts(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	transfers := NewTransferRepository(db)

	alice := createTestUser(t, users, "alice", "100.00")
	bob := createTestUser(t, users, "bob", "0.00")

	const workers = 10
	amount := decimal.RequireFromString("30.00")

	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := transfers.Execute(context.Background(), alice.ID, bob.ID, amount, "race", time.Now().UTC())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrInsufficientBalance):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 3 {
		t.Fatalf("succeeded = %d, want 3 (100.00 / 30.00)", succeeded)
	}

	aliceAfter, err := users.GetByID(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("reload alice: %v", err)
	}
	if aliceAfter.Balance.IsNegative() {
		t.Fatalf("alice balance went negative: %s", aliceAfter.Balance)
	}
	if !aliceAfter.Balance.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("alice balance = %s, want 10.00", aliceAfter.Balance)
	}

	bobAfter, err := users.GetByID(context.Background(), bob.ID)
	if err != nil {
		t.Fatalf("reload bob: %v", err)
	}
	if !bobAfter.Balance.Equal(decimal.RequireFromString("90.00")) {
		t.Fatalf("bob balance = %s, want 90.00", bobAfter.Balance)
	}
}

func TestTransferListOrderingAndScope(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	transfers := NewTransferRepository(db)

	alice := createTestUser(t, users, "alice", "1000.00")
	bob := createTestUser(t, users, "bob", "1000.00")
	carol := createTestUser(t, users, "carol", "1000.00")

	base := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	mustExecute := func(sender, receiver int64, amount string, at time.Time) {
		t.Helper()
		if _, err := transfers.Execute(context.Background(), sender, receiver, decimal.RequireFromString(amount), "", at); err != nil {
			t.Fatalf("execute: %v", err)
		}
	}

	mustExecute(alice.ID, bob.ID, "10.00", base)
	mustExecute(bob.ID, alice.ID, "20.00", base.Add(time.Hour))
	mustExecute(bob.ID, carol.ID, "30.00", base.Add(2*time.Hour))

	history, err := transfers.ListByAccount(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	// Newest first.
	if !history[0].CreatedAt.After(history[1].CreatedAt) {
		t.Fatalf("history not ordered newest first: %v then %v", history[0].CreatedAt, history[1].CreatedAt)
	}
	for _, transfer := range history {
		if transfer.SenderID != alice.ID && transfer.ReceiverID != alice.ID {
			t.Fatalf("transfer %d does not involve alice", transfer.ID)
		}
	}
}

func TestTransferGetByID(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	transfers := NewTransferRepository(db)

	alice := createTestUser(t, users, "alice", "100.00")
	bob := createTestUser(t, users, "bob", "0.00")

	created, err := transfers.Execute(context.Background(), alice.ID, bob.ID, decimal.RequireFromString("25.00"), "Lunch", time.Now().UTC())
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	got, err := transfers.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Description != "Lunch" {
		t.Fatalf("description = %q", got.Description)
	}
	if !got.Amount.Equal(decimal.RequireFromString("25.00")) {
		t.Fatalf("amount = %s", got.Amount)
	}

	if _, err := transfers.GetByID(context.Background(), 999); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("err = %v, want ErrRecordNotFound", err)
	}
}

func TestTransferSelfTransferNetsToZero(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	transfers := NewTransferRepository(db)

	alice := createTestUser(t, users, "alice", "100.00")

	if _, err := transfers.Execute(context.Background(), alice.ID, alice.ID, decimal.RequireFromString("40.00"), "", time.Now().UTC()); err != nil {
		t.Fatalf("self transfer: %v", err)
	}

	after, err := users.GetByID(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !after.Balance.Equal(decimal.RequireFromString("100.00")) {
		t.Fatalf("balance = %s, want 100.00", after.Balance)
	}
}
