// Package seed populates the demo dataset for training deployments: six
// known accounts and a month of sample transfers between them.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamgad/DVBLab/internal/domain"
	"github.com/mamgad/DVBLab/internal/logger"
	"github.com/mamgad/DVBLab/internal/password"
)

const demoPassword = "password123"

type demoUser struct {
	username string
	balance  string
}

var demoUsers = []demoUser{
	{"alice", "5000.00"},
	{"bob", "3000.00"},
	{"charlie", "2500.00"},
	{"dave", "4000.00"},
	{"eve", "1500.00"},
	{"frank", "3500.00"},
}

type demoTransfer struct {
	sender      string
	receiver    string
	amount      string
	description string
}

var demoTransfers = []demoTransfer{
	{"alice", "bob", "100.00", "Rent payment"},
	{"bob", "charlie", "50.00", "Dinner split"},
	{"charlie", "dave", "75.00", "Movie tickets"},
	{"dave", "eve", "25.00", "Coffee money"},
	{"eve", "frank", "150.00", "Grocery share"},
	{"frank", "alice", "200.00", "Car repair"},
	{"alice", "charlie", "80.00", "Birthday gift"},
	{"bob", "dave", "120.00", "Concert tickets"},
	{"charlie", "eve", "90.00", "Utility bill"},
	{"dave", "frank", "175.00", "Sports equipment"},
	{"eve", "alice", "60.00", "Book club dues"},
	{"frank", "bob", "95.00", "Gaming subscription"},
	{"alice", "eve", "110.00", "Yoga class"},
	{"bob", "frank", "85.00", "Pizza night"},
	{"charlie", "alice", "145.00", "Festival tickets"},
}

// Run creates the demo accounts and transfers. It is a no-op when any users
// already exist, so restarting the server never duplicates the dataset.
func Run(ctx context.Context, users domain.UserRepository, transfers domain.TransferRepository, hasher *password.Hasher, now time.Time) error {
	count, err := users.Count(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := hasher.Hash(demoPassword)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	created := make(map[string]domain.User, len(demoUsers))
	for _, demo := range demoUsers {
		balance, err := decimal.NewFromString(demo.balance)
		if err != nil {
			return fmt.Errorf("parse demo balance %q: %w", demo.balance, err)
		}

		user, err := users.Create(ctx, domain.User{
			Username:     demo.username,
			PasswordHash: hash,
			Balance:      balance,
			Role:         domain.RoleUser,
			CreatedAt:    now,
		})
		if err != nil {
			return fmt.Errorf("create demo user %q: %w", demo.username, err)
		}
		created[demo.username] = user
	}

	baseTime := now.Add(-30 * 24 * time.Hour)
	for i, demo := range demoTransfers {
		amount, err := decimal.NewFromString(demo.amount)
		if err != nil {
			return fmt.Errorf("parse demo amount %q: %w", demo.amount, err)
		}

		transferTime := baseTime.Add(time.Duration(i) * 48 * time.Hour)
		if _, err := transfers.Execute(ctx, created[demo.sender].ID, created[demo.receiver].ID, amount, demo.description, transferTime); err != nil {
			return fmt.Errorf("seed transfer %q -> %q: %w", demo.sender, demo.receiver, err)
		}
	}

	logger.Info("demo data seeded", logger.Fields{
		"users":     len(demoUsers),
		"transfers": len(demoTransfers),
	})

	return nil
}
