package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           int64
	Username     string
	Email        *string
	PasswordHash string
	Balance      decimal.Decimal
	// Profile holds the JSON-encoded profile document, empty when unset.
	Profile   string
	Role      Role
	CreatedAt time.Time
	LastLogin *time.Time
}
