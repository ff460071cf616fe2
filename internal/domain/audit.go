package domain

import "time"

// LoginAttempt records every login call, successful or not. The username is
// stored verbatim even when it resolves to no account.
type LoginAttempt struct {
	ID        int64
	UserID    *int64
	Username  string
	IPAddress string
	UserAgent *string
	Success   bool
	CreatedAt time.Time
}

// AuditLog is an append-only record of a security-relevant action. Details
// holds a JSON-encoded map.
type AuditLog struct {
	ID        int64
	UserID    *int64
	Action    string
	Details   string
	IPAddress string
	CreatedAt time.Time
}
