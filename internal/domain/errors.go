package domain

import "errors"

var (
	ErrRecordNotFound       = errors.New("record not found")
	ErrDuplicateUsername    = errors.New("username already exists")
	ErrAuthenticationFailed = errors.New("invalid username or password")
	ErrReceiverNotFound     = errors.New("receiver not found")
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrUnauthorized         = errors.New("unauthorized")

	ErrTokenMalformed = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token has expired")
	ErrUnknownAccount = errors.New("token account no longer exists")
)
