package models

import (
	"strings"
	"time"

	"github.com/mamgad/DVBLab/internal/domain"
	"github.com/mamgad/DVBLab/internal/profile"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return domain.NewValidationError("username is required")
	}
	if r.Password == "" {
		return domain.NewValidationError("password is required")
	}
	return nil
}

type RegisterResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return domain.NewValidationError("username is required")
	}
	if r.Password == "" {
		return domain.NewValidationError("password is required")
	}
	return nil
}

type UserPayload struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Balance  float64 `json:"balance"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  UserPayload `json:"user"`
}

type MeResponse struct {
	ID       int64            `json:"id"`
	Username string           `json:"username"`
	Balance  float64          `json:"balance"`
	Profile  profile.Document `json:"profile"`
}

type UpdatePasswordRequest struct {
	UserID      int64  `json:"user_id"`
	NewPassword string `json:"new_password"`
}

func (r UpdatePasswordRequest) Validate() error {
	if r.UserID <= 0 {
		return domain.NewValidationError("user_id is required")
	}
	if r.NewPassword == "" {
		return domain.NewValidationError("new_password is required")
	}
	return nil
}

func NewUserPayload(user domain.User) UserPayload {
	return UserPayload{
		ID:       user.ID,
		Username: user.Username,
		Balance:  user.Balance.InexactFloat64(),
	}
}

func NewMeResponse(user domain.User, doc profile.Document) MeResponse {
	if doc == nil {
		doc = profile.Document{}
	}
	return MeResponse{
		ID:       user.ID,
		Username: user.Username,
		Balance:  user.Balance.InexactFloat64(),
		Profile:  doc,
	}
}

// FormatTime renders timestamps the way the API has always emitted them.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
