package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mamgad/DVBLab/internal/adapter/http/middleware"
	"github.com/mamgad/DVBLab/internal/adapter/http/models"
	"github.com/mamgad/DVBLab/internal/commons"
	"github.com/mamgad/DVBLab/internal/domain"
	"github.com/mamgad/DVBLab/internal/logger"
	"github.com/mamgad/DVBLab/internal/profile"
)

type AccountService interface {
	Register(ctx context.Context, username, password, ip string, now time.Time) (domain.User, error)
	Login(ctx context.Context, username, password, ip string, userAgent *string, now time.Time) (domain.User, error)
	GetProfile(ctx context.Context, userID int64) (profile.Document, error)
	UpdatePassword(ctx context.Context, requester domain.User, targetID int64, newPassword, ip string, now time.Time) error
}

type TokenIssuer interface {
	Issue(userID int64, username string, now time.Time) (string, error)
}

type AuthController struct {
	service AccountService
	issuer  TokenIssuer
}

func NewAuthController(service AccountService, issuer TokenIssuer) *AuthController {
	return &AuthController{service: service, issuer: issuer}
}

func (c *AuthController) RegisterRoutes(public, protected *mux.Router) {
	public.HandleFunc("/register", c.register).Methods(http.MethodPost, http.MethodOptions)
	public.HandleFunc("/login", c.login).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/logout", c.logout).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/me", c.me).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/update-password", c.updatePassword).Methods(http.MethodPost, http.MethodOptions)
}

func (c *AuthController) register(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		commons.WriteError(w, http.StatusBadRequest, "Invalid request body")
		logResponse(r, http.StatusBadRequest, start)
		return
	}
	logRequest(r, req)

	if err := req.Validate(); err != nil {
		commons.WriteDomainError(w, err)
		logResponse(r, http.StatusBadRequest, start)
		return
	}

	user, err := c.service.Register(r.Context(), req.Username, req.Password, clientIP(r), time.Now().UTC())
	if err != nil {
		logError(r, err, nil)
		commons.WriteDomainError(w, err)
		return
	}

	commons.WriteJSON(w, http.StatusCreated, models.RegisterResponse{
		Message: "User registered successfully",
		ID:      user.ID,
	})
	logResponse(r, http.StatusCreated, start)
}

func (c *AuthController) login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		commons.WriteError(w, http.StatusBadRequest, "Invalid request body")
		logResponse(r, http.StatusBadRequest, start)
		return
	}
	logRequest(r, req)

	now := time.Now().UTC()
	var userAgent *string
	if ua := r.UserAgent(); ua != "" {
		userAgent = &ua
	}

	user, err := c.service.Login(r.Context(), req.Username, req.Password, clientIP(r), userAgent, now)
	if err != nil {
		logError(r, err, nil)
		commons.WriteDomainError(w, err)
		return
	}

	signed, err := c.issuer.Issue(user.ID, user.Username, now)
	if err != nil {
		logError(r, err, nil)
		commons.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	commons.WriteJSON(w, http.StatusOK, models.LoginResponse{
		Token: signed,
		User:  models.NewUserPayload(user),
	})
	logResponse(r, http.StatusOK, start)
}

// logout exists for client symmetry only. Tokens are stateless, so nothing
// is invalidated server-side; the client discards its copy.
func (c *AuthController) logout(w http.ResponseWriter, r *http.Request) {
	commons.WriteJSON(w, http.StatusOK, commons.MessageBody{Message: "Logged out successfully"})
}

func (c *AuthController) me(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		commons.WriteError(w, http.StatusUnauthorized, "Token is missing")
		return
	}

	doc, err := c.service.GetProfile(r.Context(), user.ID)
	if err != nil {
		logError(r, err, nil)
		commons.WriteDomainError(w, err)
		return
	}

	commons.WriteJSON(w, http.StatusOK, models.NewMeResponse(user, doc))
	logResponse(r, http.StatusOK, start)
}

func (c *AuthController) updatePassword(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	requester, ok := middleware.UserFrom(r.Context())
	if !ok {
		commons.WriteError(w, http.StatusUnauthorized, "Token is missing")
		return
	}

	var req models.UpdatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		commons.WriteError(w, http.StatusBadRequest, "Invalid request body")
		logResponse(r, http.StatusBadRequest, start)
		return
	}
	logRequest(r, req)

	if err := req.Validate(); err != nil {
		commons.WriteDomainError(w, err)
		logResponse(r, http.StatusBadRequest, start)
		return
	}

	err := c.service.UpdatePassword(r.Context(), requester, req.UserID, req.NewPassword, clientIP(r), time.Now().UTC())
	if err != nil {
		logError(r, err, logger.Fields{"targetUserId": req.UserID})
		commons.WriteDomainError(w, err)
		return
	}

	commons.WriteJSON(w, http.StatusOK, commons.MessageBody{Message: "Password updated"})
	logResponse(r, http.StatusOK, start)
}
