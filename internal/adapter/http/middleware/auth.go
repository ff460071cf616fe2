package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/mamgad/DVBLab/internal/commons"
	"github.com/mamgad/DVBLab/internal/domain"
	"github.com/mamgad/DVBLab/internal/logger"
	"github.com/mamgad/DVBLab/internal/token"
)

const userKey contextKey = "currentUser"

// Authenticator resolves bearer tokens to live account records. The account
// is re-read on every request, so balance and role are never stale snapshots
// from token issuance time.
type Authenticator struct {
	issuer   *token.Issuer
	userRepo domain.UserRepository
}

func NewAuthenticator(issuer *token.Issuer, userRepo domain.UserRepository) *Authenticator {
	return &Authenticator{issuer: issuer, userRepo: userRepo}
}

func (a *Authenticator) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			commons.WriteError(w, http.StatusUnauthorized, "Token is missing")
			return
		}

		claims, err := a.issuer.Verify(raw, time.Now().UTC())
		if err != nil {
			commons.WriteDomainError(w, err)
			return
		}

		user, err := a.userRepo.GetByID(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrRecordNotFound) {
				commons.WriteDomainError(w, domain.ErrUnknownAccount)
				return
			}
			logger.Error("auth middleware user lookup failed", err, logger.Fields{
				"userId": claims.UserID,
				"path":   r.URL.Path,
			})
			commons.WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFrom returns the authenticated account placed by RequireToken.
func UserFrom(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(userKey).(domain.User)
	return user, ok
}

// bearerToken pulls the token out of the Authorization header. A header
// without the Bearer prefix is accepted as a raw token, matching what the
// original clients sent.
func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}

	return header
}
