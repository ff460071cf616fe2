package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/mamgad/DVBLab/internal/adapter/http/middleware"
	"github.com/mamgad/DVBLab/internal/adapter/http/models"
	"github.com/mamgad/DVBLab/internal/commons"
	"github.com/mamgad/DVBLab/internal/domain"
	"github.com/mamgad/DVBLab/internal/profile"
)

type ProfileService interface {
	GetProfile(ctx context.Context, userID int64) (profile.Document, error)
	UpdateProfile(ctx context.Context, userID int64, email *string, doc profile.Document) (domain.User, error)
	ImportProfile(ctx context.Context, user domain.User, yamlText, ip string, now time.Time) error
}

type ProfileController struct {
	service ProfileService
}

func NewProfileController(service ProfileService) *ProfileController {
	return &ProfileController{service: service}
}

func (c *ProfileController) RegisterRoutes(public, protected *mux.Router) {
	protected.HandleFunc("/profile", c.getProfile).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/profile", c.updateProfile).Methods(http.MethodPut, http.MethodOptions)
	protected.HandleFunc("/profile/import", c.importProfile).Methods(http.MethodPost, http.MethodOptions)
}

func (c *ProfileController) getProfile(w http.ResponseWriter, r *http.Request) {
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

	commons.WriteJSON(w, http.StatusOK, models.NewProfileResponse(user, doc))
	logResponse(r, http.StatusOK, start)
}

func (c *ProfileController) updateProfile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		commons.WriteError(w, http.StatusUnauthorized, "Token is missing")
		return
	}

	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		commons.WriteError(w, http.StatusBadRequest, "Invalid request body")
		logResponse(r, http.StatusBadRequest, start)
		return
	}
	logRequest(r, req)

	var email *string
	if trimmed := strings.TrimSpace(req.Email); trimmed != "" {
		email = &trimmed
	}

	doc := req.Document()
	updated, err := c.service.UpdateProfile(r.Context(), user.ID, email, doc)
	if err != nil {
		logError(r, err, nil)
		commons.WriteDomainError(w, err)
		return
	}

	commons.WriteJSON(w, http.StatusOK, models.UpdateProfileResponse{
		Message: "Profile updated successfully",
		Profile: models.NewProfileResponse(updated, doc),
	})
	logResponse(r, http.StatusOK, start)
}

func (c *ProfileController) importProfile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		commons.WriteError(w, http.StatusUnauthorized, "Token is missing")
		return
	}

	var req models.ImportProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		commons.WriteError(w, http.StatusBadRequest, "Invalid request body")
		logResponse(r, http.StatusBadRequest, start)
		return
	}

	if err := c.service.ImportProfile(r.Context(), user, req.ProfileYAML, clientIP(r), time.Now().UTC()); err != nil {
		logError(r, err, nil)
		commons.WriteDomainError(w, err)
		return
	}

	commons.WriteJSON(w, http.StatusOK, commons.MessageBody{Message: "Profile imported successfully"})
	logResponse(r, http.StatusOK, start)
}
