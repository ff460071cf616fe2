package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/mamgad/DVBLab/internal/adapter/http/middleware"
	"github.com/mamgad/DVBLab/internal/adapter/http/models"
	"github.com/mamgad/DVBLab/internal/commons"
	"github.com/mamgad/DVBLab/internal/domain"
	"github.com/mamgad/DVBLab/internal/logger"
)

type TransferService interface {
	Transfer(ctx context.Context, sender domain.User, receiverID int64, amount decimal.Decimal, description, ip string, now time.Time) (domain.Transfer, error)
	ListForAccount(ctx context.Context, accountID, requesterID int64) ([]domain.Transfer, error)
	Get(ctx context.Context, transferID, requesterID int64) (domain.Transfer, error)
}

type TransferController struct {
	service TransferService
}

func NewTransferController(service TransferService) *TransferController {
	return &TransferController{service: service}
}

func (c *TransferController) RegisterRoutes(public, protected *mux.Router) {
	protected.HandleFunc("/transfer", c.transfer).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/transactions", c.listTransactions).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/transactions/{id:[0-9]+}", c.getTransaction).Methods(http.MethodGet, http.MethodOptions)
}

func (c *TransferController) transfer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	sender, ok := middleware.UserFrom(r.Context())
	if !ok {
		commons.WriteError(w, http.StatusUnauthorized, "Token is missing")
		return
	}

	var req models.TransferRequest
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

	transfer, err := c.service.Transfer(r.Context(), sender, req.ToUserID, req.Amount, req.Description, clientIP(r), time.Now().UTC())
	if err != nil {
		logError(r, err, logger.Fields{
			"senderId":   sender.ID,
			"receiverId": req.ToUserID,
		})
		commons.WriteDomainError(w, err)
		return
	}

	commons.WriteJSON(w, http.StatusOK, models.TransferResponse{
		Message:     "Transfer successful",
		Transaction: models.NewTransferPayload(transfer),
	})
	logResponse(r, http.StatusOK, start)
}

func (c *TransferController) listTransactions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	requester, ok := middleware.UserFrom(r.Context())
	if !ok {
		commons.WriteError(w, http.StatusUnauthorized, "Token is missing")
		return
	}

	accountID := requester.ID
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			commons.WriteError(w, http.StatusBadRequest, "user_id must be an integer")
			logResponse(r, http.StatusBadRequest, start)
			return
		}
		accountID = parsed
	}

	transfers, err := c.service.ListForAccount(r.Context(), accountID, requester.ID)
	if err != nil {
		logError(r, err, logger.Fields{"accountId": accountID})
		commons.WriteDomainError(w, err)
		return
	}

	commons.WriteJSON(w, http.StatusOK, models.NewTransferPayloads(transfers))
	logResponse(r, http.StatusOK, start)
}

func (c *TransferController) getTransaction(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	requester, ok := middleware.UserFrom(r.Context())
	if !ok {
		commons.WriteError(w, http.StatusUnauthorized, "Token is missing")
		return
	}

	transferID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		commons.WriteError(w, http.StatusBadRequest, "transaction id must be an integer")
		logResponse(r, http.StatusBadRequest, start)
		return
	}

	transfer, err := c.service.Get(r.Context(), transferID, requester.ID)
	if err != nil {
		logError(r, err, logger.Fields{"transferId": transferID})
		commons.WriteDomainError(w, err)
		return
	}

	commons.WriteJSON(w, http.StatusOK, models.NewTransferPayload(transfer))
	logResponse(r, http.StatusOK, start)
}
