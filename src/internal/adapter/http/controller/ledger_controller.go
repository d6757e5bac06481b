package controller

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/api-sage/p2p-debt-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/p2p-debt-ledger/src/internal/commons"
	"github.com/api-sage/p2p-debt-ledger/src/internal/logger"
	"github.com/api-sage/p2p-debt-ledger/src/internal/usecase/service_interfaces"
)

type LedgerController struct {
	service service_interfaces.LedgerService
}

func NewLedgerController(service service_interfaces.LedgerService) *LedgerController {
	return &LedgerController{service: service}
}

func (c *LedgerController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	recordHandler := http.HandlerFunc(c.recordDebt)
	debtsHandler := http.HandlerFunc(c.listDebts)
	settleHandler := http.HandlerFunc(c.settleDebt)
	transactionsHandler := http.HandlerFunc(c.listTransactions)
	if authMiddleware != nil {
		recordHandler = authMiddleware(recordHandler).ServeHTTP
		debtsHandler = authMiddleware(debtsHandler).ServeHTTP
		settleHandler = authMiddleware(settleHandler).ServeHTTP
		transactionsHandler = authMiddleware(transactionsHandler).ServeHTTP
	}
	mux.Handle("/record-debt", http.HandlerFunc(recordHandler))
	mux.Handle("/debts", http.HandlerFunc(debtsHandler))
	mux.Handle("/settle-debt", http.HandlerFunc(settleHandler))
	mux.Handle("/transactions", http.HandlerFunc(transactionsHandler))
}

func (c *LedgerController) recordDebt(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodPost {
		response := commons.ErrorResponse[models.RecordDebtResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	var req models.RecordDebtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.RecordDebtResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, req)

	if err := req.Validate(); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.RecordDebtResponse]("validation failed", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}

	response, err := c.service.RecordDebt(r.Context(), req)
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		status := statusForMessage(response.Message)
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusCreated, response)
	logResponse(r, http.StatusCreated, response, start)
}

func (c *LedgerController) listDebts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodGet {
		response := commons.ErrorResponse[models.ListDebtsResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	username := r.URL.Query().Get("username")

	response, err := c.service.ListDebts(r.Context(), username)
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		status := statusForMessage(response.Message)
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}

func (c *LedgerController) settleDebt(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodPost {
		response := commons.ErrorResponse[models.SettleDebtResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	var req models.SettleDebtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.SettleDebtResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, req)

	if err := req.Validate(); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.SettleDebtResponse]("validation failed", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}

	response, err := c.service.SettleDebt(r.Context(), req)
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		status := statusForMessage(response.Message)
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}

func (c *LedgerController) listTransactions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodGet {
		response := commons.ErrorResponse[models.ListTransactionsResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	username := r.URL.Query().Get("username")

	response, err := c.service.ListTransactions(r.Context(), username)
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		status := statusForMessage(response.Message)
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}

func statusForMessage(message string) int {
	switch message {
	case "validation failed":
		return http.StatusBadRequest
	case "user not found":
		return http.StatusNotFound
	case "no outstanding debt":
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
