package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/api-sage/p2p-debt-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/p2p-debt-ledger/src/internal/commons"
	"github.com/api-sage/p2p-debt-ledger/src/internal/domain"
	"github.com/api-sage/p2p-debt-ledger/src/internal/logger"
	"github.com/api-sage/p2p-debt-ledger/src/internal/usecase/service_interfaces"
	"github.com/shopspring/decimal"
)

// Verify that LedgerService implements the service_interfaces.LedgerService interface
var _ service_interfaces.LedgerService = (*LedgerService)(nil)

// LedgerService is the debt engine. It validates both parties against the
// user directory, keeps the two ledger-view copies of every debt in step,
// and appends to the transaction log on each repayment attempt.
type LedgerService struct {
	accountRepo     domain.AccountRepository
	debtRepo        domain.DebtRepository
	transactionRepo domain.TransactionRepository
}

func NewLedgerService(
	accountRepo domain.AccountRepository,
	debtRepo domain.DebtRepository,
	transactionRepo domain.TransactionRepository,
) *LedgerService {
	return &LedgerService{
		accountRepo:     accountRepo,
		debtRepo:        debtRepo,
		transactionRepo: transactionRepo,
	}
}

var pairRefCounter uint32

func (s *LedgerService) RecordDebt(ctx context.Context, req models.RecordDebtRequest) (commons.Response[models.RecordDebtResponse], error) {
	logger.Info("ledger service record debt request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		logger.Error("ledger service record debt validation failed", err, nil)
		return commons.ErrorResponse[models.RecordDebtResponse]("validation failed", err.Error()), err
	}

	debtorName := strings.TrimSpace(req.DebtorName)
	creditorName := strings.TrimSpace(req.CreditorName)

	if resp, err := s.requireUsers(ctx, debtorName, creditorName, "record debt"); err != nil {
		return commons.Response[models.RecordDebtResponse]{Success: false, Message: resp.Message, Errors: resp.Errors}, err
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		err := fmt.Errorf("amount must be a positive decimal")
		return commons.ErrorResponse[models.RecordDebtResponse]("validation failed", err.Error()), err
	}

	debt := domain.Debt{
		PairID:    generatePairReference(),
		Debtor:    debtorName,
		Creditor:  creditorName,
		Amount:    amount.StringFixed(2),
		Remaining: amount.StringFixed(2),
		Status:    domain.DebtStatusUnpaid,
	}

	created, err := s.debtRepo.CreatePair(ctx, debt)
	if err != nil {
		logger.Error("ledger service record debt repository failed", err, logger.Fields{
			"debtor":   debtorName,
			"creditor": creditorName,
		})
		return commons.ErrorResponse[models.RecordDebtResponse]("failed to record debt", "Unable to record debt right now"), err
	}

	response := models.RecordDebtResponse{
		PairID:    created.PairID,
		Debtor:    created.Debtor,
		Creditor:  created.Creditor,
		Amount:    created.Amount,
		Remaining: created.Remaining,
		Status:    string(created.Status),
		CreatedAt: created.CreatedAt.Format(time.RFC3339),
	}

	logger.Info("ledger service record debt success", logger.Fields{
		"pairId":   response.PairID,
		"debtor":   response.Debtor,
		"creditor": response.Creditor,
		"amount":   response.Amount,
	})

	return commons.SuccessResponse("debt recorded successfully", response), nil
}

func (s *LedgerService) ListDebts(ctx context.Context, username string) (commons.Response[models.ListDebtsResponse], error) {
	logger.Info("ledger service list debts request", logger.Fields{
		"username": username,
	})

	username = strings.TrimSpace(username)
	if username == "" {
		err := fmt.Errorf("username is required")
		return commons.ErrorResponse[models.ListDebtsResponse]("validation failed", err.Error()), err
	}

	if _, err := s.accountRepo.GetByUsername(ctx, username); err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.ListDebtsResponse]("user not found"), err
		}
		logger.Error("ledger service list debts lookup failed", err, logger.Fields{
			"username": username,
		})
		return commons.ErrorResponse[models.ListDebtsResponse]("failed to list debts", "Unable to list debts right now"), err
	}

	debts, err := s.debtRepo.ListByOwner(ctx, username)
	if err != nil {
		logger.Error("ledger service list debts repository failed", err, logger.Fields{
			"username": username,
		})
		return commons.ErrorResponse[models.ListDebtsResponse]("failed to list debts", "Unable to list debts right now"), err
	}

	views := make([]models.DebtView, 0, len(debts))
	for _, debt := range debts {
		views = append(views, models.DebtView{
			Debtor:    debt.Debtor,
			Creditor:  debt.Creditor,
			Amount:    debt.Amount,
			Remaining: debt.Remaining,
			Status:    string(debt.Status),
			CreatedAt: debt.CreatedAt.Format(time.RFC3339),
		})
	}

	return commons.SuccessResponse("debts fetched successfully", models.ListDebtsResponse{Debts: views}), nil
}

func (s *LedgerService) SettleDebt(ctx context.Context, req models.SettleDebtRequest) (commons.Response[models.SettleDebtResponse], error) {
	logger.Info("ledger service settle debt request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		logger.Error("ledger service settle debt validation failed", err, nil)
		return commons.ErrorResponse[models.SettleDebtResponse]("validation failed", err.Error()), err
	}

	debtorName := strings.TrimSpace(req.DebtorName)
	creditorName := strings.TrimSpace(req.CreditorName)

	if resp, err := s.requireUsers(ctx, debtorName, creditorName, "settle debt"); err != nil {
		return commons.Response[models.SettleDebtResponse]{Success: false, Message: resp.Message, Errors: resp.Errors}, err
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		err := fmt.Errorf("amount must be a positive decimal")
		return commons.ErrorResponse[models.SettleDebtResponse]("validation failed", err.Error()), err
	}

	// Oldest unpaid debt for the pair wins (FIFO).
	debt, err := s.debtRepo.OldestUnpaid(ctx, debtorName, creditorName)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.SettleDebtResponse]("no outstanding debt"), domain.ErrNoOutstandingDebt
		}
		logger.Error("ledger service settle debt lookup failed", err, logger.Fields{
			"debtor":   debtorName,
			"creditor": creditorName,
		})
		return commons.ErrorResponse[models.SettleDebtResponse]("failed to settle debt", "Unable to settle debt right now"), err
	}

	remaining, err := decimal.NewFromString(debt.Remaining)
	if err != nil {
		logger.Error("ledger service settle debt corrupt remaining", err, logger.Fields{
			"pairId": debt.PairID,
		})
		return commons.ErrorResponse[models.SettleDebtResponse]("failed to settle debt", "Unable to settle debt right now"), err
	}

	// The log records the full payment attempt, before the ledger moves.
	// It is an audit of what was paid, not of what was applied, and never
	// references the debt it reduced.
	if _, err := s.transactionRepo.Append(ctx, domain.Transaction{
		Debtor:   debtorName,
		Creditor: creditorName,
		Amount:   amount.StringFixed(2),
	}); err != nil {
		logger.Error("ledger service settle debt append transaction failed", err, logger.Fields{
			"debtor":   debtorName,
			"creditor": creditorName,
		})
		return commons.ErrorResponse[models.SettleDebtResponse]("failed to settle debt", "Unable to settle debt right now"), err
	}

	newRemaining := decimal.Zero
	newStatus := domain.DebtStatusPaid
	if amount.LessThan(remaining) {
		newRemaining = remaining.Sub(amount)
		newStatus = domain.DebtStatusUnpaid
	}

	if err := s.debtRepo.SettlePair(ctx, debt.PairID, debt.Remaining, newRemaining.StringFixed(2), newStatus); err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			// Lost a race with another settlement against the same debt.
			err := fmt.Errorf("debt was settled concurrently")
			return commons.ErrorResponse[models.SettleDebtResponse]("failed to settle debt", err.Error()), err
		}
		logger.Error("ledger service settle debt update failed", err, logger.Fields{
			"pairId": debt.PairID,
		})
		return commons.ErrorResponse[models.SettleDebtResponse]("failed to settle debt", "Unable to settle debt right now"), err
	}

	response := models.SettleDebtResponse{
		Debtor:     debtorName,
		Creditor:   creditorName,
		AmountPaid: amount.StringFixed(2),
		Remaining:  newRemaining.StringFixed(2),
		Status:     string(newStatus),
	}

	logger.Info("ledger service settle debt success", logger.Fields{
		"pairId":    debt.PairID,
		"debtor":    debtorName,
		"creditor":  creditorName,
		"paid":      response.AmountPaid,
		"remaining": response.Remaining,
		"status":    response.Status,
	})

	return commons.SuccessResponse("payment recorded successfully", response), nil
}

func (s *LedgerService) ListTransactions(ctx context.Context, username string) (commons.Response[models.ListTransactionsResponse], error) {
	logger.Info("ledger service list transactions request", logger.Fields{
		"username": username,
	})

	username = strings.TrimSpace(username)
	if username == "" {
		err := fmt.Errorf("username is required")
		return commons.ErrorResponse[models.ListTransactionsResponse]("validation failed", err.Error()), err
	}

	if _, err := s.accountRepo.GetByUsername(ctx, username); err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.ListTransactionsResponse]("user not found"), err
		}
		logger.Error("ledger service list transactions lookup failed", err, logger.Fields{
			"username": username,
		})
		return commons.ErrorResponse[models.ListTransactionsResponse]("failed to list transactions", "Unable to list transactions right now"), err
	}

	transactions, err := s.transactionRepo.ListForUser(ctx, username)
	if err != nil {
		logger.Error("ledger service list transactions repository failed", err, logger.Fields{
			"username": username,
		})
		return commons.ErrorResponse[models.ListTransactionsResponse]("failed to list transactions", "Unable to list transactions right now"), err
	}

	views := make([]models.TransactionView, 0, len(transactions))
	for _, transaction := range transactions {
		views = append(views, models.TransactionView{
			Debtor:    transaction.Debtor,
			Creditor:  transaction.Creditor,
			Amount:    transaction.Amount,
			CreatedAt: transaction.CreatedAt.Format(time.RFC3339),
		})
	}

	return commons.SuccessResponse("transactions fetched successfully", models.ListTransactionsResponse{Transactions: views}), nil
}

// requireUsers resolves both parties through the user directory. The error
// return carries ErrRecordNotFound when either is unknown; the response
// carries the caller-facing message.
func (s *LedgerService) requireUsers(ctx context.Context, debtorName, creditorName, operation string) (commons.Response[struct{}], error) {
	for _, name := range []string{debtorName, creditorName} {
		if _, err := s.accountRepo.GetByUsername(ctx, name); err != nil {
			if errors.Is(err, domain.ErrRecordNotFound) {
				logger.Info("ledger service unknown user", logger.Fields{
					"operation": operation,
					"username":  name,
				})
				return commons.ErrorResponse[struct{}]("user not found"), err
			}
			logger.Error("ledger service user lookup failed", err, logger.Fields{
				"operation": operation,
				"username":  name,
			})
			return commons.ErrorResponse[struct{}]("failed to "+operation, "Unable to "+operation+" right now"), err
		}
	}

	return commons.Response[struct{}]{}, nil
}

func generatePairReference() string {
	now := time.Now().UTC()
	base := now.Format("20060102150405") + fmt.Sprintf("%09d", now.Nanosecond())
	counter := atomic.AddUint32(&pairRefCounter, 1) % 10000000
	suffix := fmt.Sprintf("%07d", counter)
	return base + suffix
}
