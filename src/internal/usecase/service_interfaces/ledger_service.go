package service_interfaces

import (
	"context"

	"github.com/api-sage/p2p-debt-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/p2p-debt-ledger/src/internal/commons"
)

type LedgerService interface {
	RecordDebt(ctx context.Context, req models.RecordDebtRequest) (commons.Response[models.RecordDebtResponse], error)
	ListDebts(ctx context.Context, username string) (commons.Response[models.ListDebtsResponse], error)
	SettleDebt(ctx context.Context, req models.SettleDebtRequest) (commons.Response[models.SettleDebtResponse], error)
	ListTransactions(ctx context.Context, username string) (commons.Response[models.ListTransactionsResponse], error)
}
