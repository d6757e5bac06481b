package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/api-sage/p2p-debt-ledger/src/internal/domain"
	"github.com/api-sage/p2p-debt-ledger/src/internal/logger"
)

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Append(ctx context.Context, transaction domain.Transaction) (domain.Transaction, error) {
	logger.Info("transaction repository append", logger.Fields{
		"debtor":   transaction.Debtor,
		"creditor": transaction.Creditor,
		"amount":   transaction.Amount,
	})

	const query = `
INSERT INTO transactions (
	debtor,
	creditor,
	amount
) VALUES ($1, $2, $3)
RETURNING id, created_at`

	var (
		id        string
		createdAt sql.NullTime
	)
	if err := r.db.QueryRowContext(
		ctx,
		query,
		transaction.Debtor,
		transaction.Creditor,
		transaction.Amount,
	).Scan(&id, &createdAt); err != nil {
		logger.Error("transaction repository append failed", err, logger.Fields{
			"debtor":   transaction.Debtor,
			"creditor": transaction.Creditor,
		})
		return domain.Transaction{}, fmt.Errorf("append transaction: %w", err)
	}

	transaction.ID = id
	if createdAt.Valid {
		transaction.CreatedAt = createdAt.Time
	}

	return transaction, nil
}

func (r *TransactionRepository) ListForUser(ctx context.Context, username string) ([]domain.Transaction, error) {
	const query = `
SELECT id, debtor, creditor, amount, created_at
FROM transactions
WHERE debtor = $1 OR creditor = $1
ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("list transactions for %q: %w", username, err)
	}
	defer rows.Close()

	transactions := make([]domain.Transaction, 0)
	for rows.Next() {
		var transaction domain.Transaction
		if err := rows.Scan(
			&transaction.ID,
			&transaction.Debtor,
			&transaction.Creditor,
			&transaction.Amount,
			&transaction.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		transactions = append(transactions, transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}

	return transactions, nil
}
