package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/api-sage/p2p-debt-ledger/src/internal/domain"
	"github.com/api-sage/p2p-debt-ledger/src/internal/logger"
)

type DebtRepository struct {
	db *sql.DB
}

func NewDebtRepository(db *sql.DB) *DebtRepository {
	return &DebtRepository{db: db}
}

func (r *DebtRepository) ProvisionLedger(ctx context.Context, owner string) error {
	const query = `
INSERT INTO ledgers (owner)
VALUES ($1)
ON CONFLICT (owner) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, owner); err != nil {
		return fmt.Errorf("provision ledger for %q: %w", owner, err)
	}

	return nil
}

func (r *DebtRepository) CreatePair(ctx context.Context, debt domain.Debt) (domain.Debt, error) {
	logger.Info("debt repository create pair", logger.Fields{
		"pairId":   debt.PairID,
		"debtor":   debt.Debtor,
		"creditor": debt.Creditor,
		"amount":   debt.Amount,
	})

	const query = `
INSERT INTO debts (
	pair_id,
	ledger_owner,
	debtor,
	creditor,
	amount,
	remaining,
	status
) VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, created_at, updated_at`

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Debt{}, fmt.Errorf("begin create pair tx: %w", err)
	}
	defer tx.Rollback()

	var debtorCopy domain.Debt
	for _, owner := range []string{debt.Debtor, debt.Creditor} {
		var (
			id                   string
			createdAt, updatedAt sql.NullTime
		)
		if err := tx.QueryRowContext(
			ctx,
			query,
			debt.PairID,
			owner,
			debt.Debtor,
			debt.Creditor,
			debt.Amount,
			debt.Remaining,
			debt.Status,
		).Scan(&id, &createdAt, &updatedAt); err != nil {
			logger.Error("debt repository create pair failed", err, logger.Fields{
				"pairId":      debt.PairID,
				"ledgerOwner": owner,
			})
			return domain.Debt{}, fmt.Errorf("insert debt copy for %q: %w", owner, err)
		}

		if owner == debt.Debtor {
			debtorCopy = debt
			debtorCopy.ID = id
			debtorCopy.LedgerOwner = owner
			if createdAt.Valid {
				debtorCopy.CreatedAt = createdAt.Time
			}
			if updatedAt.Valid {
				debtorCopy.UpdatedAt = updatedAt.Time
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Debt{}, fmt.Errorf("commit create pair tx: %w", err)
	}

	return debtorCopy, nil
}

func (r *DebtRepository) ListByOwner(ctx context.Context, owner string) ([]domain.Debt, error) {
	const query = `
SELECT id, pair_id, ledger_owner, debtor, creditor, amount, remaining, status, created_at, updated_at
FROM debts
WHERE ledger_owner = $1
ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("list debts for %q: %w", owner, err)
	}
	defer rows.Close()

	debts := make([]domain.Debt, 0)
	for rows.Next() {
		var debt domain.Debt
		if err := scanDebt(rows, &debt); err != nil {
			return nil, fmt.Errorf("scan debt row: %w", err)
		}
		debts = append(debts, debt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate debt rows: %w", err)
	}

	return debts, nil
}

func (r *DebtRepository) OldestUnpaid(ctx context.Context, debtor, creditor string) (domain.Debt, error) {
	const query = `
SELECT id, pair_id, ledger_owner, debtor, creditor, amount, remaining, status, created_at, updated_at
FROM debts
WHERE ledger_owner = $1
  AND debtor = $1
  AND creditor = $2
  AND status = $3
ORDER BY created_at ASC, id ASC
LIMIT 1`

	var debt domain.Debt
	if err := scanDebt(r.db.QueryRowContext(ctx, query, debtor, creditor, domain.DebtStatusUnpaid), &debt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Debt{}, domain.ErrRecordNotFound
		}
		return domain.Debt{}, fmt.Errorf("find oldest unpaid debt: %w", err)
	}

	return debt, nil
}

func (r *DebtRepository) SettlePair(ctx context.Context, pairID string, expectedRemaining string, newRemaining string, status domain.DebtStatus) error {
	logger.Info("debt repository settle pair", logger.Fields{
		"pairId":       pairID,
		"newRemaining": newRemaining,
		"status":       status,
	})

	// Single statement covering both copies. The remaining guard is a
	// compare-and-set: a concurrent settlement that already changed the
	// balance leaves zero rows matched.
	const query = `
UPDATE debts
SET remaining = $3::numeric,
    status = $4,
    updated_at = NOW()
WHERE pair_id = $1
  AND status = $5
  AND remaining = $2::numeric`

	result, err := r.db.ExecContext(ctx, query, pairID, expectedRemaining, newRemaining, status, domain.DebtStatusUnpaid)
	if err != nil {
		logger.Error("debt repository settle pair failed", err, logger.Fields{
			"pairId": pairID,
		})
		return fmt.Errorf("settle debt pair: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("settle debt pair rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrRecordNotFound
	}
	if affected != 2 {
		return fmt.Errorf("settle debt pair touched %d rows, want 2", affected)
	}

	return nil
}

func scanDebt(row rowScanner, debt *domain.Debt) error {
	return row.Scan(
		&debt.ID,
		&debt.PairID,
		&debt.LedgerOwner,
		&debt.Debtor,
		&debt.Creditor,
		&debt.Amount,
		&debt.Remaining,
		&debt.Status,
		&debt.CreatedAt,
		&debt.UpdatedAt,
	)
}
