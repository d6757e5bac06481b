package domain

import "context"

type DebtRepository interface {
	// ProvisionLedger creates the empty per-user ledger namespace. Called
	// once at registration; idempotent.
	ProvisionLedger(ctx context.Context, owner string) error

	// CreatePair writes the debtor-owned and creditor-owned copies of one
	// logical debt atomically and returns the debtor's copy.
	CreatePair(ctx context.Context, debt Debt) (Debt, error)

	ListByOwner(ctx context.Context, owner string) ([]Debt, error)

	// OldestUnpaid returns the oldest UNPAID debt in the debtor's ledger
	// view for the given pair, or ErrRecordNotFound.
	OldestUnpaid(ctx context.Context, debtor, creditor string) (Debt, error)

	// SettlePair updates both copies of the debt in one atomic step. The
	// update only applies while both copies are UNPAID with remaining equal
	// to expectedRemaining; a concurrent settlement that got there first
	// surfaces as ErrRecordNotFound.
	SettlePair(ctx context.Context, pairID string, expectedRemaining string, newRemaining string, status DebtStatus) error
}
