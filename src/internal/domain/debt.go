package domain

import "time"

type DebtStatus string

const (
	DebtStatusUnpaid DebtStatus = "UNPAID"
	DebtStatusPaid   DebtStatus = "PAID"
)

// Debt is one ledger-view copy of an obligation. Every logical debt exists
// as two rows sharing a PairID: one owned by the debtor, one by the
// creditor. The engine keeps amount/remaining/status identical on both.
type Debt struct {
	ID          string
	PairID      string
	LedgerOwner string
	Debtor      string
	Creditor    string
	Amount      string
	Remaining   string
	Status      DebtStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
