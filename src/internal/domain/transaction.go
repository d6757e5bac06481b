package domain

import "time"

// Transaction is an immutable repayment event. It records the full amount
// the payer submitted, not the portion applied to a debt, and carries no
// reference to the debt it reduced.
type Transaction struct {
	ID        string
	Debtor    string
	Creditor  string
	Amount    string
	CreatedAt time.Time
}
