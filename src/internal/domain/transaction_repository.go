package domain

import "context"

type TransactionRepository interface {
	Append(ctx context.Context, transaction Transaction) (Transaction, error)
	ListForUser(ctx context.Context, username string) ([]Transaction, error)
}
