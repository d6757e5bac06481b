package domain

import "context"

type AccountRepository interface {
	Create(ctx context.Context, account Account) (Account, error)
	GetByUsername(ctx context.Context, username string) (Account, error)
}
