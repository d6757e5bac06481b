package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/api-sage/p2p-debt-ledger/src/internal/domain"
	"github.com/lib/pq"
)

type AccountRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	const query = `
INSERT INTO users (
	username,
	email,
	password_hash
) VALUES ($1, $2, $3)
RETURNING id, username, email, password_hash, created_at`

	var created domain.Account
	if err := scanAccount(r.db.QueryRowContext(
		ctx,
		query,
		account.Username,
		account.Email,
		account.PasswordHash,
	), &created); err != nil {
		if isUniqueViolation(err) {
			return domain.Account{}, domain.ErrDuplicateUser
		}
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}

	return created, nil
}

func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (domain.Account, error) {
	const query = `
SELECT id, username, email, password_hash, created_at
FROM users
WHERE username = $1`

	var account domain.Account
	if err := scanAccount(r.db.QueryRowContext(ctx, query, username), &account); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrRecordNotFound
		}
		return domain.Account{}, fmt.Errorf("get account by username: %w", err)
	}

	return account, nil
}

func scanAccount(row rowScanner, account *domain.Account) error {
	return row.Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&account.CreatedAt,
	)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == "23505"
	}
	return false
}
