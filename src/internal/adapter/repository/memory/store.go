package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/api-sage/p2p-debt-ledger/src/internal/domain"
)

// Store is an in-process implementation of all three repositories, used by
// tests and local runs without Postgres. One mutex serializes everything.
type Store struct {
	mu           sync.Mutex
	accounts     map[string]domain.Account
	ledgers      map[string]struct{}
	debts        []domain.Debt
	transactions []domain.Transaction
	seq          int
}

func NewStore() *Store {
	return &Store{
		accounts: make(map[string]domain.Account),
		ledgers:  make(map[string]struct{}),
	}
}

func (s *Store) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *Store) Create(_ context.Context, account domain.Account) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[account.Username]; exists {
		return domain.Account{}, domain.ErrDuplicateUser
	}

	account.ID = s.nextID("acc")
	account.CreatedAt = time.Now().UTC()
	s.accounts[account.Username] = account

	return account, nil
}

func (s *Store) GetByUsername(_ context.Context, username string) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, exists := s.accounts[username]
	if !exists {
		return domain.Account{}, domain.ErrRecordNotFound
	}

	return account, nil
}

func (s *Store) ProvisionLedger(_ context.Context, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ledgers[owner] = struct{}{}
	return nil
}

func (s *Store) CreatePair(_ context.Context, debt domain.Debt) (domain.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	debt.CreatedAt = now
	debt.UpdatedAt = now

	var debtorCopy domain.Debt
	for _, owner := range []string{debt.Debtor, debt.Creditor} {
		copyOf := debt
		copyOf.ID = s.nextID("debt")
		copyOf.LedgerOwner = owner
		s.debts = append(s.debts, copyOf)
		if owner == debt.Debtor {
			debtorCopy = copyOf
		}
	}

	return debtorCopy, nil
}

func (s *Store) ListByOwner(_ context.Context, owner string) ([]domain.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	debts := make([]domain.Debt, 0)
	for _, debt := range s.debts {
		if debt.LedgerOwner == owner {
			debts = append(debts, debt)
		}
	}

	sort.SliceStable(debts, func(i, j int) bool {
		return debts[i].CreatedAt.Before(debts[j].CreatedAt)
	})

	return debts, nil
}

func (s *Store) OldestUnpaid(_ context.Context, debtor, creditor string) (domain.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, debt := range s.debts {
		if debt.LedgerOwner == debtor &&
			debt.Debtor == debtor &&
			debt.Creditor == creditor &&
			debt.Status == domain.DebtStatusUnpaid {
			return debt, nil
		}
	}

	return domain.Debt{}, domain.ErrRecordNotFound
}

func (s *Store) SettlePair(_ context.Context, pairID string, expectedRemaining string, newRemaining string, status domain.DebtStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := 0
	for i := range s.debts {
		if s.debts[i].PairID != pairID {
			continue
		}
		if s.debts[i].Status != domain.DebtStatusUnpaid || s.debts[i].Remaining != expectedRemaining {
			continue
		}
		s.debts[i].Remaining = newRemaining
		s.debts[i].Status = status
		s.debts[i].UpdatedAt = time.Now().UTC()
		updated++
	}

	if updated == 0 {
		return domain.ErrRecordNotFound
	}
	if updated != 2 {
		return fmt.Errorf("settle debt pair touched %d copies, want 2", updated)
	}

	return nil
}

func (s *Store) Append(_ context.Context, transaction domain.Transaction) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	transaction.ID = s.nextID("txn")
	transaction.CreatedAt = time.Now().UTC()
	s.transactions = append(s.transactions, transaction)

	return transaction, nil
}

func (s *Store) ListForUser(_ context.Context, username string) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	transactions := make([]domain.Transaction, 0)
	for _, transaction := range s.transactions {
		if transaction.Debtor == username || transaction.Creditor == username {
			transactions = append(transactions, transaction)
		}
	}

	return transactions, nil
}
