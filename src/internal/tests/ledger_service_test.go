package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/api-sage/p2p-debt-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/p2p-debt-ledger/src/internal/domain"
	"github.com/api-sage/p2p-debt-ledger/src/internal/usecase/services"
)

type debtRepoStub struct {
	provisionFn    func(ctx context.Context, owner string) error
	createPairFn   func(ctx context.Context, debt domain.Debt) (domain.Debt, error)
	listByOwnerFn  func(ctx context.Context, owner string) ([]domain.Debt, error)
	oldestUnpaidFn func(ctx context.Context, debtor, creditor string) (domain.Debt, error)
	settlePairFn   func(ctx context.Context, pairID, expectedRemaining, newRemaining string, status domain.DebtStatus) error
}

func (s debtRepoStub) ProvisionLedger(ctx context.Context, owner string) error {
	if s.provisionFn != nil {
		return s.provisionFn(ctx, owner)
	}
	return nil
}

func (s debtRepoStub) CreatePair(ctx context.Context, debt domain.Debt) (domain.Debt, error) {
	if s.createPairFn != nil {
		return s.createPairFn(ctx, debt)
	}
	return debt, nil
}

func (s debtRepoStub) ListByOwner(ctx context.Context, owner string) ([]domain.Debt, error) {
	if s.listByOwnerFn != nil {
		return s.listByOwnerFn(ctx, owner)
	}
	return nil, nil
}

func (s debtRepoStub) OldestUnpaid(ctx context.Context, debtor, creditor string) (domain.Debt, error) {
	if s.oldestUnpaidFn != nil {
		return s.oldestUnpaidFn(ctx, debtor, creditor)
	}
	return domain.Debt{}, domain.ErrRecordNotFound
}

func (s debtRepoStub) SettlePair(ctx context.Context, pairID, expectedRemaining, newRemaining string, status domain.DebtStatus) error {
	if s.settlePairFn != nil {
		return s.settlePairFn(ctx, pairID, expectedRemaining, newRemaining, status)
	}
	return nil
}

type transactionRepoStub struct {
	appendFn      func(ctx context.Context, transaction domain.Transaction) (domain.Transaction, error)
	listForUserFn func(ctx context.Context, username string) ([]domain.Transaction, error)
}

func (s transactionRepoStub) Append(ctx context.Context, transaction domain.Transaction) (domain.Transaction, error) {
	if s.appendFn != nil {
		return s.appendFn(ctx, transaction)
	}
	return transaction, nil
}

func (s transactionRepoStub) ListForUser(ctx context.Context, username string) ([]domain.Transaction, error) {
	if s.listForUserFn != nil {
		return s.listForUserFn(ctx, username)
	}
	return nil, nil
}

func knownUsers(usernames ...string) accountRepoStub {
	known := make(map[string]struct{}, len(usernames))
	for _, u := range usernames {
		known[u] = struct{}{}
	}
	return accountRepoStub{
		getByUsernameFn: func(_ context.Context, username string) (domain.Account, error) {
			if _, ok := known[username]; ok {
				return domain.Account{ID: "acc-" + username, Username: username}, nil
			}
			return domain.Account{}, domain.ErrRecordNotFound
		},
	}
}

func TestLedgerServiceRecordDebtUnknownDebtor(t *testing.T) {
	svc := services.NewLedgerService(
		knownUsers("bob"),
		debtRepoStub{
			createPairFn: func(context.Context, domain.Debt) (domain.Debt, error) {
				t.Fatal("no ledger writes may happen for an unknown debtor")
				return domain.Debt{}, nil
			},
		},
		transactionRepoStub{},
	)

	resp, err := svc.RecordDebt(context.Background(), models.RecordDebtRequest{
		DebtorName:   "ghost",
		CreditorName: "bob",
		Amount:       "100",
	})
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if resp.Message != "user not found" {
		t.Fatalf("expected message %q, got %q", "user not found", resp.Message)
	}
}

func TestLedgerServiceRecordDebtValidationError(t *testing.T) {
	svc := services.NewLedgerService(knownUsers(), debtRepoStub{}, transactionRepoStub{})

	_, err := svc.RecordDebt(context.Background(), models.RecordDebtRequest{
		DebtorName:   "alice",
		CreditorName: "bob",
		Amount:       "-5",
	})
	if err == nil {
		t.Fatal("expected validation error for non-positive amount")
	}
}

func TestLedgerServiceRecordDebtCopiesShareFields(t *testing.T) {
	var created domain.Debt
	svc := services.NewLedgerService(
		knownUsers("alice", "bob"),
		debtRepoStub{
			createPairFn: func(_ context.Context, debt domain.Debt) (domain.Debt, error) {
				created = debt
				return debt, nil
			},
		},
		transactionRepoStub{},
	)

	resp, err := svc.RecordDebt(context.Background(), models.RecordDebtRequest{
		DebtorName:   "alice",
		CreditorName: "bob",
		Amount:       "100",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !resp.Success || resp.Data == nil {
		t.Fatal("expected successful response with data")
	}
	if created.PairID == "" {
		t.Fatal("expected a pair reference to be generated")
	}
	if created.Amount != "100.00" || created.Remaining != "100.00" {
		t.Fatalf("expected amount and remaining 100.00, got %q/%q", created.Amount, created.Remaining)
	}
	if created.Status != domain.DebtStatusUnpaid {
		t.Fatalf("expected new debt to be UNPAID, got %q", created.Status)
	}
}

func TestLedgerServiceSettleDebtNoOutstanding(t *testing.T) {
	svc := services.NewLedgerService(
		knownUsers("alice", "bob"),
		debtRepoStub{},
		transactionRepoStub{
			appendFn: func(context.Context, domain.Transaction) (domain.Transaction, error) {
				t.Fatal("no transaction may be logged when no debt exists")
				return domain.Transaction{}, nil
			},
		},
	)

	resp, err := svc.SettleDebt(context.Background(), models.SettleDebtRequest{
		DebtorName:   "alice",
		CreditorName: "bob",
		Amount:       "40",
	})
	if !errors.Is(err, domain.ErrNoOutstandingDebt) {
		t.Fatalf("expected ErrNoOutstandingDebt, got %v", err)
	}
	if resp.Message != "no outstanding debt" {
		t.Fatalf("expected message %q, got %q", "no outstanding debt", resp.Message)
	}
}

func TestLedgerServiceSettleDebtLogsBeforeLedgerUpdate(t *testing.T) {
	var calls []string

	svc := services.NewLedgerService(
		knownUsers("alice", "bob"),
		debtRepoStub{
			oldestUnpaidFn: func(context.Context, string, string) (domain.Debt, error) {
				return domain.Debt{
					PairID:    "pair-1",
					Debtor:    "alice",
					Creditor:  "bob",
					Amount:    "100.00",
					Remaining: "100.00",
					Status:    domain.DebtStatusUnpaid,
				}, nil
			},
			settlePairFn: func(_ context.Context, pairID, expectedRemaining, newRemaining string, status domain.DebtStatus) error {
				calls = append(calls, "settle")
				if expectedRemaining != "100.00" {
					t.Fatalf("expected compare-and-set guard 100.00, got %q", expectedRemaining)
				}
				if newRemaining != "60.00" || status != domain.DebtStatusUnpaid {
					t.Fatalf("expected partial payment to leave 60.00 UNPAID, got %q/%q", newRemaining, status)
				}
				return nil
			},
		},
		transactionRepoStub{
			appendFn: func(_ context.Context, transaction domain.Transaction) (domain.Transaction, error) {
				calls = append(calls, "append")
				if transaction.Amount != "40.00" {
					t.Fatalf("expected logged amount 40.00, got %q", transaction.Amount)
				}
				return transaction, nil
			},
		},
	)

	resp, err := svc.SettleDebt(context.Background(), models.SettleDebtRequest{
		DebtorName:   "alice",
		CreditorName: "bob",
		Amount:       "40",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !resp.Success || resp.Data == nil {
		t.Fatal("expected successful response with data")
	}
	if len(calls) != 2 || calls[0] != "append" || calls[1] != "settle" {
		t.Fatalf("expected transaction log append before ledger update, got %v", calls)
	}
}

func TestLedgerServiceSettleDebtOverpaymentAbsorbed(t *testing.T) {
	svc := services.NewLedgerService(
		knownUsers("alice", "bob"),
		debtRepoStub{
			oldestUnpaidFn: func(context.Context, string, string) (domain.Debt, error) {
				return domain.Debt{
					PairID:    "pair-1",
					Debtor:    "alice",
					Creditor:  "bob",
					Amount:    "50.00",
					Remaining: "50.00",
					Status:    domain.DebtStatusUnpaid,
				}, nil
			},
			settlePairFn: func(_ context.Context, _, _, newRemaining string, status domain.DebtStatus) error {
				if newRemaining != "0.00" || status != domain.DebtStatusPaid {
					t.Fatalf("expected overpayment to close the debt, got %q/%q", newRemaining, status)
				}
				return nil
			},
		},
		transactionRepoStub{
			appendFn: func(_ context.Context, transaction domain.Transaction) (domain.Transaction, error) {
				if transaction.Amount != "80.00" {
					t.Fatalf("expected full attempted amount 80.00 in the log, got %q", transaction.Amount)
				}
				return transaction, nil
			},
		},
	)

	resp, err := svc.SettleDebt(context.Background(), models.SettleDebtRequest{
		DebtorName:   "alice",
		CreditorName: "bob",
		Amount:       "80",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if resp.Data == nil || resp.Data.Remaining != "0.00" || resp.Data.Status != string(domain.DebtStatusPaid) {
		t.Fatalf("expected PAID with remaining 0.00, got %+v", resp.Data)
	}
}

func TestLedgerServiceSettleDebtConcurrentLoser(t *testing.T) {
	svc := services.NewLedgerService(
		knownUsers("alice", "bob"),
		debtRepoStub{
			oldestUnpaidFn: func(context.Context, string, string) (domain.Debt, error) {
				return domain.Debt{
					PairID:    "pair-1",
					Debtor:    "alice",
					Creditor:  "bob",
					Amount:    "50.00",
					Remaining: "50.00",
					Status:    domain.DebtStatusUnpaid,
				}, nil
			},
			settlePairFn: func(context.Context, string, string, string, domain.DebtStatus) error {
				return domain.ErrRecordNotFound
			},
		},
		transactionRepoStub{},
	)

	resp, err := svc.SettleDebt(context.Background(), models.SettleDebtRequest{
		DebtorName:   "alice",
		CreditorName: "bob",
		Amount:       "50",
	})
	if err == nil {
		t.Fatal("expected error when the compare-and-set loses the race")
	}
	if resp.Success {
		t.Fatal("expected failure response")
	}
}

func TestLedgerServiceListDebtsUnknownUser(t *testing.T) {
	svc := services.NewLedgerService(knownUsers(), debtRepoStub{}, transactionRepoStub{})

	resp, err := svc.ListDebts(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if resp.Message != "user not found" {
		t.Fatalf("expected message %q, got %q", "user not found", resp.Message)
	}
}

func TestLedgerServiceListTransactionsUnknownUser(t *testing.T) {
	svc := services.NewLedgerService(knownUsers(), debtRepoStub{}, transactionRepoStub{})

	resp, err := svc.ListTransactions(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if resp.Message != "user not found" {
		t.Fatalf("expected message %q, got %q", "user not found", resp.Message)
	}
}
