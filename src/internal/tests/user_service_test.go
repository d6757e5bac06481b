package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/api-sage/p2p-debt-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/p2p-debt-ledger/src/internal/domain"
	"github.com/api-sage/p2p-debt-ledger/src/internal/usecase/services"
	"golang.org/x/crypto/bcrypt"
)

type accountRepoStub struct {
	createFn        func(ctx context.Context, account domain.Account) (domain.Account, error)
	getByUsernameFn func(ctx context.Context, username string) (domain.Account, error)
}

func (s accountRepoStub) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	if s.createFn != nil {
		return s.createFn(ctx, account)
	}
	return domain.Account{}, nil
}

func (s accountRepoStub) GetByUsername(ctx context.Context, username string) (domain.Account, error) {
	if s.getByUsernameFn != nil {
		return s.getByUsernameFn(ctx, username)
	}
	return domain.Account{}, domain.ErrRecordNotFound
}

func TestUserServiceRegisterSuccess(t *testing.T) {
	var provisioned []string

	svc := services.NewUserService(
		accountRepoStub{
			createFn: func(_ context.Context, account domain.Account) (domain.Account, error) {
				if account.PasswordHash == "" || account.PasswordHash == "s3cret" {
					t.Fatal("expected hashed password before persistence")
				}
				if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("s3cret")); err != nil {
					t.Fatalf("stored hash does not match password: %v", err)
				}
				account.ID = "acc-1"
				account.CreatedAt = time.Now().UTC()
				return account, nil
			},
		},
		debtRepoStub{
			provisionFn: func(_ context.Context, owner string) error {
				provisioned = append(provisioned, owner)
				return nil
			},
		},
	)

	resp, err := svc.Register(context.Background(), models.RegisterRequest{
		Username: "alice",
		Password: "s3cret",
		Email:    "alice@example.com",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !resp.Success || resp.Data == nil {
		t.Fatal("expected successful response with data")
	}
	if resp.Data.UserID != "acc-1" {
		t.Fatalf("expected user id acc-1, got %q", resp.Data.UserID)
	}
	if len(provisioned) != 1 || provisioned[0] != "alice" {
		t.Fatalf("expected ledger provisioned for alice, got %v", provisioned)
	}
}

func TestUserServiceRegisterDuplicateUsername(t *testing.T) {
	svc := services.NewUserService(
		accountRepoStub{
			getByUsernameFn: func(_ context.Context, username string) (domain.Account, error) {
				return domain.Account{ID: "acc-1", Username: username}, nil
			},
		},
		debtRepoStub{
			provisionFn: func(context.Context, string) error {
				t.Fatal("ledger must not be provisioned for a duplicate user")
				return nil
			},
		},
	)

	resp, err := svc.Register(context.Background(), models.RegisterRequest{
		Username: "alice",
		Password: "s3cret",
		Email:    "alice@example.com",
	})
	if !errors.Is(err, domain.ErrDuplicateUser) {
		t.Fatalf("expected ErrDuplicateUser, got %v", err)
	}
	if resp.Message != "user exists" {
		t.Fatalf("expected message %q, got %q", "user exists", resp.Message)
	}
}

func TestUserServiceRegisterValidationError(t *testing.T) {
	svc := services.NewUserService(accountRepoStub{}, debtRepoStub{})

	resp, err := svc.Register(context.Background(), models.RegisterRequest{})
	if err == nil {
		t.Fatal("expected validation error for empty register request")
	}
	if resp.Message != "validation failed" {
		t.Fatalf("expected validation failure message, got %q", resp.Message)
	}
	for _, want := range []string{"username", "password", "email"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected error to mention %q, got %q", want, err.Error())
		}
	}
}

func TestUserServiceGetUserNotFound(t *testing.T) {
	svc := services.NewUserService(accountRepoStub{}, debtRepoStub{})

	resp, err := svc.GetUser(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if resp.Message != "user not found" {
		t.Fatalf("expected message %q, got %q", "user not found", resp.Message)
	}
}
