package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/api-sage/p2p-debt-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/p2p-debt-ledger/src/internal/commons"
	"github.com/api-sage/p2p-debt-ledger/src/internal/domain"
	"github.com/api-sage/p2p-debt-ledger/src/internal/logger"
	"github.com/api-sage/p2p-debt-ledger/src/internal/usecase/service_interfaces"
	"golang.org/x/crypto/bcrypt"
)

// Verify that UserService implements the service_interfaces.UserService interface
var _ service_interfaces.UserService = (*UserService)(nil)

type UserService struct {
	accountRepo domain.AccountRepository
	debtRepo    domain.DebtRepository
}

func NewUserService(accountRepo domain.AccountRepository, debtRepo domain.DebtRepository) *UserService {
	return &UserService{accountRepo: accountRepo, debtRepo: debtRepo}
}

func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (commons.Response[models.RegisterResponse], error) {
	logger.Info("user service register request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		logger.Error("user service register validation failed", err, nil)
		return commons.ErrorResponse[models.RegisterResponse]("validation failed", err.Error()), err
	}

	username := strings.TrimSpace(req.Username)

	_, err := s.accountRepo.GetByUsername(ctx, username)
	if err == nil {
		logger.Info("user service register duplicate username", logger.Fields{
			"username": username,
		})
		return commons.ErrorResponse[models.RegisterResponse]("user exists"), domain.ErrDuplicateUser
	}
	if !errors.Is(err, domain.ErrRecordNotFound) {
		logger.Error("user service register lookup failed", err, logger.Fields{
			"username": username,
		})
		return commons.ErrorResponse[models.RegisterResponse]("failed to register user", "Unable to register user right now"), err
	}

	hashed, err := hashPassword(req.Password)
	if err != nil {
		logger.Error("user service register hash password failed", err, nil)
		return commons.ErrorResponse[models.RegisterResponse]("failed to register user", "failed to hash password"), err
	}

	account := domain.Account{
		Username:     username,
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hashed,
	}

	created, err := s.accountRepo.Create(ctx, account)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) {
			return commons.ErrorResponse[models.RegisterResponse]("user exists"), err
		}
		logger.Error("user service register repository failed", err, logger.Fields{
			"username": username,
		})
		return commons.ErrorResponse[models.RegisterResponse]("failed to register user", "Unable to register user right now"), err
	}

	if err := s.debtRepo.ProvisionLedger(ctx, created.Username); err != nil {
		logger.Error("user service register provision ledger failed", err, logger.Fields{
			"username": created.Username,
		})
		return commons.ErrorResponse[models.RegisterResponse]("failed to register user", "Unable to register user right now"), err
	}

	response := models.RegisterResponse{
		UserID:   created.ID,
		Username: created.Username,
	}

	logger.Info("user service register success", logger.Fields{
		"userId":   response.UserID,
		"username": response.Username,
	})

	return commons.SuccessResponse("user registered successfully", response), nil
}

func (s *UserService) GetUser(ctx context.Context, username string) (commons.Response[models.GetUserResponse], error) {
	logger.Info("user service get user request", logger.Fields{
		"username": username,
	})

	if strings.TrimSpace(username) == "" {
		return commons.ErrorResponse[models.GetUserResponse]("validation failed", "username is required"), fmt.Errorf("username is required")
	}

	account, err := s.accountRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.GetUserResponse]("user not found"), err
		}
		logger.Error("user service get user failed", err, logger.Fields{
			"username": username,
		})
		return commons.ErrorResponse[models.GetUserResponse]("failed to get user", "Unable to fetch user right now"), err
	}

	response := models.GetUserResponse{
		ID:        account.ID,
		Username:  account.Username,
		Email:     account.Email,
		CreatedAt: account.CreatedAt.Format(time.RFC3339),
	}

	return commons.SuccessResponse("user fetched successfully", response), nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(hashed), nil
}
