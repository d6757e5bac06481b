package service_interfaces

import (
	"context"

	"github.com/api-sage/p2p-debt-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/p2p-debt-ledger/src/internal/commons"
)

type UserService interface {
	Register(ctx context.Context, req models.RegisterRequest) (commons.Response[models.RegisterResponse], error)
	GetUser(ctx context.Context, username string) (commons.Response[models.GetUserResponse], error)
}
