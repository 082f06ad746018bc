package auth

import (
	"context"

	domuser "github.com/kailas-cloud/promemo/internal/domain/user"
)

// Users defines the storage contract for account operations.
type Users interface {
	Create(ctx context.Context, u *domuser.User) error
	Get(ctx context.Context, id string) (domuser.User, error)
	GetByEmail(ctx context.Context, email string) (domuser.User, error)
}
