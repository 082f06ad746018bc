package user

import (
	"context"

	domuser "github.com/kailas-cloud/promemo/internal/domain/user"
)

// Repository defines the storage contract for user operations.
type Repository interface {
	Get(ctx context.Context, id string) (domuser.User, error)
	Update(ctx context.Context, u *domuser.User) error
	List(ctx context.Context, offset, limit int) ([]domuser.User, error)
	Delete(ctx context.Context, id string) error
}
