package users

import (
	"context"
	"time"

	"github.com/dsmelov/securekey/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetByResetCode finds the user holding an unexpired reset code.
	GetByResetCode(ctx context.Context, code string, now time.Time) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}
