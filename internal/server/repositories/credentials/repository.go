package credentials

import (
	"context"
	"time"

	"github.com/dsmelov/securekey/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, record *models.CredentialRecord) (*models.CredentialRecord, error)
	// GetByID scopes the lookup to the owning user; a foreign id is ErrNotFound.
	GetByID(ctx context.Context, userID, id string) (*models.CredentialRecord, error)
	ListByUser(ctx context.Context, userID string) ([]*models.CredentialRecord, error)
	Update(ctx context.Context, record *models.CredentialRecord) error
	Delete(ctx context.Context, userID, id string) error
	// ListDue returns records whose next_reminder is at or before now.
	ListDue(ctx context.Context, userID string, now time.Time) ([]*models.CredentialRecord, error)
}
