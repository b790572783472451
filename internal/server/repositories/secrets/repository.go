// Package secrets provides the ownership-scoped store of opaque encrypted
// records. Every query carries the owner predicate, so a record owned by
// someone else behaves exactly like a missing one.
package secrets

import (
	"context"

	"github.com/dmitrijs2005/claveo/internal/server/models"
)

type Repository interface {
	// List returns the owner's records, most recently updated first.
	List(ctx context.Context, userID string) ([]*models.Secret, error)
	// Create inserts secret, filling ID when empty and both timestamps.
	Create(ctx context.Context, secret *models.Secret) (*models.Secret, error)
	// Find returns common.ErrorNotFound unless id exists and belongs to userID.
	Find(ctx context.Context, id string, userID string) (*models.Secret, error)
	// Update replaces the opaque fields of secret (matched by ID and UserID)
	// and bumps updated_at. Returns common.ErrorNotFound when nothing matched.
	Update(ctx context.Context, secret *models.Secret) (*models.Secret, error)
	// Delete removes id if it belongs to userID and reports the rows removed.
	Delete(ctx context.Context, id string, userID string) (int64, error)
}
