// Package refreshtokens declares the server-side repository contract for
// managing refresh tokens in persistent storage.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/claveo/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking refresh tokens.
type Repository interface {
	// Create stores a new refresh token row for userID expiring at expiresAt.
	Create(ctx context.Context, userID string, token string, expiresAt time.Time) error

	// Find looks up a refresh token by its token string and returns its row.
	// Implementations return common.ErrorNotFound when the token is absent.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// DeleteByID removes one row and reports how many rows were deleted, so
	// callers can tell whether a concurrent request consumed it first.
	DeleteByID(ctx context.Context, id string) (int64, error)

	// DeleteForUser removes rows matching both token and userID.
	DeleteForUser(ctx context.Context, token string, userID string) (int64, error)

	// DeleteExpired purges every row that expired before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
