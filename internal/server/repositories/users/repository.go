// Package users declares and implements the credential store: one identity
// per normalized email, lookup and insert only.
package users

import (
	"context"

	"github.com/dmitrijs2005/claveo/internal/server/models"
)

type Repository interface {
	// Create inserts user, filling ID when empty and CreatedAt from the
	// database. A taken email yields common.ErrDuplicateIdentity.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// GetUserByEmail returns common.ErrorNotFound when no identity matches.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetSaltByEmail returns the stored KDF salt or common.ErrorNotFound.
	GetSaltByEmail(ctx context.Context, email string) (string, error)
}
