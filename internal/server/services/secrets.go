package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/claveo/internal/common"
	"github.com/dmitrijs2005/claveo/internal/dbx"
	"github.com/dmitrijs2005/claveo/internal/logging"
	"github.com/dmitrijs2005/claveo/internal/server/models"
	"github.com/dmitrijs2005/claveo/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/claveo/internal/server/repositories/secrets"
	"github.com/google/uuid"
)

// SecretInput carries the three opaque fields of a record.
type SecretInput struct {
	EncryptedData string
	IV            string
	MAC           string
}

func (in SecretInput) check() error {
	return required("encryptedData", in.EncryptedData, "iv", in.IV, "mac", in.MAC)
}

// SecretService is the owner-scoped vault. A record owned by someone else is
// reported exactly like a missing one.
type SecretService struct {
	db          dbx.DBTX
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewSecretService(db dbx.DBTX, m repomanager.RepositoryManager, l logging.Logger) *SecretService {
	return &SecretService{
		db:          db,
		repomanager: m,
		logger:      l.With("module", "secrets"),
	}
}

// List returns every record of userID, most recently updated first.
func (s *SecretService) List(ctx context.Context, userID string) ([]*models.Secret, error) {
	items, err := s.repomanager.Secrets(s.db).List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list secrets: %w", err)
	}
	return items, nil
}

// Create stores a new record for userID. Each call creates a new record.
func (s *SecretService) Create(ctx context.Context, userID string, in SecretInput) (*models.Secret, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	item, err := s.repomanager.Secrets(s.db).Create(ctx, &models.Secret{
		UserID:        userID,
		EncryptedData: in.EncryptedData,
		IV:            in.IV,
		MAC:           in.MAC,
	})
	if err != nil {
		return nil, fmt.Errorf("create secret: %w", err)
	}

	s.logger.Info(ctx, "secret created", "user_id", userID, "entry_id", item.ID)
	return item, nil
}

// Update replaces the opaque fields of id.
func (s *SecretService) Update(ctx context.Context, userID, id string, in SecretInput) (*models.Secret, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	repo := s.repomanager.Secrets(s.db)
	if err := s.checkOwned(ctx, repo, id, userID); err != nil {
		return nil, err
	}

	item, err := repo.Update(ctx, &models.Secret{
		ID:            id,
		UserID:        userID,
		EncryptedData: in.EncryptedData,
		IV:            in.IV,
		MAC:           in.MAC,
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrRecordNotFound
		}
		return nil, fmt.Errorf("update secret: %w", err)
	}

	s.logger.Info(ctx, "secret updated", "user_id", userID, "entry_id", id)
	return item, nil
}

// Delete removes id.
func (s *SecretService) Delete(ctx context.Context, userID, id string) error {
	repo := s.repomanager.Secrets(s.db)
	if err := s.checkOwned(ctx, repo, id, userID); err != nil {
		return err
	}

	n, err := repo.Delete(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("delete secret: %w", err)
	}
	if n == 0 {
		return common.ErrRecordNotFound
	}

	s.logger.Info(ctx, "secret deleted", "user_id", userID, "entry_id", id)
	return nil
}

// checkOwned reports a malformed id as missing so it never reaches the
// uuid-typed column.
func (s *SecretService) checkOwned(ctx context.Context, repo secrets.Repository, id, userID string) error {
	if uuid.Validate(id) != nil {
		return common.ErrRecordNotFound
	}
	if _, err := repo.Find(ctx, id, userID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrRecordNotFound
		}
		return fmt.Errorf("find secret: %w", err)
	}
	return nil
}
