package secrets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/claveo/internal/common"
	"github.com/dmitrijs2005/claveo/internal/dbx"
	"github.com/dmitrijs2005/claveo/internal/server/models"
	"github.com/google/uuid"
)

// PostgresRepository implements secret storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]*models.Secret, error) {
	query := `
		SELECT id, encrypted_data, iv, mac, created_at, updated_at
		FROM secrets
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Secret, 0)
	for rows.Next() {
		item := &models.Secret{UserID: userID}
		if err := rows.Scan(&item.ID, &item.EncryptedData, &item.IV, &item.MAC, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Create(ctx context.Context, secret *models.Secret) (*models.Secret, error) {
	if secret.ID == "" {
		secret.ID = uuid.NewString()
	}

	query := `
		INSERT INTO secrets (id, user_id, encrypted_data, iv, mac)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		secret.ID, secret.UserID, secret.EncryptedData, secret.IV, secret.MAC).
		Scan(&secret.CreatedAt, &secret.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return secret, nil
}

func (r *PostgresRepository) Find(ctx context.Context, id string, userID string) (*models.Secret, error) {
	query := `
		SELECT id, user_id, encrypted_data, iv, mac, created_at, updated_at
		FROM secrets
		WHERE id = $1 AND user_id = $2
	`
	item := &models.Secret{}
	err := r.db.QueryRowContext(ctx, query, id, userID).
		Scan(&item.ID, &item.UserID, &item.EncryptedData, &item.IV, &item.MAC, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

func (r *PostgresRepository) Update(ctx context.Context, secret *models.Secret) (*models.Secret, error) {
	query := `
		UPDATE secrets
		SET encrypted_data = $1, iv = $2, mac = $3, updated_at = now()
		WHERE id = $4 AND user_id = $5
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		secret.EncryptedData, secret.IV, secret.MAC, secret.ID, secret.UserID).
		Scan(&secret.CreatedAt, &secret.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return secret, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string, userID string) (int64, error) {
	query := `
		DELETE FROM secrets
		WHERE id = $1 AND user_id = $2
	`
	return dbx.ExecRows(ctx, r.db, query, id, userID)
}
