// Package services contains server-side business logic: account
// registration and login, the refresh-token session lifecycle, and the
// ownership-checked vault of encrypted records.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/claveo/internal/common"
	"github.com/dmitrijs2005/claveo/internal/dbx"
	"github.com/dmitrijs2005/claveo/internal/logging"
	"github.com/dmitrijs2005/claveo/internal/server/auth"
	"github.com/dmitrijs2005/claveo/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenIssuer signs and verifies the two token kinds. *auth.Issuer implements it.
type TokenIssuer interface {
	IssueAccess(userID, email string) (string, error)
	IssueRefresh(userID, email string) (string, time.Time, error)
	ParseAccess(token string) (*auth.Claims, error)
	ParseRefresh(token string) (*auth.Claims, error)
}

// SessionService owns the refresh-token table. A refresh token moves from
// issued to exactly one of consumed, revoked or expired.
type SessionService struct {
	db          dbx.TxRunner
	repomanager repomanager.RepositoryManager
	tokens      TokenIssuer
	logger      logging.Logger
	now         func() time.Time
}

func NewSessionService(db dbx.TxRunner, m repomanager.RepositoryManager, tokens TokenIssuer, l logging.Logger) *SessionService {
	return &SessionService{
		db:          db,
		repomanager: m,
		tokens:      tokens,
		logger:      l.With("module", "sessions"),
		now:         time.Now,
	}
}

// Issue mints a pair and persists the refresh row through tx, which may be
// the pool or an open transaction.
func (s *SessionService) Issue(ctx context.Context, tx dbx.DBTX, userID, email string) (*TokenPair, error) {
	access, err := s.tokens.IssueAccess(userID, email)
	if err != nil {
		return nil, err
	}
	refresh, expiresAt, err := s.tokens.IssueRefresh(userID, email)
	if err != nil {
		return nil, err
	}
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, userID, refresh, expiresAt); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Rotate consumes refreshToken and returns a replacement pair. Of two
// concurrent calls with the same token at most one succeeds; the other sees
// ErrRefreshTokenNotFound.
func (s *SessionService) Rotate(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, common.ErrInvalidRefreshToken
	}

	repo := s.repomanager.RefreshTokens(s.db)
	row, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrRefreshTokenNotFound
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	if row.UserID != claims.UserID {
		return nil, common.ErrRefreshTokenNotFound
	}
	if row.Expired(s.now()) {
		if _, err := repo.DeleteByID(ctx, row.ID); err != nil {
			s.logger.Warn(ctx, "failed to delete expired refresh token", "user_id", row.UserID, "error", err)
		}
		return nil, common.ErrRefreshTokenExpired
	}

	var pair *TokenPair
	err = s.db.WithTx(ctx, nil, func(ctx context.Context, tx dbx.DBTX) error {
		n, err := s.repomanager.RefreshTokens(tx).DeleteByID(ctx, row.ID)
		if err != nil {
			return fmt.Errorf("consume refresh token: %w", err)
		}
		if n != 1 {
			return common.ErrRefreshTokenNotFound
		}
		pair, err = s.Issue(ctx, tx, claims.UserID, claims.Email)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "session refreshed", "user_id", claims.UserID)
	return pair, nil
}

// Revoke deletes refreshToken if it belongs to userID. Revoking an unknown
// or foreign token is not an error.
func (s *SessionService) Revoke(ctx context.Context, refreshToken, userID string) error {
	if _, err := s.repomanager.RefreshTokens(s.db).DeleteForUser(ctx, refreshToken, userID); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// Authenticate verifies an access token statelessly.
func (s *SessionService) Authenticate(accessToken string) (*auth.Claims, error) {
	return s.tokens.ParseAccess(accessToken)
}

// ReapExpired purges refresh rows that can no longer be used.
func (s *SessionService) ReapExpired(ctx context.Context) (int64, error) {
	n, err := s.repomanager.RefreshTokens(s.db).DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("reap refresh tokens: %w", err)
	}
	return n, nil
}

// RunReaper calls ReapExpired every interval until ctx is done. A
// non-positive interval disables it.
func (s *SessionService) RunReaper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.ReapExpired(ctx)
			if err != nil {
				s.logger.Error(ctx, "refresh token reaper failed", "error", err)
				continue
			}
			if n > 0 {
				s.logger.Info(ctx, "reaped expired refresh tokens", "count", n)
			}
		}
	}
}
