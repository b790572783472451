package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/claveo/internal/common"
	"github.com/dmitrijs2005/claveo/internal/dbx"
	"github.com/dmitrijs2005/claveo/internal/logging"
	"github.com/dmitrijs2005/claveo/internal/server/models"
	"github.com/dmitrijs2005/claveo/internal/server/repositories/repomanager"
)

// PasswordVerifier hashes and checks auth secrets. *auth.PasswordHasher implements it.
type PasswordVerifier interface {
	Hash(secret string) (string, error)
	Verify(encoded, secret string) bool
	// Dummy is a verifier no real secret matches, compared against when
	// the email is unknown.
	Dummy() string
}

// RegisterInput is what a client sends to create an account. AuthPassword is
// already derived from the master password on the client.
type RegisterInput struct {
	Email        string
	AuthPassword string
	KDFSalt      string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User   *models.User
	Tokens *TokenPair
}

// UserService provides authentication-related operations:
// - Register: create users and open their first session
// - Login: verify credentials and mint tokens
// - Refresh / Logout: rotate or revoke a refresh token
// - GetSalt: hand out the KDF salt a client needs before Login
type UserService struct {
	db          dbx.TxRunner
	repomanager repomanager.RepositoryManager
	sessions    *SessionService
	verifier    PasswordVerifier
	logger      logging.Logger
}

func NewUserService(db dbx.TxRunner, m repomanager.RepositoryManager, sessions *SessionService, v PasswordVerifier, l logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		sessions:    sessions,
		verifier:    v,
		logger:      l.With("module", "users"),
	}
}

// Register creates the identity and its first session in one transaction.
// Emails differing only by case or surrounding blanks collide.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Email = common.NormalizeEmail(in.Email)
	if err := required("email", in.Email, "authPassword", in.AuthPassword, "kdfSalt", in.KDFSalt); err != nil {
		return nil, err
	}

	_, err := s.repomanager.Users(s.db).GetUserByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, common.ErrDuplicateIdentity
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	verifier, err := s.verifier.Hash(in.AuthPassword)
	if err != nil {
		return nil, fmt.Errorf("hash verifier: %w", err)
	}

	result := &AuthResult{}
	err = s.db.WithTx(ctx, nil, func(ctx context.Context, tx dbx.DBTX) error {
		user, err := s.repomanager.Users(tx).Create(ctx, &models.User{
			Email:            in.Email,
			PasswordVerifier: verifier,
			KDFSalt:          in.KDFSalt,
		})
		if err != nil {
			return err
		}
		result.User = user
		result.Tokens, err = s.sessions.Issue(ctx, tx, user.ID, user.Email)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user registered", "user_id", result.User.ID)
	return result, nil
}

// Login checks authPassword against the stored verifier. Exactly one
// verifier comparison runs whether or not the email exists.
func (s *UserService) Login(ctx context.Context, email, authPassword string) (*AuthResult, error) {
	email = common.NormalizeEmail(email)
	if err := required("email", email, "authPassword", authPassword); err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	encoded := s.verifier.Dummy()
	if user != nil {
		encoded = user.PasswordVerifier
	}
	ok := s.verifier.Verify(encoded, authPassword)
	if user == nil || !ok {
		return nil, common.ErrInvalidCredentials
	}

	tokens, err := s.sessions.Issue(ctx, s.db, user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user logged in", "user_id", user.ID)
	return &AuthResult{User: user, Tokens: tokens}, nil
}

// Refresh consumes refreshToken and returns a new pair.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	return s.sessions.Rotate(ctx, refreshToken)
}

// Logout revokes refreshToken for userID. An empty token is a no-op, and
// repeating a logout is harmless.
func (s *UserService) Logout(ctx context.Context, refreshToken, userID string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.sessions.Revoke(ctx, refreshToken, userID); err != nil {
		return err
	}
	s.logger.Info(ctx, "user logged out", "user_id", userID)
	return nil
}

// GetSalt returns the stored KDF salt for email.
func (s *UserService) GetSalt(ctx context.Context, email string) (string, error) {
	email = common.NormalizeEmail(email)
	if err := required("email", email); err != nil {
		return "", err
	}

	salt, err := s.repomanager.Users(s.db).GetSaltByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrIdentityNotFound
		}
		return "", fmt.Errorf("lookup salt: %w", err)
	}
	return salt, nil
}

// required takes field/value pairs and rejects the blank ones. Length and
// format rules belong to the transports.
func required(pairs ...string) error {
	v := &common.ValidationError{}
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			v.Add(pairs[i], "is required")
		}
	}
	return v.OrNil()
}
