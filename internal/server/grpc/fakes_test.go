package grpc

import (
	"context"

	"github.com/dmitrijs2005/claveo/internal/common"
	"github.com/dmitrijs2005/claveo/internal/logging"
	"github.com/dmitrijs2005/claveo/internal/server/auth"
	"github.com/dmitrijs2005/claveo/internal/server/models"
	"github.com/dmitrijs2005/claveo/internal/server/ratelimit"
	"github.com/dmitrijs2005/claveo/internal/server/services"
)

const (
	testUserID   = "3f1c2a7e-1b1d-4c55-9a0e-0d2b7f6c8e11"
	testRecordID = "9b2e4d10-7a4c-4f1e-8c1d-2e6a5b3c4d5f"
	goodToken    = "good-access"
	expiredToken = "expired-access"
)

// ---- fakes ----

type fakeUser struct {
	regIn  services.RegisterInput
	regRes *services.AuthResult
	regErr error

	loginRes *services.AuthResult
	loginErr error

	refreshRes *services.TokenPair
	refreshErr error

	logoutToken, logoutUser string
	logoutErr               error

	salt    string
	saltErr error
}

func (f *fakeUser) Register(_ context.Context, in services.RegisterInput) (*services.AuthResult, error) {
	f.regIn = in
	return f.regRes, f.regErr
}
func (f *fakeUser) Login(context.Context, string, string) (*services.AuthResult, error) {
	return f.loginRes, f.loginErr
}
func (f *fakeUser) Refresh(context.Context, string) (*services.TokenPair, error) {
	return f.refreshRes, f.refreshErr
}
func (f *fakeUser) Logout(_ context.Context, token, userID string) error {
	f.logoutToken, f.logoutUser = token, userID
	return f.logoutErr
}
func (f *fakeUser) GetSalt(context.Context, string) (string, error) {
	return f.salt, f.saltErr
}

type fakeAuthn struct{}

func (fakeAuthn) Authenticate(token string) (*auth.Claims, error) {
	switch token {
	case goodToken:
		return &auth.Claims{UserID: testUserID, Type: auth.KindAccess}, nil
	case expiredToken:
		return nil, common.ErrTokenExpired
	}
	return nil, common.ErrInvalidToken
}

type fakeVault struct {
	userID, id string
	in         services.SecretInput

	items []*models.Secret
	item  *models.Secret
	err   error
}

func (f *fakeVault) List(_ context.Context, userID string) ([]*models.Secret, error) {
	f.userID = userID
	return f.items, f.err
}
func (f *fakeVault) Create(_ context.Context, userID string, in services.SecretInput) (*models.Secret, error) {
	f.userID, f.in = userID, in
	return f.item, f.err
}
func (f *fakeVault) Update(_ context.Context, userID, id string, in services.SecretInput) (*models.Secret, error) {
	f.userID, f.id, f.in = userID, id, in
	return f.item, f.err
}
func (f *fakeVault) Delete(_ context.Context, userID, id string) error {
	f.userID, f.id = userID, id
	return f.err
}

// ---- helpers ----

func newServer(u AuthService, v VaultService) *GRPCServer {
	return NewGRPCServer("127.0.0.1:0", logging.Nop{}, ratelimit.DefaultPolicy(), u, fakeAuthn{}, v)
}

func withUser(ctx context.Context) context.Context {
	return context.WithValue(ctx, userIDKey, testUserID)
}
