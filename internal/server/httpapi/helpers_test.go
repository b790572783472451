package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/claveo/internal/common"
	"github.com/dmitrijs2005/claveo/internal/logging"
	"github.com/dmitrijs2005/claveo/internal/server/auth"
	"github.com/dmitrijs2005/claveo/internal/server/models"
	"github.com/dmitrijs2005/claveo/internal/server/services"
	"github.com/stretchr/testify/require"
)

const (
	testUserID   = "3f1c2a7e-1b1d-4c55-9a0e-0d2b7f6c8e11"
	testRecordID = "9b2e4d10-7a4c-4f1e-8c1d-2e6a5b3c4d5f"
	goodToken    = "good-access"
	expiredToken = "expired-access"
)

var (
	goodPassword = strings.Repeat("a", 64)
	goodSalt     = strings.Repeat("s", 32)
)

type fakeAuth struct {
	registerIn  services.RegisterInput
	registerRes *services.AuthResult
	registerErr error

	loginRes *services.AuthResult
	loginErr error

	refreshRes *services.TokenPair
	refreshErr error

	logoutToken string
	logoutUser  string
	logoutErr   error

	salt    string
	saltErr error
}

func (f *fakeAuth) Register(_ context.Context, in services.RegisterInput) (*services.AuthResult, error) {
	f.registerIn = in
	return f.registerRes, f.registerErr
}

func (f *fakeAuth) Login(context.Context, string, string) (*services.AuthResult, error) {
	return f.loginRes, f.loginErr
}

func (f *fakeAuth) Refresh(context.Context, string) (*services.TokenPair, error) {
	return f.refreshRes, f.refreshErr
}

func (f *fakeAuth) Logout(_ context.Context, token, userID string) error {
	f.logoutToken, f.logoutUser = token, userID
	return f.logoutErr
}

func (f *fakeAuth) GetSalt(context.Context, string) (string, error) {
	return f.salt, f.saltErr
}

// fakeAuthn accepts goodToken and reports expiredToken as expired.
type fakeAuthn struct{}

func (fakeAuthn) Authenticate(token string) (*auth.Claims, error) {
	switch token {
	case goodToken:
		return &auth.Claims{UserID: testUserID, Email: "a@example.com", Type: auth.KindAccess}, nil
	case expiredToken:
		return nil, common.ErrTokenExpired
	default:
		return nil, common.ErrInvalidToken
	}
}

type fakeVault struct {
	userID string
	id     string
	in     services.SecretInput

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

func newTestServer(users AuthService, vault VaultService, mutate ...func(*Options)) *Server {
	opts := DefaultOptions()
	for _, m := range mutate {
		m(&opts)
	}
	s := NewServer("127.0.0.1:0", opts, logging.Nop{}, users, fakeAuthn{}, vault)
	s.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

type testEnvelope struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Message string              `json:"message"`
	Code    string              `json:"code"`
	Errors  []common.FieldError `json:"errors"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return env
}
