package services

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/claveo/internal/common"
	"github.com/dmitrijs2005/claveo/internal/dbx"
	"github.com/dmitrijs2005/claveo/internal/server/auth"
	"github.com/dmitrijs2005/claveo/internal/server/models"
	"github.com/dmitrijs2005/claveo/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/claveo/internal/server/repositories/secrets"
	"github.com/dmitrijs2005/claveo/internal/server/repositories/users"
	"github.com/google/uuid"
)

// --- db ---

// fakeTx is a TxRunner whose transactions just run fn. The in-memory repos
// below ignore the handle they are bound to.
type fakeTx struct{}

func (fakeTx) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, errors.New("fakeTx: not supported")
}
func (fakeTx) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, errors.New("fakeTx: not supported")
}
func (fakeTx) QueryRowContext(context.Context, string, ...any) *sql.Row { return nil }
func (f fakeTx) WithTx(ctx context.Context, _ *sql.TxOptions, fn func(context.Context, dbx.DBTX) error) error {
	return fn(ctx, f)
}

// --- users ---

type memUsers struct {
	mu        sync.Mutex
	byEmail   map[string]*models.User
	getErr    error
	createErr error
}

func newMemUsers() *memUsers { return &memUsers{byEmail: map[string]*models.User{}} }

func (r *memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, ok := r.byEmail[u.Email]; ok {
		return nil, common.ErrDuplicateIdentity
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now()
	cp := *u
	r.byEmail[u.Email] = &cp
	return u, nil
}

func (r *memUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	u, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUsers) GetSaltByEmail(ctx context.Context, email string) (string, error) {
	u, err := r.GetUserByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	return u.KDFSalt, nil
}

// --- refresh tokens ---

type memRefresh struct {
	mu        sync.Mutex
	byToken   map[string]*models.RefreshToken
	createErr error
}

func newMemRefresh() *memRefresh { return &memRefresh{byToken: map[string]*models.RefreshToken{}} }

func (r *memRefresh) Create(_ context.Context, userID, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.byToken[token] = &models.RefreshToken{
		ID: uuid.NewString(), UserID: userID, Token: token, ExpiresAt: expiresAt, CreatedAt: time.Now(),
	}
	return nil
}

func (r *memRefresh) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.byToken[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *rt
	return &cp, nil
}

func (r *memRefresh) DeleteByID(_ context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, rt := range r.byToken {
		if rt.ID == id {
			delete(r.byToken, k)
			return 1, nil
		}
	}
	return 0, nil
}

func (r *memRefresh) DeleteForUser(_ context.Context, token, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rt, ok := r.byToken[token]; ok && rt.UserID == userID {
		delete(r.byToken, token)
		return 1, nil
	}
	return 0, nil
}

func (r *memRefresh) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k, rt := range r.byToken {
		if rt.Expired(now) {
			delete(r.byToken, k)
			n++
		}
	}
	return n, nil
}

func (r *memRefresh) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byToken)
}

// --- secrets ---

type memSecrets struct {
	mu    sync.Mutex
	byID  map[string]*models.Secret
	clock time.Time
}

func newMemSecrets() *memSecrets {
	return &memSecrets{byID: map[string]*models.Secret{}, clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (r *memSecrets) tick() time.Time {
	r.clock = r.clock.Add(time.Second)
	return r.clock
}

func (r *memSecrets) List(_ context.Context, userID string) ([]*models.Secret, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Secret, 0)
	for _, s := range r.byID {
		if s.UserID == userID {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *memSecrets) Create(_ context.Context, s *models.Secret) (*models.Secret, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := r.tick()
	s.CreatedAt, s.UpdatedAt = now, now
	cp := *s
	r.byID[s.ID] = &cp
	return s, nil
}

func (r *memSecrets) Find(_ context.Context, id, userID string) (*models.Secret, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if uuid.Validate(id) != nil {
		return nil, errors.New(`invalid input syntax for type uuid: "` + id + `"`)
	}
	s, ok := r.byID[id]
	if !ok || s.UserID != userID {
		return nil, common.ErrorNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memSecrets) Update(_ context.Context, s *models.Secret) (*models.Secret, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[s.ID]
	if !ok || cur.UserID != s.UserID {
		return nil, common.ErrorNotFound
	}
	cur.EncryptedData, cur.IV, cur.MAC = s.EncryptedData, s.IV, s.MAC
	cur.UpdatedAt = r.tick()
	cp := *cur
	return &cp, nil
}

func (r *memSecrets) Delete(_ context.Context, id, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok || s.UserID != userID {
		return 0, nil
	}
	delete(r.byID, id)
	return 1, nil
}

// --- manager ---

type fakeRepoManager struct {
	users   users.Repository
	refresh refreshtokens.Repository
	secrets secrets.Repository
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return m.users }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.refresh }
func (m *fakeRepoManager) Secrets(dbx.DBTX) secrets.Repository             { return m.secrets }

// --- verifier ---

// countingVerifier wraps the real hasher and records every comparison.
type countingVerifier struct {
	*auth.PasswordHasher
	calls    atomic.Int32
	mu       sync.Mutex
	compared []string
}

func (v *countingVerifier) Verify(encoded, secret string) bool {
	v.calls.Add(1)
	v.mu.Lock()
	v.compared = append(v.compared, encoded)
	v.mu.Unlock()
	return v.PasswordHasher.Verify(encoded, secret)
}

func (v *countingVerifier) reset() {
	v.calls.Store(0)
	v.mu.Lock()
	v.compared = nil
	v.mu.Unlock()
}
