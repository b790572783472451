package services

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/claveo/internal/dbx"
	"github.com/dmitrijs2005/claveo/internal/logging"
	"github.com/dmitrijs2005/claveo/internal/server/auth"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	users    *memUsers
	refresh  *memRefresh
	secrets  *memSecrets
	verifier *countingVerifier
	issuer   *auth.Issuer
	sessions *SessionService
	userSvc  *UserService
	vault    *SecretService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithDB(t, fakeTx{})
}

func newTestEnvWithDB(t *testing.T, db dbx.TxRunner) *testEnv {
	t.Helper()

	h, err := auth.NewPasswordHasher(auth.Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1})
	require.NoError(t, err)

	e := &testEnv{
		users:    newMemUsers(),
		refresh:  newMemRefresh(),
		secrets:  newMemSecrets(),
		verifier: &countingVerifier{PasswordHasher: h},
		issuer:   auth.NewIssuer("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour),
	}
	rm := &fakeRepoManager{users: e.users, refresh: e.refresh, secrets: e.secrets}

	e.sessions = NewSessionService(db, rm, e.issuer, logging.Nop{})
	e.userSvc = NewUserService(db, rm, e.sessions, e.verifier, logging.Nop{})
	e.vault = NewSecretService(db, rm, logging.Nop{})
	return e
}
