package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/claveo/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	saltLength uint32 = 16
	hashLength uint32 = 32
)

// Argon2Params is the cost of one verifier computation.
type Argon2Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
}

// PasswordHasher produces and checks PHC-encoded Argon2id verifiers.
//
// It also holds a dummy verifier built at construction from a random secret
// nobody knows. Login compares against it when the email is unknown, so a
// miss costs the same as a wrong password.
type PasswordHasher struct {
	params Argon2Params
	dummy  string
}

func NewPasswordHasher(params Argon2Params) (*PasswordHasher, error) {
	h := &PasswordHasher{params: params}

	secret, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, fmt.Errorf("dummy secret: %w", err)
	}
	h.dummy, err = h.Hash(secret)
	if err != nil {
		return nil, fmt.Errorf("dummy verifier: %w", err)
	}
	return h, nil
}

// Hash returns "$argon2id$v=19$m=..,t=..,p=..$salt$hash" for secret.
func (h *PasswordHasher) Hash(secret string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	p := h.params
	key := argon2.IDKey([]byte(secret), salt, p.Iterations, p.Memory, p.Parallelism, hashLength)
	defer common.WipeByteArray(key)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Iterations, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

// Verify reports whether secret matches encoded. Malformed input is a mismatch.
func (h *PasswordHasher) Verify(encoded, secret string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}

	var p Argon2Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return false
	}
	if p.Memory == 0 || p.Iterations == 0 || p.Parallelism == 0 {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(want) == 0 {
		return false
	}

	got := argon2.IDKey([]byte(secret), salt, p.Iterations, p.Memory, p.Parallelism, uint32(len(want)))
	defer common.WipeByteArray(got)

	return subtle.ConstantTimeCompare(got, want) == 1
}

// Dummy returns the startup-generated verifier used for unknown emails.
func (h *PasswordHasher) Dummy() string {
	return h.dummy
}
