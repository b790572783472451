// Package validation checks the shape of client input before it reaches the
// services. Each function returns nil or a *common.ValidationError listing
// every rejected field by its wire name.
package validation

import (
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/claveo/internal/common"
	"github.com/google/uuid"
)

const (
	emailMinLen        = 3
	emailMaxLen        = 255
	authPasswordMinLen = 32
	authPasswordMaxLen = 1024
	kdfSaltMinLen      = 16
	kdfSaltMaxLen      = 256
)

// Register checks a registration request.
func Register(email, authPassword, kdfSalt string) error {
	v := &common.ValidationError{}
	checkEmail(v, email)
	checkLength(v, "authPassword", authPassword, authPasswordMinLen, authPasswordMaxLen)
	checkLength(v, "kdfSalt", kdfSalt, kdfSaltMinLen, kdfSaltMaxLen)
	return v.OrNil()
}

// Login checks a login request. Any non-empty authPassword is accepted so
// a wrong one is reported as bad credentials, not bad input.
func Login(email, authPassword string) error {
	v := &common.ValidationError{}
	checkEmail(v, email)
	checkRequired(v, "authPassword", authPassword)
	return v.OrNil()
}

func Email(email string) error {
	v := &common.ValidationError{}
	checkEmail(v, email)
	return v.OrNil()
}

func RefreshToken(token string) error {
	v := &common.ValidationError{}
	checkRequired(v, "refreshToken", token)
	return v.OrNil()
}

// Secret checks the three opaque fields of a record. Their content is never
// inspected beyond being present.
func Secret(encryptedData, iv, mac string) error {
	v := &common.ValidationError{}
	checkSecret(v, encryptedData, iv, mac)
	return v.OrNil()
}

// SecretUpdate is Secret plus a record id.
func SecretUpdate(id, encryptedData, iv, mac string) error {
	v := &common.ValidationError{}
	checkID(v, id)
	checkSecret(v, encryptedData, iv, mac)
	return v.OrNil()
}

// ID checks a record id is a canonical UUID.
func ID(id string) error {
	v := &common.ValidationError{}
	checkID(v, id)
	return v.OrNil()
}

func checkEmail(v *common.ValidationError, email string) {
	email = common.NormalizeEmail(email)
	n := utf8.RuneCountInString(email)
	switch {
	case n < emailMinLen:
		v.Add("email", "must be at least 3 characters")
	case n > emailMaxLen:
		v.Add("email", "must be at most 255 characters")
	case !common.IsEmail(email):
		v.Add("email", "invalid email format")
	}
}

func checkLength(v *common.ValidationError, field, value string, min, max int) {
	n := utf8.RuneCountInString(value)
	if n < min {
		v.Add(field, "too short")
	} else if n > max {
		v.Add(field, "too long")
	}
}

func checkRequired(v *common.ValidationError, field, value string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "is required")
	}
}

func checkSecret(v *common.ValidationError, encryptedData, iv, mac string) {
	checkRequired(v, "encryptedData", encryptedData)
	checkRequired(v, "iv", iv)
	checkRequired(v, "mac", mac)
}

func checkID(v *common.ValidationError, id string) {
	if len(id) != 36 {
		v.Add("id", "invalid id")
		return
	}
	if _, err := uuid.Parse(id); err != nil {
		v.Add("id", "invalid id")
	}
}
