// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is one registered identity. Email is stored normalized.
// PasswordVerifier is an encoded Argon2id hash of the client auth secret;
// KDFSalt is returned to clients verbatim and never changes.
type User struct {
	ID               string
	Email            string
	PasswordVerifier string
	KDFSalt          string
	CreatedAt        time.Time
}
