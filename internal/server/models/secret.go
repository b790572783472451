package models

import "time"

// Secret is an opaque client-encrypted record. The server never interprets
// EncryptedData, IV or MAC; they are stored and returned as given.
type Secret struct {
	ID            string
	UserID        string
	EncryptedData string
	IV            string
	MAC           string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
