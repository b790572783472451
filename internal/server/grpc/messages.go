package grpc

import "time"

type RegisterRequest struct {
	Email        string `json:"email"`
	AuthPassword string `json:"authPassword"`
	KDFSalt      string `json:"kdfSalt"`
}

type LoginRequest struct {
	Email        string `json:"email"`
	AuthPassword string `json:"authPassword"`
}

type User struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	KDFSalt string `json:"kdfSalt,omitempty"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthResponse answers Register and Login. KDFSalt is only set by Login.
type AuthResponse struct {
	User   User      `json:"user"`
	Tokens TokenPair `json:"tokens"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// LogoutRequest may omit the refresh token, which makes Logout a no-op.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken,omitempty"`
}

type LogoutResponse struct{}

type GetSaltRequest struct {
	Email string `json:"email"`
}

type GetSaltResponse struct {
	Salt string `json:"salt"`
}

type Secret struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	EncryptedData string    `json:"encryptedData"`
	IV            string    `json:"iv"`
	MAC           string    `json:"mac"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type ListSecretsRequest struct{}

type ListSecretsResponse struct {
	Secrets []Secret `json:"secrets"`
}

type CreateSecretRequest struct {
	EncryptedData string `json:"encryptedData"`
	IV            string `json:"iv"`
	MAC           string `json:"mac"`
}

type UpdateSecretRequest struct {
	ID            string `json:"id"`
	EncryptedData string `json:"encryptedData"`
	IV            string `json:"iv"`
	MAC           string `json:"mac"`
}

type DeleteSecretRequest struct {
	ID string `json:"id"`
}

type DeleteSecretResponse struct{}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}
