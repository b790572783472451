package grpc

import (
	"context"

	"github.com/dmitrijs2005/claveo/internal/server/models"
	"github.com/dmitrijs2005/claveo/internal/server/services"
	"github.com/dmitrijs2005/claveo/internal/server/validation"
)

func toTokenPair(p *services.TokenPair) TokenPair {
	return TokenPair{AccessToken: p.AccessToken, RefreshToken: p.RefreshToken}
}

func toSecret(m *models.Secret) *Secret {
	return &Secret{
		ID:            m.ID,
		UserID:        m.UserID,
		EncryptedData: m.EncryptedData,
		IV:            m.IV,
		MAC:           m.MAC,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func (s *GRPCServer) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if err := validation.Register(req.Email, req.AuthPassword, req.KDFSalt); err != nil {
		return nil, s.toStatus(ctx, "Register", err)
	}

	res, err := s.users.Register(ctx, services.RegisterInput{
		Email:        req.Email,
		AuthPassword: req.AuthPassword,
		KDFSalt:      req.KDFSalt,
	})
	if err != nil {
		return nil, s.toStatus(ctx, "Register", err)
	}

	return &AuthResponse{
		User:   User{ID: res.User.ID, Email: res.User.Email},
		Tokens: toTokenPair(res.Tokens),
	}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if err := validation.Login(req.Email, req.AuthPassword); err != nil {
		return nil, s.toStatus(ctx, "Login", err)
	}

	res, err := s.users.Login(ctx, req.Email, req.AuthPassword)
	if err != nil {
		return nil, s.toStatus(ctx, "Login", err)
	}

	return &AuthResponse{
		User:   User{ID: res.User.ID, Email: res.User.Email, KDFSalt: res.User.KDFSalt},
		Tokens: toTokenPair(res.Tokens),
	}, nil
}

func (s *GRPCServer) Refresh(ctx context.Context, req *RefreshRequest) (*TokenPair, error) {
	if err := validation.RefreshToken(req.RefreshToken); err != nil {
		return nil, s.toStatus(ctx, "Refresh", err)
	}

	pair, err := s.users.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, "Refresh", err)
	}
	out := toTokenPair(pair)
	return &out, nil
}

func (s *GRPCServer) Logout(ctx context.Context, req *LogoutRequest) (*LogoutResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, "Logout", err)
	}

	if err := s.users.Logout(ctx, req.RefreshToken, userID); err != nil {
		return nil, s.toStatus(ctx, "Logout", err)
	}
	return &LogoutResponse{}, nil
}

func (s *GRPCServer) GetSalt(ctx context.Context, req *GetSaltRequest) (*GetSaltResponse, error) {
	if err := validation.Email(req.Email); err != nil {
		return nil, s.toStatus(ctx, "GetSalt", err)
	}

	salt, err := s.users.GetSalt(ctx, req.Email)
	if err != nil {
		return nil, s.toStatus(ctx, "GetSalt", err)
	}
	return &GetSaltResponse{Salt: salt}, nil
}

func (s *GRPCServer) ListSecrets(ctx context.Context, _ *ListSecretsRequest) (*ListSecretsResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, "ListSecrets", err)
	}

	items, err := s.vault.List(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, "ListSecrets", err)
	}

	out := &ListSecretsResponse{Secrets: make([]Secret, 0, len(items))}
	for _, item := range items {
		out.Secrets = append(out.Secrets, *toSecret(item))
	}
	return out, nil
}

func (s *GRPCServer) CreateSecret(ctx context.Context, req *CreateSecretRequest) (*Secret, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, "CreateSecret", err)
	}
	if err := validation.Secret(req.EncryptedData, req.IV, req.MAC); err != nil {
		return nil, s.toStatus(ctx, "CreateSecret", err)
	}

	item, err := s.vault.Create(ctx, userID, services.SecretInput{
		EncryptedData: req.EncryptedData,
		IV:            req.IV,
		MAC:           req.MAC,
	})
	if err != nil {
		return nil, s.toStatus(ctx, "CreateSecret", err)
	}
	return toSecret(item), nil
}

func (s *GRPCServer) UpdateSecret(ctx context.Context, req *UpdateSecretRequest) (*Secret, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, "UpdateSecret", err)
	}
	if err := validation.SecretUpdate(req.ID, req.EncryptedData, req.IV, req.MAC); err != nil {
		return nil, s.toStatus(ctx, "UpdateSecret", err)
	}

	item, err := s.vault.Update(ctx, userID, req.ID, services.SecretInput{
		EncryptedData: req.EncryptedData,
		IV:            req.IV,
		MAC:           req.MAC,
	})
	if err != nil {
		return nil, s.toStatus(ctx, "UpdateSecret", err)
	}
	return toSecret(item), nil
}

func (s *GRPCServer) DeleteSecret(ctx context.Context, req *DeleteSecretRequest) (*DeleteSecretResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, "DeleteSecret", err)
	}
	if err := validation.ID(req.ID); err != nil {
		return nil, s.toStatus(ctx, "DeleteSecret", err)
	}

	if err := s.vault.Delete(ctx, userID, req.ID); err != nil {
		return nil, s.toStatus(ctx, "DeleteSecret", err)
	}
	return &DeleteSecretResponse{}, nil
}

func (s *GRPCServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return &PingResponse{Status: "OK"}, nil
}
