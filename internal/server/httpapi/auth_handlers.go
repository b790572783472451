package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dmitrijs2005/claveo/internal/common"
	"github.com/dmitrijs2005/claveo/internal/server/services"
	"github.com/dmitrijs2005/claveo/internal/server/validation"
)

type healthResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Timestamp time.Time `json:"timestamp"`
}

type registerRequest struct {
	Email        string `json:"email"`
	AuthPassword string `json:"authPassword"`
	KDFSalt      string `json:"kdfSalt"`
}

type loginRequest struct {
	Email        string `json:"email"`
	AuthPassword string `json:"authPassword"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type userResponse struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	KDFSalt string `json:"kdfSalt,omitempty"`
}

type tokensResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type authResponse struct {
	User   userResponse   `json:"user"`
	Tokens tokensResponse `json:"tokens"`
}

func toTokens(p *services.TokenPair) tokensResponse {
	return tokensResponse{AccessToken: p.AccessToken, RefreshToken: p.RefreshToken}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(healthResponse{
		Status:    "ok",
		Service:   common.ServiceName,
		Timestamp: s.now().UTC(),
	})
}

func (s *Server) handleGetSalt(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if err := validation.Email(email); err != nil {
		s.writeError(w, r, err)
		return
	}

	salt, err := s.users.GetSalt(r.Context(), email)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"salt": salt}, "")
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !s.decodeJSON(w, r, &req, false) {
		return
	}
	if err := validation.Register(req.Email, req.AuthPassword, req.KDFSalt); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.users.Register(r.Context(), services.RegisterInput{
		Email:        req.Email,
		AuthPassword: req.AuthPassword,
		KDFSalt:      req.KDFSalt,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, authResponse{
		User:   userResponse{ID: res.User.ID, Email: res.User.Email},
		Tokens: toTokens(res.Tokens),
	}, "Account created")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decodeJSON(w, r, &req, false) {
		return
	}
	if err := validation.Login(req.Email, req.AuthPassword); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.users.Login(r.Context(), req.Email, req.AuthPassword)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, authResponse{
		User:   userResponse{ID: res.User.ID, Email: res.User.Email, KDFSalt: res.User.KDFSalt},
		Tokens: toTokens(res.Tokens),
	}, "Logged in")
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !s.decodeJSON(w, r, &req, false) {
		return
	}
	if err := validation.RefreshToken(req.RefreshToken); err != nil {
		s.writeError(w, r, err)
		return
	}

	pair, err := s.users.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toTokens(pair), "")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !s.decodeJSON(w, r, &req, true) {
		return
	}

	if err := s.users.Logout(r.Context(), req.RefreshToken, getUserID(r.Context())); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, nil, "Logged out")
}
