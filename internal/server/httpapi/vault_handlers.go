package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/claveo/internal/server/models"
	"github.com/dmitrijs2005/claveo/internal/server/services"
	"github.com/dmitrijs2005/claveo/internal/server/validation"
	"github.com/go-chi/chi/v5"
)

type secretRequest struct {
	EncryptedData string `json:"encryptedData"`
	IV            string `json:"iv"`
	MAC           string `json:"mac"`
}

func (req secretRequest) input() services.SecretInput {
	return services.SecretInput{EncryptedData: req.EncryptedData, IV: req.IV, MAC: req.MAC}
}

type secretResponse struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	EncryptedData string    `json:"encryptedData"`
	IV            string    `json:"iv"`
	MAC           string    `json:"mac"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toSecretResponse(m *models.Secret) secretResponse {
	return secretResponse{
		ID:            m.ID,
		UserID:        m.UserID,
		EncryptedData: m.EncryptedData,
		IV:            m.IV,
		MAC:           m.MAC,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func (s *Server) handleListSecrets(w http.ResponseWriter, r *http.Request) {
	items, err := s.vault.List(r.Context(), getUserID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]secretResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toSecretResponse(item))
	}
	writeData(w, http.StatusOK, out, "")
}

func (s *Server) handleCreateSecret(w http.ResponseWriter, r *http.Request) {
	var req secretRequest
	if !s.decodeJSON(w, r, &req, false) {
		return
	}
	if err := validation.Secret(req.EncryptedData, req.IV, req.MAC); err != nil {
		s.writeError(w, r, err)
		return
	}

	item, err := s.vault.Create(r.Context(), getUserID(r.Context()), req.input())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, toSecretResponse(item), "Entry created")
}

func (s *Server) handleUpdateSecret(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req secretRequest
	if !s.decodeJSON(w, r, &req, false) {
		return
	}
	if err := validation.SecretUpdate(id, req.EncryptedData, req.IV, req.MAC); err != nil {
		s.writeError(w, r, err)
		return
	}

	item, err := s.vault.Update(r.Context(), getUserID(r.Context()), id, req.input())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toSecretResponse(item), "Entry updated")
}

func (s *Server) handleDeleteSecret(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := validation.ID(id); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.vault.Delete(r.Context(), getUserID(r.Context()), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, nil, "Entry deleted")
}
