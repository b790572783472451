package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/claveo/internal/common"
)

// envelope is the body of every response.
type envelope struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Message string              `json:"message,omitempty"`
	Code    string              `json:"code,omitempty"`
	Errors  []common.FieldError `json:"errors,omitempty"`
}

// Error codes carried in envelope.Code.
const (
	codeEmailExists          = "EMAIL_EXISTS"
	codeInvalidCredentials   = "INVALID_CREDENTIALS"
	codeInvalidRefreshToken  = "INVALID_REFRESH_TOKEN"
	codeRefreshTokenNotFound = "REFRESH_TOKEN_NOT_FOUND"
	codeRefreshTokenExpired  = "REFRESH_TOKEN_EXPIRED"
	codeUserNotFound         = "USER_NOT_FOUND"
	codeEntryNotFound        = "ENTRY_NOT_FOUND"
	codeAuthRequired         = "AUTH_REQUIRED"
	codeInvalidToken         = "INVALID_TOKEN"
	codeTokenExpired         = "TOKEN_EXPIRED"
	codeValidation           = "VALIDATION_ERROR"
	codePayloadTooLarge      = "PAYLOAD_TOO_LARGE"
	codeRateLimited          = "RATE_LIMIT_EXCEEDED"
	codeInternal             = "INTERNAL_ERROR"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

var errorMappings = []errorMapping{
	{common.ErrDuplicateIdentity, http.StatusConflict, codeEmailExists, "email already registered"},
	{common.ErrInvalidCredentials, http.StatusUnauthorized, codeInvalidCredentials, "invalid credentials"},
	{common.ErrInvalidRefreshToken, http.StatusUnauthorized, codeInvalidRefreshToken, "invalid refresh token"},
	{common.ErrRefreshTokenNotFound, http.StatusUnauthorized, codeRefreshTokenNotFound, "refresh token not found"},
	{common.ErrRefreshTokenExpired, http.StatusUnauthorized, codeRefreshTokenExpired, "refresh token expired"},
	{common.ErrIdentityNotFound, http.StatusNotFound, codeUserNotFound, "user not found"},
	{common.ErrRecordNotFound, http.StatusNotFound, codeEntryNotFound, "entry not found"},
	{common.ErrTokenExpired, http.StatusUnauthorized, codeTokenExpired, "token expired"},
	{common.ErrInvalidToken, http.StatusUnauthorized, codeInvalidToken, "invalid token"},
	{common.ErrorUnauthorized, http.StatusUnauthorized, codeAuthRequired, "authentication required"},
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	body.Success = status < http.StatusBadRequest
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, envelope{Data: data, Message: message})
}

// writeError translates a service error. Anything unclassified is logged
// with full detail and reported as an opaque internal error.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *common.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, envelope{Message: "invalid input", Code: codeValidation, Errors: verr.Fields})
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			writeJSON(w, m.status, envelope{Message: m.message, Code: m.code})
			return
		}
	}

	s.logger.Error(r.Context(), "request failed",
		"method", r.Method, "path", r.URL.Path, "request_id", requestID(r), "error", err)
	writeJSON(w, http.StatusInternalServerError, envelope{Message: "internal server error", Code: codeInternal})
}

// decodeJSON reads the request body into dst. An empty body is allowed only
// when optional is set.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any, optional bool) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, envelope{Message: "request body too large", Code: codePayloadTooLarge})
		return false
	}
	writeJSON(w, http.StatusBadRequest, envelope{Message: "invalid JSON body", Code: codeValidation})
	return false
}
