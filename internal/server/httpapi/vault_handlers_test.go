package httpapi

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/dmitrijs2005/claveo/internal/common"
	"github.com/dmitrijs2005/claveo/internal/server/models"
	"github.com/dmitrijs2005/claveo/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSecret() *models.Secret {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &models.Secret{
		ID:            testRecordID,
		UserID:        testUserID,
		EncryptedData: "Y2lwaGVy",
		IV:            "bm9uY2U=",
		MAC:           "dGFn",
		CreatedAt:     ts,
		UpdatedAt:     ts.Add(time.Minute),
	}
}

func TestVault_RequiresAuth(t *testing.T) {
	h := newTestServer(&fakeAuth{}, &fakeVault{}).Handler()

	tests := []struct {
		name     string
		headers  map[string]string
		wantCode string
	}{
		{"no header", nil, codeAuthRequired},
		{"not bearer", map[string]string{"Authorization": "Basic abc"}, codeAuthRequired},
		{"empty bearer", map[string]string{"Authorization": "Bearer  "}, codeInvalidToken},
		{"bad token", bearer("forged"), codeInvalidToken},
		{"expired token", bearer(expiredToken), codeTokenExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doJSON(t, h, http.MethodGet, "/vault", nil, tt.headers)
			require.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Equal(t, tt.wantCode, decodeEnvelope(t, rr).Code)
		})
	}
}

func TestVault_List(t *testing.T) {
	vault := &fakeVault{items: []*models.Secret{sampleSecret()}}
	rr := doJSON(t, newTestServer(&fakeAuth{}, vault).Handler(), http.MethodGet, "/vault", nil, bearer(goodToken))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, testUserID, vault.userID)

	var items []map[string]any
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rr).Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, testRecordID, items[0]["id"])
	assert.Equal(t, testUserID, items[0]["userId"])
	assert.Equal(t, "Y2lwaGVy", items[0]["encryptedData"])
	assert.Equal(t, "bm9uY2U=", items[0]["iv"])
	assert.Equal(t, "dGFn", items[0]["mac"])
	assert.Equal(t, "2024-05-01T12:01:00Z", items[0]["updatedAt"])
}

func TestVault_ListEmptyIsArray(t *testing.T) {
	rr := doJSON(t, newTestServer(&fakeAuth{}, &fakeVault{}).Handler(), http.MethodGet, "/vault", nil, bearer(goodToken))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, string(decodeEnvelope(t, rr).Data))
}

func TestVault_Create(t *testing.T) {
	vault := &fakeVault{item: sampleSecret()}
	body := map[string]string{"encryptedData": "Y2lwaGVy", "iv": "bm9uY2U=", "mac": "dGFn"}

	rr := doJSON(t, newTestServer(&fakeAuth{}, vault).Handler(), http.MethodPost, "/vault", body, bearer(goodToken))
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "Entry created", decodeEnvelope(t, rr).Message)
	assert.Equal(t, services.SecretInput{EncryptedData: "Y2lwaGVy", IV: "bm9uY2U=", MAC: "dGFn"}, vault.in)
	assert.Equal(t, testUserID, vault.userID)

	rr = doJSON(t, newTestServer(&fakeAuth{}, vault).Handler(), http.MethodPost, "/vault",
		map[string]string{"encryptedData": "x"}, bearer(goodToken))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Len(t, decodeEnvelope(t, rr).Errors, 2)
}

func TestVault_Update(t *testing.T) {
	body := map[string]string{"encryptedData": "bmV3", "iv": "aXY=", "mac": "bWFj"}

	t.Run("ok", func(t *testing.T) {
		vault := &fakeVault{item: sampleSecret()}
		rr := doJSON(t, newTestServer(&fakeAuth{}, vault).Handler(), http.MethodPut, "/vault/"+testRecordID, body, bearer(goodToken))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Entry updated", decodeEnvelope(t, rr).Message)
		assert.Equal(t, testRecordID, vault.id)
		assert.Equal(t, "bmV3", vault.in.EncryptedData)
	})

	t.Run("foreign or missing", func(t *testing.T) {
		vault := &fakeVault{err: common.ErrRecordNotFound}
		rr := doJSON(t, newTestServer(&fakeAuth{}, vault).Handler(), http.MethodPut, "/vault/"+testRecordID, body, bearer(goodToken))
		require.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, codeEntryNotFound, decodeEnvelope(t, rr).Code)
	})

	t.Run("bad id", func(t *testing.T) {
		vault := &fakeVault{}
		rr := doJSON(t, newTestServer(&fakeAuth{}, vault).Handler(), http.MethodPut, "/vault/not-a-uuid", body, bearer(goodToken))
		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "id", decodeEnvelope(t, rr).Errors[0].Field)
		assert.Empty(t, vault.id)
	})
}

func TestVault_Delete(t *testing.T) {
	vault := &fakeVault{}
	rr := doJSON(t, newTestServer(&fakeAuth{}, vault).Handler(), http.MethodDelete, "/vault/"+testRecordID, nil, bearer(goodToken))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Entry deleted", decodeEnvelope(t, rr).Message)
	assert.Equal(t, testRecordID, vault.id)
	assert.Equal(t, testUserID, vault.userID)

	vault = &fakeVault{err: common.ErrRecordNotFound}
	rr = doJSON(t, newTestServer(&fakeAuth{}, vault).Handler(), http.MethodDelete, "/vault/"+testRecordID, nil, bearer(goodToken))
	require.Equal(t, http.StatusNotFound, rr.Code)
}
