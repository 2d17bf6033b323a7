package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZentaChain/zentalk-didcomm/pkg/crypto"
	"github.com/ZentaChain/zentalk-didcomm/pkg/didcomm"
	"github.com/ZentaChain/zentalk-didcomm/pkg/storage"
)

func newTestServer(t *testing.T, withStore bool, config *Config) *Server {
	t.Helper()

	var store *storage.MessageDB
	if withStore {
		var err error
		store, err = storage.NewMessageDB(filepath.Join(t.TempDir(), "archive.db"), "test-password")
		require.NoError(t, err)
		t.Cleanup(func() { store.Close() })
	}

	logger, _ := logtest.NewNullLogger()
	server := NewServer(store, config, logger)
	t.Cleanup(server.Close)
	return server
}

func doRequest(t *testing.T, s *Server, method, url string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

// TestAPIMessageLifecycle tests create, fetch, list and delete
func TestAPIMessageLifecycle(t *testing.T) {
	server := newTestServer(t, true, nil)

	t.Run("Create", func(t *testing.T) {
		w := doRequest(t, server, http.MethodPost, "/api/v1/messages/direct", map[string]any{
			"id":          "msg-1",
			"to":          []string{"did:example:bob"},
			"from":        "did:example:alice",
			"createdTime": 1700000000,
			"message":     "hello",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		resp := decode[MessageResponse](t, w)
		assert.True(t, resp.Success)
		assert.True(t, resp.Archived)
		require.NotNil(t, resp.Message)
		assert.Equal(t, "msg-1", resp.Message.ID)
		assert.Equal(t, didcomm.TypeBasicMessage, resp.Message.Type)
		assert.JSONEq(t, `{"content":"hello"}`, string(resp.Message.Body))
		assert.Equal(t, []string{"did:example:bob"}, resp.Message.To)
	})

	t.Run("Duplicate", func(t *testing.T) {
		w := doRequest(t, server, http.MethodPost, "/api/v1/messages/direct", map[string]any{
			"id":      "msg-1",
			"message": "again",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "duplicate_id", decode[ErrorResponse](t, w).Code)
	})

	t.Run("Get", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/api/v1/messages/msg-1", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Success bool                  `json:"success"`
			Data    storage.StoredMessage `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "msg-1", resp.Data.MessageID)
		assert.Equal(t, "did:example:alice", resp.Data.From)
		require.NotNil(t, resp.Data.Message)
		assert.JSONEq(t, `{"content":"hello"}`, string(resp.Data.Message.Body))
	})

	t.Run("List", func(t *testing.T) {
		w := doRequest(t, server, http.MethodPost, "/api/v1/messages/key-sharing", map[string]any{
			"id": "keys-1",
			"keys": []map[string]string{{
				"kty": "EC", "crv": "P-256", "x": "x", "y": "y", "d": "d", "use": "enc", "kid": "k1",
			}},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = doRequest(t, server, http.MethodGet, "/api/v1/messages", nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[ListResponse](t, w)
		assert.Equal(t, 2, resp.Count)
		assert.Equal(t, "keys-1", resp.Messages[0].MessageID)

		w = doRequest(t, server, http.MethodGet, "/api/v1/messages?type="+didcomm.TypeBasicMessage, nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp = decode[ListResponse](t, w)
		require.Equal(t, 1, resp.Count)
		assert.Equal(t, "msg-1", resp.Messages[0].MessageID)

		w = doRequest(t, server, http.MethodGet, "/api/v1/messages?limit=1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, decode[ListResponse](t, w).Count)

		w = doRequest(t, server, http.MethodGet, "/api/v1/messages?limit=many", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Delete", func(t *testing.T) {
		w := doRequest(t, server, http.MethodDelete, "/api/v1/messages/msg-1", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = doRequest(t, server, http.MethodDelete, "/api/v1/messages/msg-1", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = doRequest(t, server, http.MethodGet, "/api/v1/messages/msg-1", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "not_found", decode[ErrorResponse](t, w).Code)
	})
}

func TestAPIRejectsUnarchivableMessage(t *testing.T) {
	server := newTestServer(t, true, nil)

	w := doRequest(t, server, http.MethodPost, "/api/v1/messages/direct", map[string]any{
		"id":      "kept",
		"message": "hello",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doRequest(t, server, http.MethodPost, "/api/v1/messages/direct", map[string]any{
		"id":      "",
		"message": "hello",
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	assert.Equal(t, "invalid_message", decode[ErrorResponse](t, w).Code)

	w = doRequest(t, server, http.MethodGet, "/api/v1/messages", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[ListResponse](t, w)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "kept", resp.Messages[0].MessageID)
}

func TestAPIBuildErrors(t *testing.T) {
	server := newTestServer(t, false, nil)

	tests := []struct {
		name       string
		path       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{
			name:       "no keys",
			path:       "/api/v1/messages/key-sharing",
			body:       map[string]any{"keys": []any{}},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "missing_key",
		},
		{
			name:       "no media items",
			path:       "/api/v1/messages/media-sharing",
			body:       map[string]any{"mediaItems": []any{}},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "missing_media_item",
		},
		{
			name:       "malformed json",
			path:       "/api/v1/messages/direct",
			body:       `{"message":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name:       "unknown media item shape",
			path:       "/api/v1/messages/media-sharing",
			body:       `{"mediaItems":[{"id":"x","media_type":"text/plain"}]}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, server, http.MethodPost, tt.path, tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decode[ErrorResponse](t, w).Code)
			}
		})
	}
}

func TestAPIBuildErrorMessage(t *testing.T) {
	server := newTestServer(t, false, nil)

	w := doRequest(t, server, http.MethodPost, "/api/v1/messages/key-sharing", map[string]any{"keys": []any{}})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t,
		"failed to build message: missing at least one key in the message",
		decode[ErrorResponse](t, w).Message,
	)
}

func TestAPIMediaSharing(t *testing.T) {
	server := newTestServer(t, false, nil)

	w := doRequest(t, server, http.MethodPost, "/api/v1/messages/media-sharing", map[string]any{
		"id": "media-1",
		"mediaItems": []map[string]any{
			{"id": "ref", "media_type": "image/png", "link": "https://example.com/a.png", "hash": "zQm"},
			{"id": "inl", "media_type": "text/plain", "base64": "aGVsbG8="},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decode[MessageResponse](t, w)
	assert.False(t, resp.Archived)
	require.Len(t, resp.Message.Attachments, 2)
	assert.Equal(t, "inl", resp.Message.Attachments[0].ID, "inlined items come first")
	assert.Equal(t, "ref", resp.Message.Attachments[1].ID)
	assert.Equal(t, didcomm.TypeMediaSharing, resp.Message.Type)
}

func TestAPIArchiveDisabled(t *testing.T) {
	server := newTestServer(t, false, nil)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/messages"},
		{http.MethodGet, "/api/v1/messages/x"},
		{http.MethodDelete, "/api/v1/messages/x"},
	} {
		w := doRequest(t, server, tc.method, tc.path, nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, tc.path)
		assert.Equal(t, "storage_disabled", decode[ErrorResponse](t, w).Code)
	}
}

func TestAPIMediaHash(t *testing.T) {
	server := newTestServer(t, false, nil)

	w := doRequest(t, server, http.MethodPost, "/api/v1/media/hash", HashRequest{
		Data:      "aGVsbG8=",
		Algorithm: "sha2-256",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[HashResponse](t, w)
	assert.Equal(t, "sha2-256", resp.Algorithm)
	assert.Equal(t, "sha2-256:2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", resp.Digest)
	assert.Equal(t, 5, resp.Size)

	ok, err := crypto.VerifyContentHash(resp.Hash, []byte("hello"))
	require.NoError(t, err)
	assert.True(t, ok)

	w = doRequest(t, server, http.MethodPost, "/api/v1/media/hash", HashRequest{Data: "aGVsbG8="})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "blake2b-256", decode[HashResponse](t, w).Algorithm)

	w = doRequest(t, server, http.MethodPost, "/api/v1/media/hash", HashRequest{Data: "aGVsbG8=", Algorithm: "md5"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, server, http.MethodPost, "/api/v1/media/hash", HashRequest{Data: "%%%"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPIGenerateKey(t *testing.T) {
	server := newTestServer(t, false, nil)

	w := doRequest(t, server, http.MethodPost, "/api/v1/keys", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	resp := decode[KeyResponse](t, w)
	assert.Equal(t, "EC", resp.Key.Kty)
	assert.Equal(t, "P-256", resp.Key.Crv)
	assert.Equal(t, "enc", resp.Key.Use)
	assert.NotEmpty(t, resp.Key.Kid)
	assert.NotEmpty(t, resp.Key.D)
}

func TestAPIHealth(t *testing.T) {
	server := newTestServer(t, true, nil)

	w := doRequest(t, server, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[HealthResponse](t, w)
	assert.Equal(t, "healthy", resp.Status)
	assert.True(t, resp.Checks.ArchiveEnabled)
	assert.True(t, resp.Checks.ArchiveReadable)
}

func TestAPIRateLimit(t *testing.T) {
	config := DefaultConfig()
	config.RateLimit = 2
	server := newTestServer(t, false, config)

	for i := 0; i < 2; i++ {
		w := doRequest(t, server, http.MethodGet, "/health", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doRequest(t, server, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "rate_limited", decode[ErrorResponse](t, w).Code)
}

func TestAPICORSPreflight(t *testing.T) {
	server := newTestServer(t, false, nil)

	w := doRequest(t, server, http.MethodOptions, "/api/v1/messages/direct", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(1)
	defer rl.Close()

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"), "limits are per IP")

	rl.Close() // idempotent
}
