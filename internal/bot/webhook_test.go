package bot

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nightlock/internal/metrics"
)

func newTestRouter(t *testing.T, env *testEnv, secret string, webhook bool) http.Handler {
	t.Helper()
	return NewRouter(RouterConfig{
		Bot:           env.bot,
		WebhookSecret: secret,
		Metrics:       metrics.New(),
		Logger:        discardLogger(),
		EnableWebhook: webhook,
	})
}

const lockUpdateJSON = `{
	"update_id": 1,
	"message": {
		"message_id": 7,
		"from": {"id": 111, "is_bot": false, "first_name": "Admin"},
		"chat": {"id": 111, "type": "private"},
		"date": 1704067200,
		"text": "/lock",
		"entities": [{"type": "bot_command", "offset": 0, "length": 5}]
	}
}`

func TestWebhook_DeliversUpdate(t *testing.T) {
	env := newTestEnv(t)
	router := newTestRouter(t, env, "s3cret", true)

	req := httptest.NewRequest(http.MethodPost, WebhookPath, strings.NewReader(lockUpdateJSON))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SecretTokenHeader, "s3cret")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	require.Len(t, env.api.permissionChanges(), 1)
}

func TestWebhook_RejectsWrongSecret(t *testing.T) {
	env := newTestEnv(t)
	router := newTestRouter(t, env, "s3cret", true)

	for _, token := range []string{"", "guess"} {
		req := httptest.NewRequest(http.MethodPost, WebhookPath, strings.NewReader(lockUpdateJSON))
		if token != "" {
			req.Header.Set(SecretTokenHeader, token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	assert.Empty(t, env.api.calls)
}

func TestWebhook_RejectsMalformedBody(t *testing.T) {
	env := newTestEnv(t)
	router := newTestRouter(t, env, "", true)

	req := httptest.NewRequest(http.MethodPost, WebhookPath, strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, env.api.calls)
}

func TestRouter_WebhookDisabledInPollingMode(t *testing.T) {
	env := newTestEnv(t)
	router := newTestRouter(t, env, "", false)

	req := httptest.NewRequest(http.MethodPost, WebhookPath, strings.NewReader(lockUpdateJSON))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	env := newTestEnv(t)
	router := newTestRouter(t, env, "", false)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"UP","service":"nightlock"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_RequestID(t *testing.T) {
	env := newTestEnv(t)
	router := newTestRouter(t, env, "", false)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, rec.Header().Get(RequestIDKey))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDKey, "abc-123")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDKey))
}
