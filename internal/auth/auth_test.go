package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faturas/internal/store"
)

func newTestAuth(t *testing.T) *Auth {
	t.Helper()
	t.Setenv("FATURAS_PASSWORD", "segredo")

	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Init())

	return New(db.DB)
}

func TestCheckPassword(t *testing.T) {
	a := newTestAuth(t)

	assert.True(t, a.CheckPassword(context.Background(), "segredo"))
	assert.False(t, a.CheckPassword(context.Background(), "errada"))
	assert.False(t, a.CheckPassword(context.Background(), ""))
}

func TestSessionLifecycle(t *testing.T) {
	a := newTestAuth(t)
	ctx := context.Background()

	token, err := a.CreateSession(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.True(t, a.ValidateSession(ctx, token))
	assert.False(t, a.ValidateSession(ctx, "token-falso"))

	require.NoError(t, a.DeleteSession(ctx, token))
	assert.False(t, a.ValidateSession(ctx, token))
}

func TestMiddleware(t *testing.T) {
	a := newTestAuth(t)
	ctx := context.Background()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	protected := a.Middleware(next)

	// No cookie: JSON 401.
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/transactions", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "erro")

	// Login and version stay open.
	for _, path := range []string{"/api/login", "/api/version"} {
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	// Valid session passes through.
	token, err := a.CreateSession(ctx)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
