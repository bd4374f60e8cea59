package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"passport/config"
	deliverycontext "passport/internal/delivery/context"
	"passport/internal/domain/entity"
	domainerrors "passport/internal/domain/errors"
	"passport/internal/domain/service"
	mockservice "passport/internal/mocks/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func createTestAuthMiddleware(t *testing.T) (*AuthMiddleware, *mockservice.MockSessionIssuer) {
	sessions := mockservice.NewMockSessionIssuer(t)
	cfg := &config.Config{Session: &config.SessionConfig{CookieSecure: false}}

	return NewAuthMiddleware(cfg, sessions), sessions
}

func newSessionRequest(token string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "session", Value: token})
	}
	rec := httptest.NewRecorder()

	return e.NewContext(req, rec), rec
}

func TestAuthMiddleware_RequireSession_ValidCookie(t *testing.T) {
	m, sessions := createTestAuthMiddleware(t)
	identityID := uuid.New()

	sessions.On("Validate", mock.Anything, "session-token-1").Return(&entity.Session{
		Token:      "session-token-1",
		IdentityID: identityID,
		ExpiresAt:  time.Now().Add(time.Hour),
	}, nil).Once()

	c, _ := newSessionRequest("session-token-1")

	var seenID uuid.UUID
	next := func(c echo.Context) error {
		id, ok := deliverycontext.GetIdentityID(c)
		require.True(t, ok)
		seenID = id

		return nil
	}

	require.NoError(t, m.RequireSession(next)(c))
	assert.Equal(t, identityID, seenID)
}

func TestAuthMiddleware_RequireSession_MissingCookie(t *testing.T) {
	m, _ := createTestAuthMiddleware(t)

	c, _ := newSessionRequest("")

	err := m.RequireSession(func(echo.Context) error {
		t.Fatal("next should not run without a session")

		return nil
	})(c)

	assert.ErrorIs(t, err, domainerrors.ErrSessionInvalid)
}

func TestAuthMiddleware_RequireSession_StaleCookieIsCleared(t *testing.T) {
	m, sessions := createTestAuthMiddleware(t)

	sessions.On("Validate", mock.Anything, "stale-token").
		Return(nil, service.ErrSessionNotFound).Once()

	c, rec := newSessionRequest("stale-token")

	err := m.RequireSession(func(echo.Context) error { return nil })(c)

	assert.ErrorIs(t, err, domainerrors.ErrSessionInvalid)
	setCookie := rec.Header().Get(echo.HeaderSetCookie)
	assert.Contains(t, setCookie, "session=;")
	assert.Contains(t, setCookie, "Max-Age=0")
}

func TestAuthMiddleware_RequireSession_StoreFailureIsNotAClear(t *testing.T) {
	m, sessions := createTestAuthMiddleware(t)

	sessions.On("Validate", mock.Anything, "session-token-1").
		Return(nil, assert.AnError).Once()

	c, rec := newSessionRequest("session-token-1")

	err := m.RequireSession(func(echo.Context) error { return nil })(c)

	require.Error(t, err)
	assert.NotErrorIs(t, err, domainerrors.ErrSessionInvalid)
	// An infrastructure failure must not evict the browser's cookie.
	assert.Empty(t, rec.Header().Get(echo.HeaderSetCookie))
}
