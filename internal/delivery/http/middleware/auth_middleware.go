package middleware

import (
	"passport/config"
	deliverycontext "passport/internal/delivery/context"
	"passport/internal/delivery/http/cookie"
	domainerrors "passport/internal/domain/errors"
	"passport/internal/domain/service"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AuthMiddleware resolves the session cookie into an identity.
type AuthMiddleware struct {
	sessions     service.SessionIssuer
	cookieSecure bool
}

// NewAuthMiddleware creates the session authentication middleware.
func NewAuthMiddleware(cfg *config.Config, sessions service.SessionIssuer) *AuthMiddleware {
	return &AuthMiddleware{
		sessions:     sessions,
		cookieSecure: cfg.Session.CookieSecure,
	}
}

// RequireSession rejects requests that do not carry a valid session cookie.
// On success the identity ID is stored in the echo context for handlers.
func (m *AuthMiddleware) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := cookie.ReadSession(c, m.cookieSecure)
		if !ok {
			return domainerrors.ErrSessionInvalid
		}

		session, err := m.sessions.Validate(c.Request().Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrSessionNotFound) {
				// Stale cookie: clear it so the browser stops resending it.
				cookie.ClearSession(c, m.cookieSecure)

				return domainerrors.ErrSessionInvalid
			}

			return errors.Wrap(err, "failed to validate session")
		}

		deliverycontext.SetIdentityID(c, session.IdentityID)

		return next(c)
	}
}
