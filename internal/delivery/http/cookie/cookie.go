// Package cookie owns the session cookie: one place decides its name,
// attributes and lifetime so handlers and middleware cannot disagree.
package cookie

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	// hostPrefixedName locks the cookie to this origin; browsers only accept
	// the __Host- prefix over HTTPS with Path=/ and no Domain attribute.
	hostPrefixedName = "__Host-session"

	// plainName is the fallback for local development over plain HTTP.
	plainName = "session"
)

// Name returns the session cookie name for the given security mode.
func Name(secure bool) string {
	if secure {
		return hostPrefixedName
	}

	return plainName
}

// WriteSession sets the session cookie. Persistent sessions carry an Expires
// attribute; browser-session cookies carry none and die with the browser.
func WriteSession(c echo.Context, token string, expiresAt time.Time, persistent, secure bool) {
	cookie := &http.Cookie{
		Name:     Name(secure),
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	if persistent {
		cookie.Expires = expiresAt
	}

	c.SetCookie(cookie)
}

// ClearSession expires the session cookie immediately.
func ClearSession(c echo.Context, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     Name(secure),
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// ReadSession returns the session token carried by the request, if any.
func ReadSession(c echo.Context, secure bool) (string, bool) {
	cookie, err := c.Cookie(Name(secure))
	if err != nil || cookie.Value == "" {
		return "", false
	}

	return cookie.Value, true
}
