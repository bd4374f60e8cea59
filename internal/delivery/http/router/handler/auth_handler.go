// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"
	"net/url"

	"passport/config"
	"passport/internal/delivery/http/cookie"
	"passport/internal/delivery/http/response"
	"passport/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AuthHandler holds dependencies for session-related handlers.
type AuthHandler struct {
	loginUC      usecase.LoginUsecase
	externalUC   usecase.ExternalLoginUsecase
	logger       *slog.Logger
	cookieSecure bool
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(cfg *config.Config, loginUC usecase.LoginUsecase, externalUC usecase.ExternalLoginUsecase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		loginUC:      loginUC,
		externalUC:   externalUC,
		logger:       logger,
		cookieSecure: cfg.Session.CookieSecure,
	}
}

// Login handles the password login request and sets the session cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	var input *usecase.LoginInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}
	if err := c.Validate(input); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.loginUC.Login(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	session := output.Session
	cookie.WriteSession(c, session.Token, session.ExpiresAt, session.Persistent, h.cookieSecure)

	return response.Success(c, http.StatusOK, map[string]string{"email": output.Identity.Email}, "Login successful")
}

// Logout revokes the current session and clears the cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	token, _ := cookie.ReadSession(c, h.cookieSecure)
	if err := h.loginUC.Logout(c.Request().Context(), token); err != nil {
		return errors.WithStack(err)
	}

	cookie.ClearSession(c, h.cookieSecure)

	return response.Success(c, http.StatusOK, nil, "Logout successful")
}

// LoginExternal starts the external provider flow by redirecting the browser
// to the provider's authorization page.
func (h *AuthHandler) LoginExternal(c echo.Context) error {
	returnURL := c.QueryParam("returnUrl")

	output, err := h.externalUC.Challenge(c.Request().Context(), returnURL)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Redirect(http.StatusFound, output.AuthorizationURL)
}

// ExternalCallback completes the external provider flow. Failures redirect
// back to the login page with an error reason instead of an API envelope,
// because the caller here is a browser mid-redirect.
func (h *AuthHandler) ExternalCallback(c echo.Context) error {
	state := c.QueryParam("state")
	code := c.QueryParam("code")

	output, err := h.externalUC.Callback(c.Request().Context(), state, code)
	if err != nil {
		return c.Redirect(http.StatusFound, loginErrorURL(err))
	}

	session := output.Session
	cookie.WriteSession(c, session.Token, session.ExpiresAt, session.Persistent, h.cookieSecure)

	return c.Redirect(http.StatusFound, output.ReturnURL)
}

// loginErrorURL picks the login page error reason for a callback failure.
func loginErrorURL(err error) string {
	reason := "external-login-failed"
	switch {
	case errors.Is(err, usecase.ErrExternalNoEmail):
		reason = "no-email"
	case errors.Is(err, usecase.ErrExternalCreateFailed):
		reason = "create-failed"
	}

	return "/login?error=" + url.QueryEscape(reason)
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"}, "Service is healthy")
}
