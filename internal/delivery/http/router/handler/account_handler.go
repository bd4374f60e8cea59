package handler

import (
	"log/slog"
	"net/http"

	deliverycontext "passport/internal/delivery/context"
	"passport/internal/delivery/http/response"
	"passport/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// emailInput is shared by the endpoints that only take an email address.
type emailInput struct {
	Email string `json:"email" validate:"required,email"`
}

// AccountHandler holds dependencies for account lifecycle handlers.
type AccountHandler struct {
	uc     usecase.AccountUsecase
	logger *slog.Logger
}

// NewAccountHandler is the constructor for AccountHandler, injected by Fx.
func NewAccountHandler(uc usecase.AccountUsecase, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		uc:     uc,
		logger: logger,
	}
}

// Register handles the account registration request.
func (h *AccountHandler) Register(c echo.Context) error {
	var input *usecase.RegisterInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid registration input")
	}
	if err := c.Validate(input); err != nil {
		return errors.WithStack(err)
	}

	info, err := h.uc.Register(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, info, "Account registered successfully")
}

// ConfirmEmail consumes the confirmation link from the mail. It is a GET
// because the link is opened straight from the mail client.
func (h *AccountHandler) ConfirmEmail(c echo.Context) error {
	identityID, err := uuid.Parse(c.QueryParam("userId"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid user ID")
	}

	code := c.QueryParam("code")
	if code == "" {
		return response.BadRequest(c, "INVALID_INPUT", "Confirmation code is required")
	}

	if err := h.uc.ConfirmEmail(c.Request().Context(), identityID, code); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Email confirmed successfully")
}

// ResendConfirmation re-sends the confirmation mail. The response does not
// reveal whether the address is registered.
func (h *AccountHandler) ResendConfirmation(c echo.Context) error {
	var input *emailInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid input")
	}
	if err := c.Validate(input); err != nil {
		return errors.WithStack(err)
	}

	if err := h.uc.ResendConfirmation(c.Request().Context(), input.Email); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Confirmation mail sent if the account exists")
}

// ForgotPassword triggers the password reset mail. The response does not
// reveal whether the address is registered.
func (h *AccountHandler) ForgotPassword(c echo.Context) error {
	var input *emailInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid input")
	}
	if err := c.Validate(input); err != nil {
		return errors.WithStack(err)
	}

	if err := h.uc.ForgotPassword(c.Request().Context(), input.Email); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Reset mail sent if the account exists")
}

// ResetPassword consumes a reset code and replaces the password.
func (h *AccountHandler) ResetPassword(c echo.Context) error {
	var input *usecase.ResetPasswordInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid reset input")
	}
	if err := c.Validate(input); err != nil {
		return errors.WithStack(err)
	}

	if err := h.uc.ResetPassword(c.Request().Context(), input); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Password reset successfully")
}

// Me returns the authenticated identity's user info.
func (h *AccountHandler) Me(c echo.Context) error {
	identityID, ok := deliverycontext.GetIdentityID(c)
	if !ok {
		return response.Unauthorized(c, "SESSION_INVALID", "Not authenticated")
	}

	info, err := h.uc.GetInfo(c.Request().Context(), identityID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, info, "User info retrieved successfully")
}
