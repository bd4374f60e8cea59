package handler

import (
	"log/slog"
	"net/http"

	deliverycontext "passport/internal/delivery/context"
	"passport/internal/delivery/http/response"
	"passport/internal/domain/entity"
	"passport/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// updateTwoFactorInput carries the flags accepted by the 2FA endpoint. All
// fields are optional; an empty body reads the status and starts enrollment
// when no shared key exists yet.
type updateTwoFactorInput struct {
	Enable             *bool  `json:"enable"`
	TwoFactorCode      string `json:"twoFactorCode"`
	ResetSharedKey     bool   `json:"resetSharedKey"`
	ResetRecoveryCodes bool   `json:"resetRecoveryCodes"`
}

// TwoFactorHandler holds dependencies for second-factor handlers.
// All routes here sit behind the session middleware.
type TwoFactorHandler struct {
	uc     usecase.TwoFactorUsecase
	logger *slog.Logger
}

// NewTwoFactorHandler is the constructor for TwoFactorHandler, injected by Fx.
func NewTwoFactorHandler(uc usecase.TwoFactorUsecase, logger *slog.Logger) *TwoFactorHandler {
	return &TwoFactorHandler{
		uc:     uc,
		logger: logger,
	}
}

func (h *TwoFactorHandler) identityID(c echo.Context) (uuid.UUID, bool) {
	return deliverycontext.GetIdentityID(c)
}

// Status reports the identity's current second-factor configuration without
// changing it.
func (h *TwoFactorHandler) Status(c echo.Context) error {
	identityID, ok := h.identityID(c)
	if !ok {
		return response.Unauthorized(c, "SESSION_INVALID", "Not authenticated")
	}

	status, err := h.uc.Status(c.Request().Context(), identityID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, status, "Two-factor status retrieved")
}

// Update dispatches the 2FA management flags: resetSharedKey restarts
// enrollment, enable verifies the submitted code and turns the factor on,
// enable=false turns it off, resetRecoveryCodes replaces the code batch.
// With no flags set it returns the status, generating the shared key first
// when none exists so the client can render the enrollment screen.
func (h *TwoFactorHandler) Update(c echo.Context) error {
	identityID, ok := h.identityID(c)
	if !ok {
		return response.Unauthorized(c, "SESSION_INVALID", "Not authenticated")
	}

	var input updateTwoFactorInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid two-factor input")
	}

	ctx := c.Request().Context()

	var status *usecase.TwoFactorStatus
	var err error
	switch {
	case input.ResetSharedKey:
		status, err = h.uc.ResetSharedKey(ctx, identityID)
	case input.Enable != nil && *input.Enable:
		status, err = h.uc.Enable(ctx, identityID, input.TwoFactorCode)
	case input.Enable != nil:
		err = h.uc.Disable(ctx, identityID)
	}
	if err != nil {
		return errors.WithStack(err)
	}

	if input.ResetRecoveryCodes {
		status, err = h.uc.RegenerateRecoveryCodes(ctx, identityID)
		if err != nil {
			return errors.WithStack(err)
		}
	}

	if status == nil {
		status, err = h.uc.Status(ctx, identityID)
		if err != nil {
			return errors.WithStack(err)
		}

		// A bare request against a disabled factor starts enrollment so the
		// response always carries a shared key to provision.
		bare := input.Enable == nil && !input.ResetSharedKey && !input.ResetRecoveryCodes
		if bare && status.State == entity.TwoFactorDisabled {
			status, err = h.uc.BeginSetup(ctx, identityID)
			if err != nil {
				return errors.WithStack(err)
			}
		}
	}

	return response.Success(c, http.StatusOK, status, "Two-factor settings updated")
}

// ProvisioningQR renders the shared key's otpauth URI as a PNG.
func (h *TwoFactorHandler) ProvisioningQR(c echo.Context) error {
	identityID, ok := h.identityID(c)
	if !ok {
		return response.Unauthorized(c, "SESSION_INVALID", "Not authenticated")
	}

	png, err := h.uc.ProvisioningQR(c.Request().Context(), identityID)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Blob(http.StatusOK, "image/png", png)
}
