// Package notification delivers account lifecycle mails. The default
// implementation writes them to the log, which is enough for development and
// keeps the wiring in place for a real mail provider.
package notification

import (
	"context"
	"log/slog"

	"passport/internal/domain/entity"
	"passport/internal/domain/service"
)

// slogNotifier implements service.Notifier by logging the message content.
type slogNotifier struct {
	logger *slog.Logger
}

// NewSlogNotifier is the constructor for slogNotifier.
func NewSlogNotifier(logger *slog.Logger) service.Notifier {
	return &slogNotifier{logger: logger}
}

// SendConfirmationLink logs the email-confirmation link.
func (n *slogNotifier) SendConfirmationLink(ctx context.Context, identity *entity.Identity, email, link string) error {
	n.logger.InfoContext(ctx, "Confirmation mail",
		slog.Any("identityID", identity.ID),
		slog.String("email", email),
		slog.String("link", link))

	return nil
}

// SendPasswordResetLink logs the password reset link.
func (n *slogNotifier) SendPasswordResetLink(ctx context.Context, identity *entity.Identity, email, link string) error {
	n.logger.InfoContext(ctx, "Password reset link mail",
		slog.Any("identityID", identity.ID),
		slog.String("email", email),
		slog.String("link", link))

	return nil
}

// SendPasswordResetCode logs the password reset code.
func (n *slogNotifier) SendPasswordResetCode(ctx context.Context, identity *entity.Identity, email, code string) error {
	n.logger.InfoContext(ctx, "Password reset mail",
		slog.Any("identityID", identity.ID),
		slog.String("email", email),
		slog.String("code", code))

	return nil
}
