package service

import (
	"context"

	"passport/internal/domain/entity"
)

// Notifier delivers account lifecycle messages. Delivery is fire-and-forget
// from the core's perspective: a failure is logged by the implementation and
// never changes the outcome of the request that triggered it, so responses
// stay identical whether or not an account exists.
type Notifier interface {
	// SendConfirmationLink mails the email-confirmation link.
	SendConfirmationLink(ctx context.Context, identity *entity.Identity, email, link string) error

	// SendPasswordResetLink mails the reset link for clients that navigate
	// straight to the reset form.
	SendPasswordResetLink(ctx context.Context, identity *entity.Identity, email, link string) error

	// SendPasswordResetCode mails the reset code the client submits together
	// with the new password.
	SendPasswordResetCode(ctx context.Context, identity *entity.Identity, email, code string) error
}
