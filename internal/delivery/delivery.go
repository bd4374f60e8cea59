// Package delivery defines the contract every transport-facing server fulfils.
package delivery

import "context"

// Delivery is a long-running server started by the application entry point.
type Delivery interface {
	// Serve blocks until the server stops or fails.
	Serve(ctx context.Context) error
}
