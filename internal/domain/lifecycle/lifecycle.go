// Package lifecycle holds shared timeouts for start/stop hooks and bounded
// calls to external collaborators.
package lifecycle

import "time"

const (
	// DefaultTimeout bounds fx start/stop hooks.
	DefaultTimeout = 10 * time.Second

	// ExternalCallTimeout bounds calls to external collaborators (token
	// endpoints, stores) so no core operation can hang indefinitely.
	ExternalCallTimeout = 5 * time.Second
)
