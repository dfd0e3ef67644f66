// Package lifecycle holds shared shutdown constants.
package lifecycle

import "time"

// DefaultTimeout bounds graceful-shutdown work such as draining the HTTP
// server or flushing the event publisher.
const DefaultTimeout = 10 * time.Second
