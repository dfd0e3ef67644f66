// Package delivery defines the entry-point abstraction every transport
// (HTTP today, others later) implements.
package delivery

import "context"

// Delivery serves the application over one transport until the context ends
// or the server stops.
type Delivery interface {
	Serve(ctx context.Context) error
}
