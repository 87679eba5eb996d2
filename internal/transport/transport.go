// Package transport defines the connection contract the chat core depends
// on. The core never opens sockets itself; a transport hands connections to
// the message processor and the core answers through this interface.
package transport

import "context"

// Conn is one live client connection. Implementations must be safe for
// concurrent Send calls and comparable, since the core keys sessions by the
// connection itself.
type Conn interface {
	// Send writes one complete response frame to the client.
	Send(ctx context.Context, payload []byte) error
	// Close tears the connection down. Safe to call more than once.
	Close() error
	// RemoteAddr describes the peer for logging.
	RemoteAddr() string
}
