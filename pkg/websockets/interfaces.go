package websockets

import (
	"context"
)

// ConnectionManager tracks the signed-in devices holding an open socket.
// Connection ids are registered on connect and dropped on disconnect or when
// a push discovers the socket has gone stale.
type ConnectionManager interface {
	AddConnection(ctx context.Context, connectionID string) error
	RemoveConnection(ctx context.Context, connectionID string) error
}

// Publisher pushes payment activity to connected devices. The engine announces
// every posted occurrence through one of these.
type Publisher interface {
	Publish(ctx context.Context, message Message) error
}
