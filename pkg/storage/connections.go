package storage

import "context"

// ConnectionManager defines the interface for storing and retrieving the
// WebSocket connection ids of signed-in devices.
type ConnectionManager interface {
	AddConnection(ctx context.Context, connectionID string) error
	RemoveConnection(ctx context.Context, connectionID string) error
	GetAllConnections(ctx context.Context) ([]string, error)
}
