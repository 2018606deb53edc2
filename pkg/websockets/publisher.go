package websockets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	apigwtypes "github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi/types"
)

// AllConnectionsGetter lists every registered device connection.
type AllConnectionsGetter interface {
	GetAllConnections(ctx context.Context) ([]string, error)
}

// DefaultPublisher fans payment activity out to every connected device
// through the API Gateway management API.
type DefaultPublisher struct {
	connections AllConnectionsGetter
	manager     ConnectionManager
	client      *apigatewaymanagementapi.Client
	logger      *slog.Logger
}

var _ Publisher = (*DefaultPublisher)(nil)

// NewPublisher builds a DefaultPublisher against the given WebSocket API
// endpoint, loading AWS credentials from the ambient configuration.
func NewPublisher(store AllConnectionsGetter, connManager ConnectionManager, apiEndpoint string) (*DefaultPublisher, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := apigatewaymanagementapi.NewFromConfig(cfg, func(o *apigatewaymanagementapi.Options) {
		o.BaseEndpoint = aws.String(apiEndpoint)
	})

	return &DefaultPublisher{
		connections: store,
		manager:     connManager,
		client:      client,
		logger:      slog.Default(),
	}, nil
}

// Publish sends the message to every registered device. A device whose
// socket has gone away is unregistered on the spot; other per-device
// failures are logged without stopping the fan-out, since a payment
// notification is best-effort.
func (p *DefaultPublisher) Publish(ctx context.Context, message Message) error {
	connectionIDs, err := p.connections.GetAllConnections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list device connections: %w", err)
	}

	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	for _, connectionID := range connectionIDs {
		p.push(ctx, connectionID, payload)
	}
	return nil
}

func (p *DefaultPublisher) push(ctx context.Context, connectionID string, payload []byte) {
	_, err := p.client.PostToConnection(ctx, &apigatewaymanagementapi.PostToConnectionInput{
		ConnectionId: aws.String(connectionID),
		Data:         payload,
	})
	if err == nil {
		return
	}

	var gone *apigwtypes.GoneException
	if errors.As(err, &gone) {
		p.logger.Info("device disconnected, dropping its connection", "connectionId", connectionID)
		if err := p.manager.RemoveConnection(ctx, connectionID); err != nil {
			p.logger.Error("failed to drop stale connection", "connectionId", connectionID, "error", err)
		}
		return
	}
	p.logger.Error("failed to push to device", "connectionId", connectionID, "error", err)
}
