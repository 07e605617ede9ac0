// Package push holds the client for the external push-messaging gateway.
package push

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// Sender delivers a data payload to device tokens.
type Sender interface {
	Send(ctx context.Context, token string, payload map[string]string) error
	SendMulticast(ctx context.Context, tokens []string, payload map[string]string) error
}

// GatewayClient talks to an HTTP push gateway (FCM-style legacy API shape).
type GatewayClient struct {
	client *resty.Client
}

// NewGatewayClient builds a client for the gateway at endpoint authenticated
// with serverKey.
func NewGatewayClient(endpoint, serverKey string) *GatewayClient {
	client := resty.New().
		SetBaseURL(endpoint).
		SetHeader("Authorization", "key="+serverKey).
		SetHeader("Content-Type", "application/json")
	return &GatewayClient{client: client}
}

type gatewayMessage struct {
	To              string            `json:"to,omitempty"`
	RegistrationIDs []string          `json:"registration_ids,omitempty"`
	Data            map[string]string `json:"data"`
}

// Send delivers to a single device token.
func (c *GatewayClient) Send(ctx context.Context, token string, payload map[string]string) error {
	return c.post(ctx, gatewayMessage{To: token, Data: payload})
}

// SendMulticast delivers to multiple device tokens in one request.
func (c *GatewayClient) SendMulticast(ctx context.Context, tokens []string, payload map[string]string) error {
	return c.post(ctx, gatewayMessage{RegistrationIDs: tokens, Data: payload})
}

func (c *GatewayClient) post(ctx context.Context, msg gatewayMessage) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(msg).
		Post("/send")
	if err != nil {
		return fmt.Errorf("push: send: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("push: gateway returned %s", resp.Status())
	}
	return nil
}

// NopSender discards all messages. Used when no gateway is configured.
type NopSender struct{}

func (NopSender) Send(ctx context.Context, token string, payload map[string]string) error {
	return nil
}

func (NopSender) SendMulticast(ctx context.Context, tokens []string, payload map[string]string) error {
	return nil
}

var (
	_ Sender = (*GatewayClient)(nil)
	_ Sender = NopSender{}
)
