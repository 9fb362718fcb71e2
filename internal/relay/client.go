// Package relay is the chat-side bridge: it forwards incoming chat messages
// to the API, polls the outbound queue and delivers replies through the chat
// transport.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dimasprakoso/catatduit/internal/inbound"
)

// APIClient talks to the finance API on behalf of the bridge.
type APIClient struct {
	baseURL  string
	botToken string
	http     *http.Client
}

func NewAPIClient(baseURL, botToken string, timeout time.Duration) *APIClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &APIClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		botToken: botToken,
		http:     &http.Client{Timeout: timeout},
	}
}

// Forward submits one inbound chat message and returns the reply to relay.
// Non-2xx statuses still carry a usable replyText (rate limits, validation),
// so the body is decoded regardless.
func (c *APIClient) Forward(ctx context.Context, payload inbound.Payload) (inbound.ReplyBody, error) {
	var reply inbound.ReplyBody
	body, err := json.Marshal(payload)
	if err != nil {
		return reply, fmt.Errorf("encode inbound payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/bot/inbound", bytes.NewReader(body))
	if err != nil {
		return reply, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return reply, fmt.Errorf("forward inbound: %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return reply, fmt.Errorf("decode inbound reply (status %d): %w", resp.StatusCode, err)
	}
	return reply, nil
}

// OutboundItem is one claimed queue entry.
type OutboundItem struct {
	ID          string `json:"id"`
	WaNumber    string `json:"waNumber"`
	MessageText string `json:"messageText"`
}

func (c *APIClient) Claim(ctx context.Context, limit int) ([]OutboundItem, error) {
	url := fmt.Sprintf("%s/api/bot/outbound?limit=%d", c.baseURL, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-bot-token", c.botToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("claim outbound: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("claim outbound returned %d: %s", resp.StatusCode, snippet)
	}

	var decoded struct {
		Messages []OutboundItem `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode claim response: %w", err)
	}
	return decoded.Messages, nil
}

func (c *APIClient) Ack(ctx context.Context, id, status, errorMessage string) error {
	body, err := json.Marshal(map[string]string{
		"id":           id,
		"status":       status,
		"errorMessage": errorMessage,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/bot/outbound/ack", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-bot-token", c.botToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ack outbound: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("ack outbound returned %d: %s", resp.StatusCode, snippet)
	}
	return nil
}

func (c *APIClient) Heartbeat(ctx context.Context, serviceName string) error {
	body, err := json.Marshal(map[string]string{"serviceName": serviceName})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/bot/heartbeat", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send heartbeat: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("heartbeat returned %d", resp.StatusCode)
	}
	return nil
}
