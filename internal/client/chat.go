package client

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/keyxmakerx/worldatlas/internal/world"
)

// ChatClient posts viewer questions to the archivist chat endpoint.
type ChatClient struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewChatClient creates a client for the chat endpoint at url.
func NewChatClient(url string, timeout time.Duration, logger *slog.Logger) *ChatClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatClient{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With(slog.String("component", "chat_client")),
	}
}

// Ask returns the archivist's answer, or world.ChatFallback on any
// failure. It never returns an error; there is no retry.
func (c *ChatClient) Ask(ctx context.Context, message, contextText string, history []world.ChatTurn) string {
	body, err := json.Marshal(world.ChatRequest{
		Message: message,
		Context: contextText,
		History: history,
	})
	if err != nil {
		c.logger.Warn("chat request encoding failed", slog.Any("error", err))
		return world.ChatFallback
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		c.logger.Warn("chat request creation failed", slog.Any("error", err))
		return world.ChatFallback
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("chat request failed", slog.Any("error", err))
		return world.ChatFallback
	}
	defer resp.Body.Close()

	var out world.ChatResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&out)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("chat endpoint returned error", slog.Int("status", resp.StatusCode))
		return world.ChatFallback
	}
	if decodeErr != nil {
		c.logger.Warn("chat response undecodable", slog.Any("error", decodeErr))
		return world.ChatFallback
	}
	if strings.TrimSpace(out.Text) == "" {
		return world.ChatFallback
	}
	return out.Text
}
