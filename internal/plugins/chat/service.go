// Package chat answers viewer questions in the voice of the world's
// archivist through an OpenAI-compatible chat completion API.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sashabaranov/go-openai"

	"github.com/keyxmakerx/worldatlas/internal/apperror"
	"github.com/keyxmakerx/worldatlas/internal/world"
)

const (
	maxMessageLength = 2000
	maxContextLength = 8000
	maxHistoryTurns  = 20
	requestTimeout   = 60 * time.Second
)

// archivistPersona is the base system prompt.
const archivistPersona = `你是这个世界的档案馆管理员，熟知这里的地点、人物与编年史。
请用简体中文、以沉稳而略带神秘的语气回答访客的问题。
只根据已知的档案作答；档案中没有记载的内容，请坦言档案缺失，不要编造。`

// Completer is the subset of *openai.Client the service uses.
type Completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ChatService produces archivist replies.
type ChatService interface {
	Reply(ctx context.Context, req world.ChatRequest) (string, error)
}

type chatService struct {
	client Completer
	model  string
}

// NewChatService creates a ChatService backed by the given completer.
func NewChatService(client Completer, model string) ChatService {
	return &chatService{client: client, model: model}
}

// NewOpenAIClient builds a go-openai client. baseURL may point at any
// OpenAI-compatible provider; empty keeps the library default.
func NewOpenAIClient(apiKey, baseURL string) *openai.Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(config)
}

// Reply sends the conversation to the model and returns its answer.
func (s *chatService) Reply(ctx context.Context, req world.ChatRequest) (string, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return "", apperror.NewValidation("message is required")
	}
	if utf8.RuneCountInString(message) > maxMessageLength {
		return "", apperror.NewValidation(fmt.Sprintf("message must be at most %d characters", maxMessageLength))
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    buildMessages(message, req.Context, req.History),
		Temperature: 0.7,
		MaxTokens:   800,
	})
	if err != nil {
		return "", apperror.NewUnavailable("the archive is unavailable").WithInternal(err)
	}
	if len(resp.Choices) == 0 {
		return "", apperror.NewUnavailable("the archive returned no answer")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", apperror.NewUnavailable("the archive returned no answer")
	}
	return text, nil
}

// buildMessages assembles system prompt, recent history and the new
// question. Turns with unknown roles or empty content are dropped.
func buildMessages(message, extra string, history []world.ChatTurn) []openai.ChatCompletionMessage {
	system := archivistPersona
	if extra = strings.TrimSpace(extra); extra != "" {
		if utf8.RuneCountInString(extra) > maxContextLength {
			extra = string([]rune(extra)[:maxContextLength])
		}
		system += "\n\n以下是与本次提问相关的档案：\n" + extra
	}

	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}

	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	for _, turn := range history {
		content := strings.TrimSpace(turn.Content)
		if content == "" {
			continue
		}
		switch turn.Role {
		case world.ChatRoleUser:
			msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: content})
		case world.ChatRoleAssistant:
			msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content})
		}
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message})
	return msgs
}
