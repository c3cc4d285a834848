// Package assistant answers natural-language questions about Vietnamese legal
// documents via an OpenAI-compatible endpoint (LiteLLM proxy or direct).
package assistant

import (
	"context"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	pkgerrors "lexgraph/backend/pkg/errors"
	"lexgraph/backend/pkg/logger"
)

const systemPrompt = `Bạn là trợ lý pháp lý chuyên về văn bản quy phạm pháp luật Việt Nam.
Trả lời ngắn gọn, chính xác, trích dẫn điều, khoản, điểm khi có thể.
Nếu không chắc chắn, hãy nói rõ là không chắc chắn thay vì đoán.`

// Assistant handles communication with the LLM via LiteLLM
type Assistant struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// New creates a new assistant client
func New(baseURL, apiKey, modelID string) *Assistant {
	// For LiteLLM, we can use a dummy API key if not provided
	if apiKey == "" {
		apiKey = "dummy-key"
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL + "/v1"

	return &Assistant{
		client: openai.NewClientWithConfig(config),
		model:  modelID,
		logger: logger.Get(),
	}
}

// Ask sends a legal question to the LLM and returns the answer text.
func (a *Assistant) Ask(ctx context.Context, question string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: question,
			},
		},
		Temperature: 0.3,
	}

	// Retry logic with exponential backoff
	var resp openai.ChatCompletionResponse
	var err error
	maxRetries := 3
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * time.Second
			a.logger.Warn("Retrying LLM request",
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
			)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		resp, err = a.client.CreateChatCompletion(ctx, req)
		if err == nil {
			break
		}

		a.logger.Error("LLM request failed",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.String("model", a.model),
		)
	}

	if err != nil {
		return "", pkgerrors.NewAssistantFailed(a.model, maxRetries, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", pkgerrors.ErrAssistantNoResponse
	}

	a.logger.Debug("Assistant response generated",
		zap.String("model", a.model),
		zap.Int("answer_length", len(resp.Choices[0].Message.Content)),
	)

	return resp.Choices[0].Message.Content, nil
}
