package compat

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"lexiguard-backend/internal/llm"
)

// Client talks to any OpenAI-compatible endpoint (LM Studio, vLLM, Ollama).
// Only text and image parts are supported.
type Client struct {
	client *openai.Client
	model  string
}

// New builds a client for baseURL, e.g. "http://localhost:1234/v1".
func New(apiKey, baseURL, model string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("LLM_BASE_URL is required for compat provider")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for compat provider")
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(baseURL, "/")
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return &Client{client: openai.NewClientWithConfig(cfg), model: model}, nil
}

func (c *Client) Generate(ctx context.Context, req llm.Request) (string, error) {
	model := strings.TrimSpace(req.Config.Model)
	if model == "" {
		model = c.model
	}
	msg, err := buildMessage(req.Parts)
	if err != nil {
		return "", err
	}

	chatReq := openai.ChatCompletionRequest{
		Model:     model,
		Messages:  []openai.ChatCompletionMessage{msg},
		MaxTokens: int(req.Config.MaxOutputTokens),
	}
	if req.Config.Temperature != nil {
		chatReq.Temperature = *req.Config.Temperature
	}
	if req.Config.TopP != nil {
		chatReq.TopP = *req.Config.TopP
	}
	if req.Config.JSONResponse() {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", fmt.Errorf("compat chat completion model=%s: %w", model, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("compat response missing choices")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", llm.ErrEmptyResponse
	}
	return content, nil
}

func buildMessage(parts []llm.Part) (openai.ChatCompletionMessage, error) {
	msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	hasBinary := false
	for _, p := range parts {
		if p.IsBinary() {
			hasBinary = true
		}
	}
	if !hasBinary {
		msg.Content = llm.JoinText(parts)
		return msg, nil
	}

	for _, p := range parts {
		if !p.IsBinary() {
			if p.Text != "" {
				msg.MultiContent = append(msg.MultiContent, openai.ChatMessagePart{
					Type: openai.ChatMessagePartTypeText,
					Text: p.Text,
				})
			}
			continue
		}
		if !strings.HasPrefix(p.MIMEType, "image/") {
			return msg, fmt.Errorf("compat provider cannot send %q attachments", p.MIMEType)
		}
		msg.MultiContent = append(msg.MultiContent, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    "data:" + p.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(p.Data),
				Detail: openai.ImageURLDetailAuto,
			},
		})
	}
	return msg, nil
}

var _ llm.Gateway = (*Client)(nil)
