package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"lexiguard-backend/internal/llm"
	"lexiguard-backend/internal/shared/telemetry"
)

var apiURL = "https://api.openai.com/v1/chat/completions"

// Client implements llm.Gateway using OpenAI Chat Completions.
type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient constructs a new OpenAI client. model is the default when a
// request does not name one.
func NewClient(apiKey, model string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for OpenAI")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
	File     *filePart `json:"file,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type filePart struct {
	Filename string `json:"filename"`
	FileData string `json:"file_data"`
}

type chatRequest struct {
	Model               string          `json:"model"`
	Messages            []chatMessage   `json:"messages"`
	Temperature         *float32        `json:"temperature,omitempty"`
	TopP                *float32        `json:"top_p,omitempty"`
	MaxCompletionTokens int32           `json:"max_completion_tokens,omitempty"`
	ResponseFormat      *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

var errTemperatureUnsupported = errors.New("openai: temperature unsupported for model")

// Generate sends the parts as a single user message.
func (c *Client) Generate(ctx context.Context, req llm.Request) (string, error) {
	model := strings.TrimSpace(req.Config.Model)
	if model == "" {
		model = c.model
	}
	content, err := buildContent(req.Parts)
	if err != nil {
		return "", err
	}

	body := chatRequest{
		Model:               model,
		Messages:            []chatMessage{{Role: "user", Content: content}},
		MaxCompletionTokens: req.Config.MaxOutputTokens,
	}
	if req.Config.JSONResponse() {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	if !omitSampling(model) {
		body.Temperature = req.Config.Temperature
		body.TopP = req.Config.TopP
	}

	out, err := c.complete(ctx, body)
	if errors.Is(err, errTemperatureUnsupported) && (body.Temperature != nil || body.TopP != nil) {
		body.Temperature = nil
		body.TopP = nil
		out, err = c.complete(ctx, body)
	}
	return out, err
}

func (c *Client) complete(ctx context.Context, body chatRequest) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", fmt.Errorf("openai request timeout: %w", err)
		}
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		if resp.StatusCode >= 400 {
			return "", fmt.Errorf("openai http status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
		}
		return "", fmt.Errorf("openai response parse: %w", err)
	}
	if parsed.Error != nil {
		if isTemperatureError(parsed.Error.Message) {
			return "", fmt.Errorf("%w: %s", errTemperatureUnsupported, parsed.Error.Message)
		}
		return "", fmt.Errorf("openai http status %d: %s (%s)", resp.StatusCode, parsed.Error.Message, parsed.Error.Type)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("openai http status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai response missing choices")
	}
	logUsage(body.Model, parsed)

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", llm.ErrEmptyResponse
	}
	return content, nil
}

// buildContent keeps a plain string for text-only requests and switches to
// typed content parts once a binary part is present.
func buildContent(parts []llm.Part) (any, error) {
	hasBinary := false
	for _, p := range parts {
		if p.IsBinary() {
			hasBinary = true
			break
		}
	}
	if !hasBinary {
		return llm.JoinText(parts), nil
	}

	out := make([]contentPart, 0, len(parts))
	for _, p := range parts {
		if !p.IsBinary() {
			if p.Text != "" {
				out = append(out, contentPart{Type: "text", Text: p.Text})
			}
			continue
		}
		dataURL := "data:" + p.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
		switch {
		case strings.HasPrefix(p.MIMEType, "image/"):
			out = append(out, contentPart{Type: "image_url", ImageURL: &imageURL{URL: dataURL}})
		case p.MIMEType == "application/pdf":
			out = append(out, contentPart{Type: "file", File: &filePart{Filename: "document.pdf", FileData: dataURL}})
		default:
			return nil, fmt.Errorf("openai: unsupported attachment type %q", p.MIMEType)
		}
	}
	return out, nil
}

func isTemperatureError(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "unsupported value") && strings.Contains(lower, "temperature")
}

// omitSampling reports whether model rejects temperature/top_p. gpt-5 family
// models do, as does anything listed in LLM_NO_TEMP0_MODELS.
func omitSampling(model string) bool {
	normalized := strings.ToLower(strings.TrimSpace(model))
	if strings.HasPrefix(normalized, "gpt-5") {
		return true
	}
	for _, m := range strings.Split(os.Getenv("LLM_NO_TEMP0_MODELS"), ",") {
		if strings.ToLower(strings.TrimSpace(m)) == normalized && normalized != "" {
			return true
		}
	}
	return false
}

func logUsage(model string, resp chatResponse) {
	fields := map[string]any{"provider": "openai", "model": model}
	if resp.Usage != nil {
		fields["prompt_tokens"] = resp.Usage.PromptTokens
		fields["completion_tokens"] = resp.Usage.CompletionTokens
		fields["total_tokens"] = resp.Usage.TotalTokens
	}
	telemetry.Info("llm.usage", fields)
}

var _ llm.Gateway = (*Client)(nil)
