package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"lexiguard-backend/internal/llm"
)

// Options selects the backend: an API key uses the Gemini API, otherwise
// Project and Location select Vertex AI with Application Default Credentials.
type Options struct {
	APIKey   string
	Project  string
	Location string
	Model    string

	BaseURL    string
	HTTPClient *http.Client
}

type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client implements llm.Gateway on google.golang.org/genai.
type Client struct {
	models generator
	model  string
}

// New builds a genai client.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for Gemini")
	}
	cfg := &genai.ClientConfig{HTTPClient: opts.HTTPClient}
	switch {
	case strings.TrimSpace(opts.APIKey) != "":
		cfg.APIKey = opts.APIKey
		cfg.Backend = genai.BackendGeminiAPI
	case strings.TrimSpace(opts.Project) != "":
		cfg.Project = opts.Project
		cfg.Location = opts.Location
		cfg.Backend = genai.BackendVertexAI
	default:
		return nil, fmt.Errorf("GEMINI_API_KEY or GOOGLE_CLOUD_PROJECT is required for Gemini")
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	return &Client{models: client.Models, model: opts.Model}, nil
}

// Generate sends all parts as one user turn.
func (c *Client) Generate(ctx context.Context, req llm.Request) (string, error) {
	model := strings.TrimSpace(req.Config.Model)
	if model == "" {
		model = c.model
	}

	parts := make([]*genai.Part, 0, len(req.Parts))
	for _, p := range req.Parts {
		if p.IsBinary() {
			parts = append(parts, genai.NewPartFromBytes(p.Data, p.MIMEType))
			continue
		}
		if p.Text != "" {
			parts = append(parts, genai.NewPartFromText(p.Text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("gemini: request has no parts")
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := c.models.GenerateContent(ctx, model, contents, generationConfig(req.Config))
	if err != nil {
		return "", fmt.Errorf("gemini generate model=%s: %w", model, err)
	}
	if resp == nil {
		return "", llm.ErrEmptyResponse
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" && len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini blocked prompt: %s", fb.BlockReason)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", llm.ErrEmptyResponse
	}
	return text, nil
}

func generationConfig(cfg llm.Config) *genai.GenerateContentConfig {
	out := &genai.GenerateContentConfig{
		Temperature:      cfg.Temperature,
		TopP:             cfg.TopP,
		MaxOutputTokens:  cfg.MaxOutputTokens,
		ResponseMIMEType: cfg.ResponseMIMEType,
	}
	return out
}

var _ llm.Gateway = (*Client)(nil)
