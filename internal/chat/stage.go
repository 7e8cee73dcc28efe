package chat

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"lexiguard-backend/internal/llm"
	"lexiguard-backend/internal/shared/metrics"
	"lexiguard-backend/internal/shared/telemetry"
)

// Fallback is the exact answer when the document does not cover the question.
const Fallback = "The document does not provide specific information about this."

const (
	RoleUser  = "user"
	RoleModel = "model"
)

var (
	// ErrInvalidTurn means the question or document context was empty.
	ErrInvalidTurn = errors.New("invalid chat turn")

	//go:embed prompts/chat.txt
	chatTemplate string
)

// Message is one prior exchange in the conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Turn is one question about one document.
type Turn struct {
	DocumentContext string
	Question        string
	History         []Message
}

// Stage answers questions grounded in a document's text.
type Stage struct {
	Model     llm.Gateway
	ModelName string
}

// Respond returns the model's answer, or exactly Fallback when the reply
// contains it.
func (s *Stage) Respond(ctx context.Context, turn Turn) (string, error) {
	answer, err := s.respond(ctx, turn)
	if err != nil {
		metrics.IncChat(metrics.OutcomeFailure)
		telemetry.Warn("chat.complete", map[string]any{"history": len(turn.History), "error": err})
		return "", err
	}
	metrics.IncChat(metrics.OutcomeSuccess)
	telemetry.Info("chat.complete", map[string]any{
		"history":  len(turn.History),
		"fallback": answer == Fallback,
	})
	return answer, nil
}

func (s *Stage) respond(ctx context.Context, turn Turn) (string, error) {
	if strings.TrimSpace(turn.Question) == "" {
		return "", fmt.Errorf("%w: message is required", ErrInvalidTurn)
	}
	if strings.TrimSpace(turn.DocumentContext) == "" {
		return "", fmt.Errorf("%w: document_context is required", ErrInvalidTurn)
	}
	for i, m := range turn.History {
		if m.Role != RoleUser && m.Role != RoleModel {
			return "", fmt.Errorf("%w: history[%d] has role %q", ErrInvalidTurn, i, m.Role)
		}
	}
	if s.Model == nil {
		return "", llm.ErrNotConfigured
	}

	reply, err := s.Model.Generate(ctx, llm.Request{
		Operation: "chat",
		Parts:     []llm.Part{llm.Text(BuildPrompt(turn))},
		Config:    llm.Config{Model: s.ModelName},
	})
	if err != nil {
		return "", fmt.Errorf("chat model call: %w", err)
	}
	if isFallback(reply) {
		return Fallback, nil
	}
	return strings.TrimSpace(reply), nil
}

// isFallback reports whether the whole reply is the fallback sentence, give or
// take surrounding whitespace, quotes, and the final period. Replies that
// answer part of the question and fall back on the rest are kept as is.
func isFallback(reply string) bool {
	s := strings.TrimSpace(reply)
	s = strings.Trim(s, "\"'`\u201c\u201d ")
	s = strings.TrimSuffix(strings.TrimSpace(s), ".")
	return strings.EqualFold(s, strings.TrimSuffix(Fallback, "."))
}

// BuildPrompt renders the chat instruction for turn.
func BuildPrompt(turn Turn) string {
	return strings.NewReplacer(
		"{{DOCUMENT_CONTEXT}}", turn.DocumentContext,
		"{{HISTORY}}", renderHistory(turn.History),
		"{{QUESTION}}", turn.Question,
	).Replace(chatTemplate)
}

func renderHistory(history []Message) string {
	if len(history) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n**Conversation so far:**\n")
	for _, m := range history {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, strings.TrimSpace(m.Content))
	}
	b.WriteString("---\n")
	return b.String()
}
