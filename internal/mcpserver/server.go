package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"lexiguard-backend/internal/analyses"
	"lexiguard-backend/internal/chat"
	"lexiguard-backend/internal/extract"
)

// Server exposes the document pipeline as MCP tools.
type Server struct {
	MCPServer *sdkmcp.Server
	Pipeline  *analyses.Pipeline
	Chat      *chat.Stage
	// MaxFileBytes bounds documents read from disk.
	MaxFileBytes int64
}

// NewServer registers analyze_document and ask_document.
func NewServer(version string, pipeline *analyses.Pipeline, chatStage *chat.Stage) *Server {
	s := &Server{
		MCPServer: sdkmcp.NewServer(&sdkmcp.Implementation{Name: "lexiguard", Version: version}, nil),
		Pipeline:  pipeline,
		Chat:      chatStage,
	}
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "analyze_document",
		Description: "Classify every clause of a legal document as Neutral, Attention, or Critical for a persona, with the summary and explanations in the requested language.",
	}, s.handleAnalyze)
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "ask_document",
		Description: "Answer a question using only the given document text.",
	}, s.handleAsk)
	return s
}

// Run serves over stdio until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	return s.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}

type analyzeInput struct {
	Path      string `json:"path,omitempty" jsonschema:"local path of a PDF, image, DOCX, or text file"`
	Text      string `json:"text,omitempty" jsonschema:"document text; used instead of path when set"`
	MediaType string `json:"media_type,omitempty" jsonschema:"media type of the file at path (sniffed when empty)"`
	Persona   string `json:"persona" jsonschema:"reader persona, e.g. Student or Small Business"`
	Language  string `json:"language" jsonschema:"language for the summary and explanations"`
}

type askInput struct {
	DocumentContext string         `json:"document_context" jsonschema:"full text of the document"`
	Question        string         `json:"question" jsonschema:"question about the document"`
	History         []chat.Message `json:"history,omitempty" jsonschema:"earlier turns with role user or model"`
}

type askOutput struct {
	Reply string `json:"reply"`
}

const defaultMaxFileBytes = 20 << 20

func (s *Server) handleAnalyze(ctx context.Context, _ *sdkmcp.CallToolRequest, in analyzeInput) (*sdkmcp.CallToolResult, analyses.Report, error) {
	if s.Pipeline == nil {
		return nil, analyses.Report{}, errors.New("analysis pipeline not configured")
	}
	if strings.TrimSpace(in.Text) != "" {
		report, err := s.Pipeline.Analyzer.Analyze(ctx, in.Text, in.Persona, in.Language)
		return nil, report, err
	}
	if strings.TrimSpace(in.Path) == "" {
		return nil, analyses.Report{}, errors.New("either path or text is required")
	}
	data, err := s.readFile(in.Path)
	if err != nil {
		return nil, analyses.Report{}, err
	}
	report, err := s.Pipeline.Run(ctx, data, in.MediaType, in.Persona, in.Language)
	return nil, report, err
}

func (s *Server) handleAsk(ctx context.Context, _ *sdkmcp.CallToolRequest, in askInput) (*sdkmcp.CallToolResult, askOutput, error) {
	if s.Chat == nil {
		return nil, askOutput{}, errors.New("chat not configured")
	}
	reply, err := s.Chat.Respond(ctx, chat.Turn{
		DocumentContext: in.DocumentContext,
		Question:        in.Question,
		History:         append([]chat.Message(nil), in.History...),
	})
	if err != nil {
		return nil, askOutput{}, err
	}
	return nil, askOutput{Reply: reply}, nil
}

func (s *Server) readFile(path string) ([]byte, error) {
	limit := s.MaxFileBytes
	if limit <= 0 {
		limit = defaultMaxFileBytes
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", filepath.Base(path), err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > limit {
		return nil, fmt.Errorf("%s exceeds %d bytes", filepath.Base(path), limit)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, extract.ErrEmptyDocument
	}
	return data, nil
}
