package analyses

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"

	"lexiguard-backend/internal/extract"
	"lexiguard-backend/internal/shared/server/respond"
)

type memoryArchive struct {
	saved map[string][]byte
	err   error
}

func (a *memoryArchive) Save(ctx context.Context, owner, fileName, contentType string, r io.Reader) (string, int64, error) {
	if a.err != nil {
		return "", 0, a.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, err
	}
	key := fmt.Sprintf("docs/%d_%s", len(a.saved), fileName)
	if a.saved == nil {
		a.saved = map[string][]byte{}
	}
	a.saved[key] = data
	return key, int64(len(data)), nil
}

func (a *memoryArchive) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(a.saved[key])), nil
}

func newAnalyzeRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h.RegisterRoutes(router.Group("/api"))
	return router
}

func multipartRequest(t *testing.T, fields map[string]string, fileName, contentType string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if fileName != "" {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, fileName))
		header.Set("Content-Type", contentType)
		part, err := w.CreatePart(header)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		part.Write(data)
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestAnalyzeHandlerSuccess(t *testing.T) {
	archive := &memoryArchive{}
	model := &scriptedModel{replies: []string{loadFixture(t, "student_lease_es.json")}}
	pipeline := &Pipeline{
		Extractor: &fakeExtractor{text: loadFixture(t, "student_lease.txt")},
		Analyzer:  &Service{Model: model, Personas: DefaultPersonas()},
	}
	router := newAnalyzeRouter(NewHandler(pipeline, archive, 0))

	req := multipartRequest(t, map[string]string{"persona": "Student", "language": "Spanish"}, "lease.pdf", "application/pdf", []byte("%PDF-1.4"))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var report Report
	if err := json.Unmarshal(resp.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(report.Clauses) != 3 || report.FullText == "" {
		t.Fatalf("unexpected report %+v", report)
	}
	key := resp.Header().Get(DocumentKeyHeader)
	if key == "" || string(archive.saved[key]) != "%PDF-1.4" {
		t.Fatalf("expected upload archived under %q", key)
	}
}

func TestAnalyzeHandlerArchiveFailureIsIgnored(t *testing.T) {
	pipeline := &Pipeline{
		Extractor: &fakeExtractor{text: "text"},
		Analyzer:  &Service{Model: &scriptedModel{replies: []string{`{"summary":"s","clauses":[]}`}}},
	}
	router := newAnalyzeRouter(NewHandler(pipeline, &memoryArchive{err: errors.New("disk full")}, 0))

	req := multipartRequest(t, map[string]string{"persona": "Student", "language": "English"}, "lease.pdf", "application/pdf", []byte("%PDF"))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if resp.Header().Get(DocumentKeyHeader) != "" {
		t.Fatalf("no document key expected when archiving fails")
	}
}

func TestAnalyzeHandlerErrors(t *testing.T) {
	tests := []struct {
		name     string
		fields   map[string]string
		fileName string
		extract  error
		model    *scriptedModel
		status   int
		code     string
	}{
		{name: "missing file", fields: map[string]string{"persona": "Student", "language": "English"}, status: http.StatusBadRequest, code: "validation_error"},
		{name: "missing persona", fields: map[string]string{"language": "English"}, fileName: "a.pdf", status: http.StatusBadRequest, code: "validation_error"},
		{name: "missing language", fields: map[string]string{"persona": "Student"}, fileName: "a.pdf", status: http.StatusBadRequest, code: "validation_error"},
		{name: "unsupported type", fields: map[string]string{"persona": "Student", "language": "English"}, fileName: "a.pdf", extract: extract.ErrUnsupportedMediaType, status: http.StatusUnsupportedMediaType, code: "unsupported_media_type"},
		{name: "extraction failed", fields: map[string]string{"persona": "Student", "language": "English"}, fileName: "a.pdf", extract: fmt.Errorf("%w: boom", extract.ErrExtractionFailed), status: http.StatusInternalServerError, code: "extraction_failed"},
		{name: "malformed output", fields: map[string]string{"persona": "Student", "language": "English"}, fileName: "a.pdf", model: &scriptedModel{replies: []string{"not json"}}, status: http.StatusInternalServerError, code: "malformed_model_output"},
		{name: "model failure", fields: map[string]string{"persona": "Student", "language": "English"}, fileName: "a.pdf", model: &scriptedModel{err: errors.New("503")}, status: http.StatusInternalServerError, code: "analysis_failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := tt.model
			if model == nil {
				model = &scriptedModel{}
			}
			pipeline := &Pipeline{
				Extractor: &fakeExtractor{text: "text", err: tt.extract},
				Analyzer:  &Service{Model: model},
			}
			router := newAnalyzeRouter(NewHandler(pipeline, nil, 0))

			req := multipartRequest(t, tt.fields, tt.fileName, "application/pdf", []byte("%PDF"))
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			if resp.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, resp.Code, resp.Body.String())
			}
			var body respond.ErrorResponse
			if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error.Code != tt.code {
				t.Fatalf("expected code %q, got %q", tt.code, body.Error.Code)
			}
			if body.Detail == "" {
				t.Fatalf("detail should mirror the message")
			}
		})
	}
}

func TestAnalyzeHandlerRejectsLargeUpload(t *testing.T) {
	pipeline := &Pipeline{Extractor: &fakeExtractor{text: "text"}, Analyzer: &Service{Model: &scriptedModel{}}}
	router := newAnalyzeRouter(NewHandler(pipeline, nil, 16))

	req := multipartRequest(t, map[string]string{"persona": "Student", "language": "English"}, "a.pdf", "application/pdf", bytes.Repeat([]byte("x"), 64))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", resp.Code)
	}
}
