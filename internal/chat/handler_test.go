package chat

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"lexiguard-backend/internal/shared/server/respond"
)

func newChatRouter(model *fakeModel) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(&Stage{Model: model}).RegisterRoutes(router.Group("/api"))
	return router
}

func postChat(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestChatHandlerReply(t *testing.T) {
	router := newChatRouter(&fakeModel{reply: "It is non-refundable."})

	resp := postChat(router, `{"document_context":"lease text","message":"deposit?","history":[{"role":"user","content":"hi"}]}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var body chatResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Reply != "It is non-refundable." {
		t.Fatalf("unexpected reply %q", body.Reply)
	}
}

func TestChatHandlerErrors(t *testing.T) {
	tests := []struct {
		name   string
		model  *fakeModel
		body   string
		status int
		code   string
	}{
		{name: "bad json", model: &fakeModel{}, body: `{`, status: http.StatusBadRequest, code: "validation_error"},
		{name: "empty message", model: &fakeModel{}, body: `{"document_context":"x","message":""}`, status: http.StatusBadRequest, code: "validation_error"},
		{name: "model failure", model: &fakeModel{err: errors.New("boom")}, body: `{"document_context":"x","message":"q"}`, status: http.StatusInternalServerError, code: "chat_failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postChat(newChatRouter(tt.model), tt.body)
			if resp.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, resp.Code)
			}
			var body respond.ErrorResponse
			if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error.Code != tt.code {
				t.Fatalf("expected code %q, got %q", tt.code, body.Error.Code)
			}
		})
	}
}
