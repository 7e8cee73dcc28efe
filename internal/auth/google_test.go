package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	sharedauth "lexiguard-backend/internal/shared/auth"
	"lexiguard-backend/internal/users"
)

func newGoogleRouter(s *GoogleService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	s.RegisterRoutes(router.Group("/api"))
	return router
}

func TestGoogleStartRequiresConfig(t *testing.T) {
	router := newGoogleRouter(NewGoogleService("", "", "", "", nil, nil))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/auth/google/start", nil))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
}

func TestGoogleCallbackRejectsUnknownState(t *testing.T) {
	router := newGoogleRouter(NewGoogleService("id", "secret", "http://api/cb", "http://ui", nil, nil))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?state=nope&code=c", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestGoogleFlowIssuesTokenAndRecordsUser(t *testing.T) {
	google := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/token":
			w.Write([]byte(`{"access_token":"at","token_type":"Bearer","expires_in":3600}`))
		case "/userinfo":
			w.Write([]byte(`{"id":"123","email":"ana@example.com","name":"Ana","picture":"http://p"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer google.Close()

	signer, err := sharedauth.NewHS256("secret", "dev")
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	userSvc := users.NewService(users.NewMemoryRepo())
	svc := NewGoogleService("id", "secret", "http://api/cb", "http://ui/login", signer, userSvc)
	svc.oauthConfig.Endpoint = oauth2.Endpoint{AuthURL: google.URL + "/auth", TokenURL: google.URL + "/token"}
	svc.userInfoURL = google.URL + "/userinfo"
	router := newGoogleRouter(svc)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/auth/google/start", nil))
	if resp.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", resp.Code)
	}
	loc, _ := url.Parse(resp.Header().Get("Location"))
	state := loc.Query().Get("state")
	if state == "" {
		t.Fatalf("missing state in %s", loc)
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?state="+state+"&code=abc", nil))
	if resp.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d: %s", resp.Code, resp.Body.String())
	}
	back, _ := url.Parse(resp.Header().Get("Location"))
	token := back.Query().Get("token")
	claims, err := signer.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("verify issued token: %v", err)
	}
	if claims.Sub != "google:123" || claims.Email != "ana@example.com" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if user, err := userSvc.GetByID(context.Background(), "google:123"); err != nil || user.Name != "Ana" {
		t.Fatalf("user not recorded: %+v %v", user, err)
	}

	// State is single use.
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?state="+state+"&code=abc", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on replayed state, got %d", resp.Code)
	}
}

func TestStateStoreExpiry(t *testing.T) {
	s := newStateStore()
	s.put("old", time.Now().Add(-time.Second))
	if s.consume("old") {
		t.Fatalf("expired state should be rejected")
	}
}
