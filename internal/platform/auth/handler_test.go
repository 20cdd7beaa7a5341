package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/intake/intake/internal/platform/audit"
)

type mockAuditRepo struct {
	events []*audit.SubmissionEvent
}

func (m *mockAuditRepo) Insert(_ context.Context, e *audit.SubmissionEvent) error {
	m.events = append(m.events, e)
	return nil
}

func (m *mockAuditRepo) List(_ context.Context, limit, offset int) ([]*audit.SubmissionEvent, int, error) {
	end := offset + limit
	if end > len(m.events) {
		end = len(m.events)
	}
	if offset > len(m.events) {
		offset = len(m.events)
	}
	return m.events[offset:end], len(m.events), nil
}

func newTestServer(t *testing.T) (*echo.Echo, *mockAuditRepo) {
	t.Helper()
	repo := &mockAuditRepo{}
	a := NewAuthenticator("admin-pass", []byte("test-secret"))
	e := echo.New()
	NewHandler(a, repo).RegisterRoutes(e.Group("/api/v1"))
	return e, repo
}

func login(t *testing.T, e *echo.Echo, passkey string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/login", strings.NewReader(`{"passkey":"`+passkey+`"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		return rec, ""
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return rec, resp.Token
}

func TestLoginHandler(t *testing.T) {
	e, _ := newTestServer(t)

	rec, token := login(t, e, "admin-pass")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if token == "" {
		t.Error("expected token in response")
	}
}

func TestLoginHandler_WrongPasskey(t *testing.T) {
	e, _ := newTestServer(t)

	rec, _ := login(t, e, "wrong")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestListSubmissions_RequiresToken(t *testing.T) {
	e, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/submissions", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/submissions", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer bogus")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with bad token, got %d", rec.Code)
	}
}

func TestListSubmissions_Paginated(t *testing.T) {
	e, repo := newTestServer(t)
	for i := 0; i < 25; i++ {
		repo.events = append(repo.events, &audit.SubmissionEvent{
			Kind:      audit.KindUserCreated,
			CreatedAt: time.Now(),
		})
	}

	_, token := login(t, e, "admin-pass")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/submissions?limit=10&offset=20", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data    []audit.SubmissionEvent `json:"data"`
		Total   int                     `json:"total"`
		HasMore bool                    `json:"has_more"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 25 {
		t.Errorf("total = %d", resp.Total)
	}
	if len(resp.Data) != 5 {
		t.Errorf("expected 5 events on last page, got %d", len(resp.Data))
	}
	if resp.HasMore {
		t.Error("expected has_more=false on last page")
	}
}
