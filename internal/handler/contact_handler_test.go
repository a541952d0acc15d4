package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/orderdesk/backend/internal/model"
	"github.com/orderdesk/backend/internal/service"
)

// ---------------------------------------------------------------------------
// Mock ContactService
// ---------------------------------------------------------------------------

type mockContactService struct {
	submitFunc   func(ctx context.Context, actor model.Actor, origin, message string) (*model.ContactMessage, error)
	listFunc     func(ctx context.Context, actor model.Actor, opts model.ContactListOptions) ([]*model.ContactMessage, error)
	markReadFunc func(ctx context.Context, actor model.Actor, id string) error
	deleteFunc   func(ctx context.Context, actor model.Actor, id string) error
}

func (m *mockContactService) Submit(ctx context.Context, actor model.Actor, origin, message string) (*model.ContactMessage, error) {
	if m.submitFunc != nil {
		return m.submitFunc(ctx, actor, origin, message)
	}
	return &model.ContactMessage{ID: "contact-1", Message: message, IPAddress: origin}, nil
}

func (m *mockContactService) List(ctx context.Context, actor model.Actor, opts model.ContactListOptions) ([]*model.ContactMessage, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, actor, opts)
	}
	return nil, nil
}

func (m *mockContactService) MarkRead(ctx context.Context, actor model.Actor, id string) error {
	if m.markReadFunc != nil {
		return m.markReadFunc(ctx, actor, id)
	}
	return nil
}

func (m *mockContactService) Delete(ctx context.Context, actor model.Actor, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, actor, id)
	}
	return nil
}

func newTestContactHandler(svc service.ContactService) *ContactHandler {
	return NewContactHandler(svc, service.NewContactRateLimiter(nil, time.Hour))
}

// ---------------------------------------------------------------------------
// POST /api/contact tests
// ---------------------------------------------------------------------------

func TestContactHandler_Submit_Success(t *testing.T) {
	var gotActor model.Actor
	var gotOrigin, gotMessage string
	mock := &mockContactService{
		submitFunc: func(_ context.Context, actor model.Actor, origin, message string) (*model.ContactMessage, error) {
			gotActor, gotOrigin, gotMessage = actor, origin, message
			return &model.ContactMessage{ID: "contact-7"}, nil
		},
	}
	h := newTestContactHandler(mock)

	body := `{"message":"Hello, I have a question."}`
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	req = withActor(req, "U1", model.RoleCustomer)
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body: %s", rec.Code, rec.Body.String())
	}
	if gotActor.ID != "U1" {
		t.Errorf("expected actor U1, got %+v", gotActor)
	}
	if gotOrigin != "203.0.113.7" {
		t.Errorf("expected origin from first X-Forwarded-For entry, got %q", gotOrigin)
	}
	if gotMessage != "Hello, I have a question." {
		t.Errorf("unexpected message %q", gotMessage)
	}
	var resp map[string]string
	_ = json.NewDecoder(rec.Body).Decode(&resp)
	if resp["id"] != "contact-7" {
		t.Errorf("expected id=contact-7, got %q", resp["id"])
	}
}

// TestContactHandler_Submit_NoForwardedFor verifies the loopback sentinel is used as origin.
func TestContactHandler_Submit_NoForwardedFor(t *testing.T) {
	var gotOrigin string
	mock := &mockContactService{
		submitFunc: func(_ context.Context, _ model.Actor, origin, message string) (*model.ContactMessage, error) {
			gotOrigin = origin
			return &model.ContactMessage{ID: "c"}, nil
		},
	}
	h := newTestContactHandler(mock)

	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(`{"message":"Hello there, anyone?"}`))
	req = withActor(req, "U1", model.RoleCustomer)
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	if gotOrigin != "127.0.0.1" {
		t.Errorf("expected 127.0.0.1, got %q", gotOrigin)
	}
}

// TestContactHandler_Submit_RateLimited verifies 429 with Retry-After.
func TestContactHandler_Submit_RateLimited(t *testing.T) {
	mock := &mockContactService{
		submitFunc: func(context.Context, model.Actor, string, string) (*model.ContactMessage, error) {
			return nil, service.ErrRateLimited
		},
	}
	h := newTestContactHandler(mock)

	req := withActor(httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(`{"message":"Hello again, anyone?"}`)), "U1", model.RoleCustomer)
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "3600" {
		t.Errorf("expected Retry-After=3600, got %q", got)
	}
}

// TestContactHandler_Submit_Unauthenticated verifies that anonymous submissions return 401.
func TestContactHandler_Submit_Unauthenticated(t *testing.T) {
	mock := &mockContactService{
		submitFunc: func(_ context.Context, actor model.Actor, _, _ string) (*model.ContactMessage, error) {
			if !actor.Authenticated() {
				return nil, service.ErrUnauthorized
			}
			return &model.ContactMessage{}, nil
		},
	}
	h := newTestContactHandler(mock)

	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(`{"message":"Hello there, anyone?"}`))
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

// TestContactHandler_Submit_TooShort verifies that a validation error returns 400.
func TestContactHandler_Submit_TooShort(t *testing.T) {
	mock := &mockContactService{
		submitFunc: func(context.Context, model.Actor, string, string) (*model.ContactMessage, error) {
			return nil, &service.ValidationError{Field: "message", Message: "message must be at least 10 characters long"}
		},
	}
	h := newTestContactHandler(mock)

	body, _ := json.Marshal(map[string]string{"message": "short"})
	req := withActor(httptest.NewRequest(http.MethodPost, "/api/contact", bytes.NewReader(body)), "U1", model.RoleCustomer)
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	var resp map[string]string
	_ = json.NewDecoder(rec.Body).Decode(&resp)
	if resp["field"] != "message" {
		t.Errorf("expected field=message, got %q", resp["field"])
	}
}

// TestContactHandler_Submit_InvalidJSON verifies that malformed JSON returns 400.
func TestContactHandler_Submit_InvalidJSON(t *testing.T) {
	h := newTestContactHandler(&mockContactService{})

	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader("{bad json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid JSON, got %d", rec.Code)
	}
}

// TestContactHandler_Submit_ServiceError verifies that a service failure returns 500.
func TestContactHandler_Submit_ServiceError(t *testing.T) {
	mock := &mockContactService{
		submitFunc: func(context.Context, model.Actor, string, string) (*model.ContactMessage, error) {
			return nil, errors.New("db connection lost")
		},
	}
	h := newTestContactHandler(mock)

	req := withActor(httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(`{"message":"Hello there, anyone?"}`)), "U1", model.RoleCustomer)
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 on service error, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "" {
		t.Error("Retry-After is only sent when rate limited")
	}
}

// ---------------------------------------------------------------------------
// Admin endpoints
// ---------------------------------------------------------------------------

func TestContactHandler_AdminList(t *testing.T) {
	var gotOpts model.ContactListOptions
	mock := &mockContactService{
		listFunc: func(_ context.Context, actor model.Actor, opts model.ContactListOptions) ([]*model.ContactMessage, error) {
			gotOpts = opts
			return nil, nil
		},
	}
	h := newTestContactHandler(mock)

	req := withActor(httptest.NewRequest(http.MethodGet, "/api/admin/contacts?status=unread&limit=10&offset=5", nil), "S1", model.RoleStaff)
	rec := httptest.NewRecorder()
	h.AdminList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotOpts.Status != "unread" || gotOpts.Limit != 10 || gotOpts.Offset != 5 {
		t.Errorf("unexpected options: %+v", gotOpts)
	}
	if !strings.Contains(rec.Body.String(), `"messages":[]`) {
		t.Errorf("expected empty array, got %s", rec.Body.String())
	}
}

func TestContactHandler_AdminList_Forbidden(t *testing.T) {
	mock := &mockContactService{
		listFunc: func(context.Context, model.Actor, model.ContactListOptions) ([]*model.ContactMessage, error) {
			return nil, service.ErrForbidden
		},
	}
	h := newTestContactHandler(mock)

	req := withActor(httptest.NewRequest(http.MethodGet, "/api/admin/contacts", nil), "U1", model.RoleCustomer)
	rec := httptest.NewRecorder()
	h.AdminList(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestContactHandler_MarkReadAndDelete(t *testing.T) {
	mock := &mockContactService{
		markReadFunc: func(_ context.Context, _ model.Actor, id string) error {
			if id == "missing" {
				return service.ErrNotFound
			}
			return nil
		},
		deleteFunc: func(_ context.Context, _ model.Actor, id string) error {
			if id == "missing" {
				return service.ErrNotFound
			}
			return nil
		},
	}
	h := newTestContactHandler(mock)
	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /api/admin/contacts/{id}/read", h.MarkRead)
	mux.HandleFunc("DELETE /api/admin/contacts/{id}", h.Delete)

	tests := []struct {
		method, path string
		status       int
	}{
		{"PATCH", "/api/admin/contacts/c1/read", http.StatusNoContent},
		{"PATCH", "/api/admin/contacts/missing/read", http.StatusNotFound},
		{"DELETE", "/api/admin/contacts/c1", http.StatusNoContent},
		{"DELETE", "/api/admin/contacts/missing", http.StatusNotFound},
	}
	for _, tt := range tests {
		req := withActor(httptest.NewRequest(tt.method, tt.path, nil), "S1", model.RoleStaff)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		if rec.Code != tt.status {
			t.Errorf("%s %s: expected %d, got %d", tt.method, tt.path, tt.status, rec.Code)
		}
	}
}
