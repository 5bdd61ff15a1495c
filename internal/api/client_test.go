package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL, Token: "test-token"})
}

func TestRequestSetsAuthAndPrefix(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("authorization = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("content type = %q", got)
		}
		if r.URL.Path != "/api/auth/me" {
			t.Errorf("path = %q, want /api/auth/me", r.URL.Path)
		}
		w.Write([]byte(`{"email":"admin@plannivo.local","role":"admin"}`))
	})

	p, err := c.Request(context.Background(), http.MethodGet, "/auth/me", nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if p.Field("email") != "admin@plannivo.local" {
		t.Errorf("email = %q", p.Field("email"))
	}
}

func TestRequestAccepts201(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"u-1"}`))
	})

	p, err := c.Request(context.Background(), http.MethodPost, "/users", map[string]string{"email": "x"})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if p.Field("id") != "u-1" {
		t.Errorf("id = %q, want u-1", p.Field("id"))
	}
}

func TestRequestEmptySuccessBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	p, err := c.Request(context.Background(), http.MethodPost, "/wallet/admin/deposit/u-1", nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if len(p) != 0 {
		t.Errorf("payload = %v, want empty", p)
	}
}

func TestRequestErrorField(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"email already taken"}`))
	})

	_, err := c.Request(context.Background(), http.MethodPost, "/auth/register", nil)

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", apiErr.StatusCode)
	}
	if apiErr.Message != "email already taken" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestRequestErrorRawBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("upstream exploded"))
	})

	_, err := c.Request(context.Background(), http.MethodGet, "/roles", nil)

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if apiErr.Message != "upstream exploded" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestRequestErrorEmptyBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := c.Request(context.Background(), http.MethodGet, "/roles", nil)

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if apiErr.Message != "HTTP 403" {
		t.Errorf("message = %q, want HTTP 403", apiErr.Message)
	}
}

func TestDeleteAccepts204(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	if err := c.DeleteUser(context.Background(), "u-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestSuccessStatusSets(t *testing.T) {
	tests := []struct {
		method string
		code   int
		want   bool
	}{
		{http.MethodGet, 200, true},
		{http.MethodPost, 201, true},
		{http.MethodPost, 204, false},
		{http.MethodDelete, 204, true},
		{http.MethodDelete, 200, true},
		{http.MethodGet, 404, false},
		{http.MethodDelete, 500, false},
	}

	for _, tt := range tests {
		if got := success(tt.method, tt.code); got != tt.want {
			t.Errorf("success(%s, %d) = %v, want %v", tt.method, tt.code, got, tt.want)
		}
	}
}

func TestTransportFailure(t *testing.T) {
	c := New(Config{BaseURL: "http://127.0.0.1:1", Token: "t"})

	_, err := c.Request(context.Background(), http.MethodGet, "/auth/me", nil)
	if err == nil {
		t.Fatal("expected transport error")
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		t.Errorf("transport failure should not be an API error: %v", err)
	}
}

func TestDryRunMakesNoCalls(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("dry run must not reach the network")
	})
	c.dryRun = true

	p, err := c.Request(context.Background(), http.MethodPost, "/bookings", nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if !strings.HasPrefix(p.Field("id"), "dry-run-") {
		t.Errorf("id = %q, want dry-run placeholder", p.Field("id"))
	}

	list, err := c.RequestList(context.Background(), http.MethodGet, "/roles")
	if err != nil {
		t.Fatalf("request list: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("list = %v, want empty", list)
	}
}

func TestListRolesNumericIDs(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":7,"name":"student"},{"id":"r-8","name":"outsider"}]`))
	})

	roles, err := c.ListRoles(context.Background())
	if err != nil {
		t.Fatalf("list roles: %v", err)
	}
	if len(roles) != 2 {
		t.Fatalf("roles = %d, want 2", len(roles))
	}
	if roles[0].ID != "7" {
		t.Errorf("numeric id rendered as %q, want 7", roles[0].ID)
	}
	if roles[1].ID != "r-8" {
		t.Errorf("string id = %q, want r-8", roles[1].ID)
	}
}

func TestPurchasePackageAlternateIDField(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"customerPackageId":"cp-1"}`))
	})

	id, err := c.PurchasePackage(context.Background(), PurchaseRequest{UserID: "u-1", PackageID: "p-1"})
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if id != "cp-1" {
		t.Errorf("id = %q, want cp-1", id)
	}
}

func TestVerifyDefaultsUnknown(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	id, err := c.Verify(context.Background())
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if id.Email != "unknown" || id.Role != "unknown" {
		t.Errorf("identity = %+v, want unknown/unknown", id)
	}
}

func TestServiceRentalClassification(t *testing.T) {
	tests := []struct {
		svc  Service
		want bool
	}{
		{Service{ServiceType: "rental"}, true},
		{Service{Category: "rental"}, true},
		{Service{ServiceType: "lesson"}, false},
		{Service{}, false},
	}

	for _, tt := range tests {
		if got := tt.svc.Rental(); got != tt.want {
			t.Errorf("Rental(%+v) = %v, want %v", tt.svc, got, tt.want)
		}
	}
}
