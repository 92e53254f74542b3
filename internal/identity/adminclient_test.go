package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vetsuite/clinic-crm/pkg/logging"
)

func newTestAdminClient(t *testing.T, handler http.HandlerFunc) *AdminClient {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return NewAdminClient(ts.URL, "service-key", logging.Default())
}

func TestAdminClient_FindAccount(t *testing.T) {
	client := newTestAdminClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Fatalf("method = %s, want GET", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer service-key" {
			t.Fatalf("auth header = %s", got)
		}
		if r.URL.Query().Get("email") != "john@example.com" {
			t.Fatalf("email query = %s", r.URL.Query().Get("email"))
		}
		_, _ = w.Write([]byte(`{"users":[{"id":"acc-1","email":"john@example.com"}]}`))
	})

	id, err := client.FindAccount(context.Background(), "john@example.com")
	if err != nil {
		t.Fatalf("FindAccount: %v", err)
	}
	if id != "acc-1" {
		t.Errorf("id = %s, want acc-1", id)
	}
}

func TestAdminClient_FindAccountMissing(t *testing.T) {
	client := newTestAdminClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"users":[]}`))
	})

	id, err := client.FindAccount(context.Background(), "nobody@example.com")
	if err != nil {
		t.Fatalf("FindAccount: %v", err)
	}
	if id != "" {
		t.Errorf("id = %q, want empty", id)
	}
}

func TestAdminClient_CreateAccount(t *testing.T) {
	client := newTestAdminClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/admin/users" || r.Method != http.MethodPost {
			t.Fatalf("%s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["email"] != "john@example.com" {
			t.Fatalf("email = %v", body["email"])
		}
		if body["email_confirm"] != true {
			t.Fatal("expected email_confirm true")
		}
		_, _ = w.Write([]byte(`{"id":"acc-2","email":"john@example.com"}`))
	})

	meta := AccountMetadata{Name: "John", Role: RoleOwner, PetsOwned: []string{"p001"}}
	id, err := client.CreateAccount(context.Background(), "john@example.com", "temp-pass", meta)
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if id != "acc-2" {
		t.Errorf("id = %s, want acc-2", id)
	}
}

func TestAdminClient_IssueRecoveryLink(t *testing.T) {
	client := newTestAdminClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/admin/generate_link" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"action_link":"https://auth.example/recover?token=abc"}`))
	})

	link, err := client.IssueRecoveryLink(context.Background(), "john@example.com")
	if err != nil {
		t.Fatalf("IssueRecoveryLink: %v", err)
	}
	if link != "https://auth.example/recover?token=abc" {
		t.Errorf("link = %s", link)
	}
}

func TestAdminClient_ErrorStatus(t *testing.T) {
	client := newTestAdminClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	if _, err := client.FindAccount(context.Background(), "john@example.com"); err == nil {
		t.Fatal("expected error on 502")
	}
}

func TestAdminClient_MissingServiceKey(t *testing.T) {
	client := NewAdminClient("http://localhost", "", nil)
	if _, err := client.FindAccount(context.Background(), "a@b.c"); err == nil {
		t.Fatal("expected error without service key")
	}
}
