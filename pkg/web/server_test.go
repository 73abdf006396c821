package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/PancyStudios/PancyModGo/pkg/actionlog"
	"github.com/PancyStudios/PancyModGo/pkg/models"
	"github.com/goccy/go-json"
)

func newTestServer(t *testing.T, allowedHosts string) (*Server, *actionlog.Store) {
	t.Helper()
	store, err := actionlog.Open(":memory:")
	if err != nil {
		t.Fatalf("actionlog.Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	s := NewServer("", allowedHosts)
	SetupAPIRoutes(s, store)
	return s, store
}

func do(s *Server, host, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Host = host
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)
	return rec
}

func TestHostFilter(t *testing.T) {
	s, _ := newTestServer(t, `^(.+\.)?pancy\.dev$`)

	tests := []struct {
		host string
		want int
	}{
		{"pancy.dev", http.StatusOK},
		{"api.pancy.dev", http.StatusOK},
		{"evil.com", http.StatusForbidden},
		{"pancy.dev.evil.com", http.StatusForbidden},
	}

	for _, tt := range tests {
		if got := do(s, tt.host, "/api/health").Code; got != tt.want {
			t.Errorf("GET /api/health Host=%s = %d, want %d", tt.host, got, tt.want)
		}
	}
}

func TestHostPatternInvalidAcceptsAll(t *testing.T) {
	if !hostPattern("(").MatchString("anything") {
		t.Error("invalid pattern should accept every host")
	}
	if !hostPattern("").MatchString("anything") {
		t.Error("empty pattern should accept every host")
	}
}

func TestActionRoutes(t *testing.T) {
	s, store := newTestServer(t, "")
	ctx := context.Background()

	visible := &models.ActionRecord{GuildID: "g", UserID: "u", Action: "warn", Body: "spam", StaffID: "s", Timestamp: 1, ActionSuccess: true}
	hidden := &models.ActionRecord{GuildID: "g", UserID: "u", Action: "note", Body: "secreto", StaffID: "s", Timestamp: 2, ActionSuccess: true, Hidden: true}
	for _, rec := range []*models.ActionRecord{visible, hidden} {
		if _, err := store.Insert(ctx, rec); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	t.Run("action", func(t *testing.T) {
		res := do(s, "localhost", "/api/actions/1")
		if res.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", res.Code)
		}
		var body struct {
			Action      models.ActionRecord       `json:"action"`
			Attachments []models.AttachmentRecord `json:"attachments"`
		}
		if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode error = %v", err)
		}
		if body.Action.ID != visible.ID || body.Action.Body != "spam" {
			t.Errorf("action = %+v", body.Action)
		}
	})

	tests := []struct {
		path string
		want int
	}{
		{"/api/actions/2", http.StatusNotFound},
		{"/api/actions/99", http.StatusNotFound},
		{"/api/actions/abc", http.StatusBadRequest},
		{"/api/actions/0", http.StatusBadRequest},
	}
	for _, tt := range tests {
		if got := do(s, "localhost", tt.path).Code; got != tt.want {
			t.Errorf("GET %s = %d, want %d", tt.path, got, tt.want)
		}
	}

	t.Run("user actions skip hidden", func(t *testing.T) {
		res := do(s, "localhost", "/api/users/u/actions?guild=g")
		if res.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", res.Code)
		}
		var body struct {
			Total   int                   `json:"total"`
			Actions []models.ActionRecord `json:"actions"`
		}
		if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode error = %v", err)
		}
		if body.Total != 1 || len(body.Actions) != 1 || body.Actions[0].Action != "warn" {
			t.Errorf("body = %+v", body)
		}
	})
}

func TestNoRoute(t *testing.T) {
	s, _ := newTestServer(t, "")
	if got := do(s, "localhost", "/nope").Code; got != http.StatusNotFound {
		t.Errorf("GET /nope = %d, want 404", got)
	}
}
