package testutil

import (
	"net/http/httptest"
	"testing"

	"github.com/TsarRusi/mindmate/internal/store"
)

func TestNewTestServerServesHealth(t *testing.T) {
	server := NewTestServer()

	req := CreateHTTPRequest(t, "GET", "/health", nil)
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	AssertHTTPStatus(t, 200, rr.Code, "health endpoint")
}

func TestCreateHTTPRequestWithBody(t *testing.T) {
	req := CreateHTTPRequest(t, "POST", "/mood", map[string]interface{}{
		"user_id": "u1",
		"score":   5,
	})
	if req.Method != "POST" || req.URL.Path != "/mood" {
		t.Errorf("unexpected request: %s %s", req.Method, req.URL.Path)
	}
	if req.Body == nil {
		t.Error("expected a request body")
	}
}

func TestSeedMoodEntries(t *testing.T) {
	st := store.NewInMemoryStore()
	SeedMoodEntries(t, st, "u1", 3, 7, 5)

	entries, err := st.MoodEntries("u1")
	if err != nil {
		t.Fatalf("MoodEntries failed: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("expected 3 seeded entries, got %d", len(entries))
	}
}
