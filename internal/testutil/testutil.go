// Package testutil provides common test utilities and helpers for MindMate tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/TsarRusi/mindmate/internal/api"
	"github.com/TsarRusi/mindmate/internal/models"
	"github.com/TsarRusi/mindmate/internal/router"
	"github.com/TsarRusi/mindmate/internal/store"
)

// NewTestServer creates a test API server with in-memory dependencies and
// no completion providers, so replies come from the canned fallback.
// This centralizes the test server creation logic used across multiple test files.
func NewTestServer() *api.Server {
	st := store.NewInMemoryStore()
	rt := router.New(nil, st)
	return api.NewServer(st, rt)
}

// AssertHTTPStatus checks the HTTP status code and fails the test if it doesn't match.
func AssertHTTPStatus(t *testing.T, expected, actual int, context string) {
	t.Helper()
	if actual != expected {
		t.Errorf("%s: expected status %d, got %d", context, expected, actual)
	}
}

// AssertJSONResponse decodes JSON response and validates the status field.
func AssertJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, expectedStatus string) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}

	if status, ok := response["status"].(string); ok {
		if status != expectedStatus {
			t.Errorf("expected status '%s', got '%s'", expectedStatus, status)
		}
	} else {
		t.Error("response missing or invalid 'status' field")
	}

	return response
}

// CreateHTTPRequest creates an HTTP request with optional JSON body for testing.
func CreateHTTPRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	t.Helper()
	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		t.Fatalf("failed to create HTTP request: %v", err)
	}
	return req
}

// SeedMoodEntries adds sample mood entries to the store for testing.
func SeedMoodEntries(t *testing.T, st store.Store, userID string, scores ...int) {
	t.Helper()
	for _, score := range scores {
		if err := st.AddMoodEntry(models.MoodEntry{UserID: userID, Score: score}); err != nil {
			t.Fatalf("failed to add test mood entry: %v", err)
		}
	}
}
