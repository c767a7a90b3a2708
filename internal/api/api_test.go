package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/TsarRusi/mindmate/internal/models"
	"github.com/TsarRusi/mindmate/internal/router"
	"github.com/TsarRusi/mindmate/internal/store"
)

// newTestServer creates a Server with in-memory dependencies and no providers.
func newTestServer() *Server {
	st := store.NewInMemoryStore()
	rt := router.New(nil, st)
	return NewServer(st, rt)
}

func createJSONRequest(t *testing.T, method, url, body string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req
}

func assertHTTPStatus(t *testing.T, expected, actual int, context string) {
	t.Helper()
	if actual != expected {
		t.Errorf("%s: expected status %d, got %d", context, expected, actual)
	}
}

func assertJSONStatus(t *testing.T, rr *httptest.ResponseRecorder, expected string) models.APIResponse {
	t.Helper()
	var response models.APIResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}
	if response.Status != expected {
		t.Errorf("expected status %q, got %q", expected, response.Status)
	}
	return response
}

func TestMessageHandler_Success(t *testing.T) {
	server := newTestServer()

	req := createJSONRequest(t, "POST", "/message", `{"user_id":"u1","text":"I feel anxious"}`)
	rr := httptest.NewRecorder()
	server.messageHandler(rr, req)

	assertHTTPStatus(t, http.StatusOK, rr.Code, "message handler success")
	response := assertJSONStatus(t, rr, "ok")

	result := response.Result.(map[string]interface{})
	if reply, _ := result["reply"].(string); reply == "" {
		t.Error("expected a non-empty reply")
	}
	if id, _ := result["user_id"].(string); id != "u1" {
		t.Errorf("expected user_id echoed back, got %q", id)
	}
}

func TestMessageHandler_GeneratesUserID(t *testing.T) {
	server := newTestServer()

	req := createJSONRequest(t, "POST", "/message", `{"text":"hello"}`)
	rr := httptest.NewRecorder()
	server.messageHandler(rr, req)

	assertHTTPStatus(t, http.StatusOK, rr.Code, "message without user id")
	response := assertJSONStatus(t, rr, "ok")

	result := response.Result.(map[string]interface{})
	id, _ := result["user_id"].(string)
	if !strings.HasPrefix(id, "u_") {
		t.Errorf("expected a generated user ID with u_ prefix, got %q", id)
	}
}

func TestMessageHandler_CrisisText(t *testing.T) {
	server := newTestServer()

	req := createJSONRequest(t, "POST", "/message", `{"user_id":"u1","text":"I want to die"}`)
	rr := httptest.NewRecorder()
	server.messageHandler(rr, req)

	assertHTTPStatus(t, http.StatusOK, rr.Code, "message handler crisis")
	response := assertJSONStatus(t, rr, "ok")

	result := response.Result.(map[string]interface{})
	if reply, _ := result["reply"].(string); reply != router.CrisisMessage {
		t.Errorf("expected the crisis message, got %q", reply)
	}
}

func TestMessageHandler_BadRequest(t *testing.T) {
	server := newTestServer()

	cases := []struct {
		name string
		body string
	}{
		{"invalid json", `{bad`},
		{"missing text", `{"user_id":"u1"}`},
		{"bad mode", `{"user_id":"u1","text":"hello","mode":"therapy"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := createJSONRequest(t, "POST", "/message", tc.body)
			rr := httptest.NewRecorder()
			server.messageHandler(rr, req)

			assertHTTPStatus(t, http.StatusBadRequest, rr.Code, tc.name)
			assertJSONStatus(t, rr, "error")
		})
	}
}

func TestMessageHandler_MethodNotAllowed(t *testing.T) {
	server := newTestServer()

	req, _ := http.NewRequest("GET", "/message", nil)
	rr := httptest.NewRecorder()
	server.messageHandler(rr, req)

	assertHTTPStatus(t, http.StatusMethodNotAllowed, rr.Code, "message handler GET")
}

func TestMoodHandler_Success(t *testing.T) {
	server := newTestServer()

	req := createJSONRequest(t, "POST", "/mood", `{"user_id":"u1","score":7}`)
	rr := httptest.NewRecorder()
	server.moodHandler(rr, req)

	assertHTTPStatus(t, http.StatusCreated, rr.Code, "mood handler success")
	response := assertJSONStatus(t, rr, "recorded")

	result := response.Result.(map[string]interface{})
	if result["score"].(float64) != 7 {
		t.Errorf("expected score 7 in ack, got %v", result["score"])
	}
	if result["count"].(float64) != 1 {
		t.Errorf("expected count 1 in ack, got %v", result["count"])
	}
}

func TestMoodHandler_InvalidScore(t *testing.T) {
	server := newTestServer()

	for _, body := range []string{
		`{"user_id":"u1","score":0}`,
		`{"user_id":"u1","score":11}`,
		`{"user_id":"","score":5}`,
	} {
		req := createJSONRequest(t, "POST", "/mood", body)
		rr := httptest.NewRecorder()
		server.moodHandler(rr, req)

		assertHTTPStatus(t, http.StatusBadRequest, rr.Code, "mood handler invalid")
		assertJSONStatus(t, rr, "error")
	}
}

func TestMoodSummaryHandler(t *testing.T) {
	server := newTestServer()

	// No data yet
	req, _ := http.NewRequest("GET", "/mood/summary?user_id=u1", nil)
	rr := httptest.NewRecorder()
	server.moodSummaryHandler(rr, req)
	assertHTTPStatus(t, http.StatusNotFound, rr.Code, "summary with no entries")

	for _, body := range []string{
		`{"user_id":"u1","score":3}`,
		`{"user_id":"u1","score":7}`,
		`{"user_id":"u1","score":5}`,
	} {
		post := createJSONRequest(t, "POST", "/mood", body)
		server.moodHandler(httptest.NewRecorder(), post)
	}

	req, _ = http.NewRequest("GET", "/mood/summary?user_id=u1", nil)
	rr = httptest.NewRecorder()
	server.moodSummaryHandler(rr, req)

	assertHTTPStatus(t, http.StatusOK, rr.Code, "summary success")
	response := assertJSONStatus(t, rr, "ok")

	result := response.Result.(map[string]interface{})
	if result["count"].(float64) != 3 {
		t.Errorf("expected count 3, got %v", result["count"])
	}
	if result["average"].(float64) != 5.0 {
		t.Errorf("expected average 5.0, got %v", result["average"])
	}
	if result["last"].(float64) != 5 {
		t.Errorf("expected last 5, got %v", result["last"])
	}
}

func TestTechniquesHandler(t *testing.T) {
	server := newTestServer()

	// Without a category: list available categories.
	req, _ := http.NewRequest("GET", "/techniques", nil)
	rr := httptest.NewRecorder()
	server.techniquesHandler(rr, req)
	assertHTTPStatus(t, http.StatusOK, rr.Code, "categories list")

	// With a known category.
	req, _ = http.NewRequest("GET", "/techniques?category=quick", nil)
	rr = httptest.NewRecorder()
	server.techniquesHandler(rr, req)
	assertHTTPStatus(t, http.StatusOK, rr.Code, "known category")
	response := assertJSONStatus(t, rr, "ok")
	if list, ok := response.Result.([]interface{}); !ok || len(list) == 0 {
		t.Errorf("expected non-empty technique list, got %v", response.Result)
	}

	// Unknown category.
	req, _ = http.NewRequest("GET", "/techniques?category=yoga", nil)
	rr = httptest.NewRecorder()
	server.techniquesHandler(rr, req)
	assertHTTPStatus(t, http.StatusNotFound, rr.Code, "unknown category")
}

func TestRandomTechniqueHandler(t *testing.T) {
	server := newTestServer()

	req, _ := http.NewRequest("GET", "/techniques/random", nil)
	rr := httptest.NewRecorder()
	server.randomTechniqueHandler(rr, req)
	assertHTTPStatus(t, http.StatusOK, rr.Code, "random technique")
	assertJSONStatus(t, rr, "ok")

	// Mood-personalized pick.
	req, _ = http.NewRequest("GET", "/techniques/random?mood=2", nil)
	rr = httptest.NewRecorder()
	server.randomTechniqueHandler(rr, req)
	assertHTTPStatus(t, http.StatusOK, rr.Code, "mood-personalized technique")

	// Invalid mood.
	req, _ = http.NewRequest("GET", "/techniques/random?mood=20", nil)
	rr = httptest.NewRecorder()
	server.randomTechniqueHandler(rr, req)
	assertHTTPStatus(t, http.StatusBadRequest, rr.Code, "invalid mood param")
}

func TestSessionsHandler(t *testing.T) {
	server := newTestServer()

	req := createJSONRequest(t, "POST", "/sessions", `{"user_id":"u1","technique_id":1,"minutes":5,"mood_before":4,"mood_after":7}`)
	rr := httptest.NewRecorder()
	server.sessionsHandler(rr, req)
	assertHTTPStatus(t, http.StatusCreated, rr.Code, "session recorded")
	assertJSONStatus(t, rr, "ok")

	// Unknown technique id is rejected.
	req = createJSONRequest(t, "POST", "/sessions", `{"user_id":"u1","technique_id":999,"minutes":5,"mood_before":4,"mood_after":7}`)
	rr = httptest.NewRecorder()
	server.sessionsHandler(rr, req)
	assertHTTPStatus(t, http.StatusBadRequest, rr.Code, "unknown technique")
}

func TestFavoritesAndRatingsHandlers(t *testing.T) {
	server := newTestServer()

	req := createJSONRequest(t, "POST", "/favorites", `{"user_id":"u1","technique_id":2}`)
	rr := httptest.NewRecorder()
	server.favoritesHandler(rr, req)
	assertHTTPStatus(t, http.StatusCreated, rr.Code, "favorite added")

	req = createJSONRequest(t, "POST", "/ratings", `{"user_id":"u1","technique_id":2,"rating":5}`)
	rr = httptest.NewRecorder()
	server.ratingsHandler(rr, req)
	assertHTTPStatus(t, http.StatusCreated, rr.Code, "rating recorded")

	// Out-of-range rating is rejected.
	req = createJSONRequest(t, "POST", "/ratings", `{"user_id":"u1","technique_id":2,"rating":6}`)
	rr = httptest.NewRecorder()
	server.ratingsHandler(rr, req)
	assertHTTPStatus(t, http.StatusBadRequest, rr.Code, "invalid rating")
}

func TestStatsHandler(t *testing.T) {
	server := newTestServer()

	post := createJSONRequest(t, "POST", "/sessions", `{"user_id":"u1","technique_id":1,"minutes":5,"mood_before":4,"mood_after":7}`)
	server.sessionsHandler(httptest.NewRecorder(), post)

	req, _ := http.NewRequest("GET", "/stats?user_id=u1", nil)
	rr := httptest.NewRecorder()
	server.statsHandler(rr, req)

	assertHTTPStatus(t, http.StatusOK, rr.Code, "stats success")
	response := assertJSONStatus(t, rr, "ok")

	result := response.Result.(map[string]interface{})
	practice := result["practice"].(map[string]interface{})
	if practice["total_sessions"].(float64) != 1 {
		t.Errorf("expected 1 session, got %v", practice["total_sessions"])
	}
}

func TestHealthHandler(t *testing.T) {
	server := newTestServer()

	req, _ := http.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()
	server.healthHandler(rr, req)

	assertHTTPStatus(t, http.StatusOK, rr.Code, "health check")

	var health map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&health); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if health["status"] != "healthy" {
		t.Errorf("expected healthy status, got %v", health["status"])
	}
	if health["providers"] != false {
		t.Errorf("expected providers=false with no providers configured, got %v", health["providers"])
	}
}

func TestRootHandler(t *testing.T) {
	server := newTestServer()

	req, _ := http.NewRequest("GET", "/", nil)
	rr := httptest.NewRecorder()
	server.rootHandler(rr, req)
	assertHTTPStatus(t, http.StatusOK, rr.Code, "root info")

	req, _ = http.NewRequest("GET", "/nope", nil)
	rr = httptest.NewRecorder()
	server.rootHandler(rr, req)
	assertHTTPStatus(t, http.StatusNotFound, rr.Code, "unknown path")
}

func TestHandlerRoutes(t *testing.T) {
	server := newTestServer()
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health failed: %v", err)
	}
	defer resp.Body.Close()
	assertHTTPStatus(t, http.StatusOK, resp.StatusCode, "routed health check")
}
