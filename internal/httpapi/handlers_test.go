package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/quizcast/quizcast/internal/fallback"
	"github.com/quizcast/quizcast/internal/hub"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	fb, err := fallback.NewStore(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("fallback store: %v", err)
	}
	h := hub.NewHub(ctx, zap.NewNop(), hub.Options{})
	return SetupRoutes(h, fb, zap.NewNop())
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Status    string `json:"status"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("status = %q, want ok", body.Status)
	}
	if _, err := time.Parse(time.RFC3339, body.Timestamp); err != nil {
		t.Errorf("timestamp %q not RFC3339: %v", body.Timestamp, err)
	}
}

func TestFallbackRoundTrip(t *testing.T) {
	router := newTestRouter(t)

	put := httptest.NewRequest(http.MethodPut, "/api/fallback/rooms/abc123",
		strings.NewReader(`{"id":"abc123","phase":"active","candidates":[]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, put)
	if rec.Code != http.StatusOK {
		t.Fatalf("put status = %d, want 200: %s", rec.Code, rec.Body)
	}

	get := httptest.NewRequest(http.MethodGet, "/api/fallback/rooms/abc123", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, get)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", rec.Code)
	}
	var room map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&room); err != nil {
		t.Fatalf("decoding room: %v", err)
	}
	if room["id"] != "abc123" {
		t.Errorf("id = %v, want abc123", room["id"])
	}
	if _, ok := room["lastActivity"]; !ok {
		t.Errorf("lastActivity not stamped on update")
	}

	list := httptest.NewRequest(http.MethodGet, "/api/fallback/rooms/", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, list)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rec.Code)
	}
	var rooms []fallback.Summary
	if err := json.NewDecoder(rec.Body).Decode(&rooms); err != nil {
		t.Fatalf("decoding list: %v", err)
	}
	if len(rooms) != 1 || rooms[0].ID != "abc123" || !rooms[0].Active {
		t.Errorf("unexpected listing: %+v", rooms)
	}
}

func TestFallbackErrors(t *testing.T) {
	router := newTestRouter(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{name: "unknown room", method: http.MethodGet, path: "/api/fallback/rooms/missing1", want: http.StatusNotFound},
		{name: "bad id on get", method: http.MethodGet, path: "/api/fallback/rooms/bad..id", want: http.StatusBadRequest},
		{name: "malformed payload", method: http.MethodPut, path: "/api/fallback/rooms/abc123", body: "not json", want: http.StatusBadRequest},
		{name: "null payload", method: http.MethodPut, path: "/api/fallback/rooms/abc123", body: "null", want: http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var req *http.Request
			if tc.body != "" {
				req = httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			} else {
				req = httptest.NewRequest(tc.method, tc.path, nil)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}
