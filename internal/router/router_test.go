// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router tests verify the route table, the middleware chain and the
// JSON fallbacks. None of the requests below reach the database.
package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"votebox/internal/handlers"
	"votebox/internal/voting"
)

func newTestRouter() http.Handler {
	return New(handlers.NewAPI(voting.NewService(nil, nil, nil), nil))
}

func TestHealthRoute(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("content-type: got %q", ct)
	}
	var body map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["message"] != "Voting App API running" {
		t.Errorf("message: got %q", body["message"])
	}
}

func TestDiagnosticRoute(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/test", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var body map[string]any
	json.NewDecoder(rr.Body).Decode(&body)
	if body["backend"] != "running" {
		t.Errorf("backend: got %v", body["backend"])
	}
}

func TestRoutesRejectBadInput(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"bogus category", http.MethodGet, "/api/items?category=bogus", "", http.StatusUnprocessableEntity, "validation_error"},
		{"malformed item id", http.MethodGet, "/api/items/not-a-uuid", "", http.StatusBadRequest, "invalid_id"},
		{"malformed vote id", http.MethodPost, "/api/items/not-a-uuid/vote", `{"direction":"up","session_id":"s1"}`, http.StatusBadRequest, "invalid_id"},
		{"vote without identity", http.MethodPost, "/api/items/" + uuid.NewString() + "/vote", `{"direction":"up"}`, http.StatusBadRequest, "invalid_identity"},
		{"vote bad direction", http.MethodPost, "/api/items/" + uuid.NewString() + "/vote", `{"direction":"left","session_id":"s1"}`, http.StatusUnprocessableEntity, "validation_error"},
		{"create bad body", http.MethodPost, "/api/items", `[1,2]`, http.StatusUnprocessableEntity, "validation_error"},
		{"create bogus category", http.MethodPost, "/api/items", `{"title":"X","category":"bogus"}`, http.StatusUnprocessableEntity, "validation_error"},
		{"unknown route", http.MethodGet, "/api/nope", "", http.StatusNotFound, "not_found"},
		{"wrong method", http.MethodDelete, "/api/items", "", http.StatusMethodNotAllowed, "method_not_allowed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			newTestRouter().ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status: got %d, want %d (body %s)", rr.Code, tt.wantStatus, rr.Body.String())
			}
			var body map[string]string
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body["error"] != tt.wantCode {
				t.Errorf("error: got %q, want %q", body["error"], tt.wantCode)
			}
			if body["message"] == "" {
				t.Error("expected a message")
			}
		})
	}
}

func TestPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/items/"+uuid.NewString()+"/vote", nil)
	req.Header.Set("Origin", "https://board.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rr := httptest.NewRecorder()

	newTestRouter().ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Errorf("status: got %d, want 204", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow origin: got %q", got)
	}
}

func TestMiddlewareChain(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	for _, h := range []string{"X-Content-Type-Options", "Access-Control-Allow-Origin", "Cache-Control"} {
		if rr.Header().Get(h) == "" {
			t.Errorf("missing header %s", h)
		}
	}
}
