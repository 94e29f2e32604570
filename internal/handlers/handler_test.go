// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// Integration tests are skipped when PostgreSQL is unavailable.
package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"votebox/internal/database"
	"votebox/internal/models"
)

// fakeBoard implements Board with canned results and records its inputs.
type fakeBoard struct {
	item  *models.Item
	items []models.Item
	stats *models.Stats
	err   error

	gotCategory string
	gotSort     string
	gotID       string
	gotInput    models.NewItemInput
	gotVote     models.VoteRequest
}

func (f *fakeBoard) CreateItem(_ context.Context, in models.NewItemInput) (*models.Item, error) {
	f.gotInput = in
	return f.item, f.err
}

func (f *fakeBoard) ListItems(_ context.Context, category, sort string) ([]models.Item, error) {
	f.gotCategory, f.gotSort = category, sort
	return f.items, f.err
}

func (f *fakeBoard) GetItem(_ context.Context, rawID string) (*models.Item, error) {
	f.gotID = rawID
	return f.item, f.err
}

func (f *fakeBoard) CastVote(_ context.Context, rawID string, req models.VoteRequest) (*models.Item, error) {
	f.gotID, f.gotVote = rawID, req
	return f.item, f.err
}

func (f *fakeBoard) Stats(context.Context) (*models.Stats, error) {
	return f.stats, f.err
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		host := envOr("POSTGRES_HOST", "localhost")
		port := envOr("POSTGRES_PORT", "5432")
		user := envOr("POSTGRES_USER", "votebox")
		pass := envOr("POSTGRES_PASSWORD", "changeme")
		name := envOr("DATABASE_NAME", "votebox")
		dsn = "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// jsonRequest builds a request with a JSON encoded body.
func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// decodeError reads an error response body.
func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v (raw %q)", err, rec.Body.String())
	}
	return body
}

func sampleItem() *models.Item {
	return &models.Item{ID: uuid.New(), Title: "Rust", Category: models.CategoryTools}
}
