// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON HTTP API. Handlers decode requests,
// delegate to the voting service and map its errors to status codes.
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"votebox/internal/database"
	"votebox/internal/models"
)

// maxBodySize caps request bodies. Descriptions are the largest field.
const maxBodySize = 64 << 10

// Board is the voting service as seen by the HTTP layer.
type Board interface {
	CreateItem(ctx context.Context, in models.NewItemInput) (*models.Item, error)
	ListItems(ctx context.Context, category, sort string) ([]models.Item, error)
	GetItem(ctx context.Context, rawID string) (*models.Item, error)
	CastVote(ctx context.Context, rawID string, req models.VoteRequest) (*models.Item, error)
	Stats(ctx context.Context) (*models.Stats, error)
}

// Diagnoser reports storage backend status for the diagnostic endpoint.
type Diagnoser func(ctx context.Context) database.Report

// API groups the item, vote and status handlers.
type API struct {
	board    Board
	diagnose Diagnoser
}

// NewAPI creates the handler group. diagnose may be nil, in which case the
// diagnostic endpoint reports an uninitialized database.
func NewAPI(board Board, diagnose Diagnoser) *API {
	return &API{board: board, diagnose: diagnose}
}

// Health answers liveness probes.
func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Voting App API running"})
}

// Diagnostic reports database connectivity. It always answers 200; a broken
// backend shows up in the body.
func (a *API) Diagnostic(w http.ResponseWriter, r *http.Request) {
	if a.diagnose == nil {
		writeJSON(w, http.StatusOK, database.Diagnose(r.Context(), nil, false, false))
		return
	}
	writeJSON(w, http.StatusOK, a.diagnose(r.Context()))
}

// CreateItem handles POST /api/items.
func (a *API) CreateItem(w http.ResponseWriter, r *http.Request) {
	var in models.NewItemInput
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	item, err := a.board.CreateItem(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": item.ID.String()})
}

// ListItems handles GET /api/items?category=&sort=.
func (a *API) ListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := a.board.ListItems(r.Context(), q.Get("category"), q.Get("sort"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// GetItem handles GET /api/items/{id}.
func (a *API) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := a.board.GetItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Vote handles POST /api/items/{id}/vote. A malformed id is reported before
// the body is read.
func (a *API) Vote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := uuid.Validate(id); err != nil {
		writeError(w, r, models.ErrInvalidReference)
		return
	}

	var req models.VoteRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	item, err := a.board.CastVote(r.Context(), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Stats handles GET /api/stats.
func (a *API) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.board.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// decodeBody reads a JSON object from the request. Any malformed or
// oversized body is a validation error on the body field.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return &models.ValidationError{Field: "body", Reason: "must be a valid JSON object"}
	}
	// The body must hold exactly one value.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return &models.ValidationError{Field: "body", Reason: "must be a single JSON object"}
	}
	return nil
}

// writeJSON sends a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
