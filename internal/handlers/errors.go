// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"votebox/internal/models"
)

// errorBody is the JSON shape of every failed response.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// classify maps a service error to its HTTP status and reason code.
func classify(err error) (int, string) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity, "validation_error"
	case errors.Is(err, models.ErrInvalidIdentity):
		return http.StatusBadRequest, "invalid_identity"
	case errors.Is(err, models.ErrInvalidReference):
		return http.StatusBadRequest, "invalid_id"
	case errors.Is(err, models.ErrItemNotFound):
		return http.StatusNotFound, "item_not_found"
	case errors.Is(err, models.ErrDuplicateVote):
		return http.StatusConflict, "duplicate_vote"
	case errors.Is(err, models.ErrStorageUnavailable):
		return http.StatusInternalServerError, "storage_unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeError sends the error response for err. Server errors are logged
// with their cause and answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"code", code,
			"error", err,
		)
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorBody{Error: code, Message: msg})
}
