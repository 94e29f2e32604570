// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"errors"
	"fmt"
)

// Failures returned by the voting service. Handlers map each one to an HTTP
// status and a machine-stable reason code.
var (
	ErrInvalidIdentity    = errors.New("missing session or user identifier")
	ErrInvalidReference   = errors.New("invalid id")
	ErrItemNotFound       = errors.New("item not found")
	ErrDuplicateVote      = errors.New("already voted")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}
