// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Direction is the sign of a vote.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// ParseDirection accepts "up" or "down".
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionUp, DirectionDown:
		return Direction(s), nil
	}
	return "", &ValidationError{Field: "direction", Reason: "must be up or down"}
}

// Deltas returns the upvote and downvote increments this direction applies.
func (d Direction) Deltas() (up, down int) {
	if d == DirectionUp {
		return 1, 0
	}
	return 0, 1
}

// VoterIdentity identifies who cast a vote. At least one component is set.
// A stored vote matches the identity when its session id equals SessionID
// or its user id equals UserID; unset components never match anything.
type VoterIdentity struct {
	SessionID *string
	UserID    *string
}

// NewVoterIdentity normalises caller supplied identifiers. Blank values are
// treated as absent; if both are absent ErrInvalidIdentity is returned.
func NewVoterIdentity(sessionID, userID string) (VoterIdentity, error) {
	var id VoterIdentity
	if s := strings.TrimSpace(sessionID); s != "" {
		id.SessionID = &s
	}
	if u := strings.TrimSpace(userID); u != "" {
		id.UserID = &u
	}
	if id.SessionID == nil && id.UserID == nil {
		return VoterIdentity{}, ErrInvalidIdentity
	}
	return id, nil
}

// Vote is an immutable record of one identity's choice on one item.
// ItemID is a plain reference; the item is checked when the vote is cast.
type Vote struct {
	ID        uuid.UUID `json:"id"`
	ItemID    uuid.UUID `json:"item_id"`
	Direction Direction `json:"direction"`
	SessionID *string   `json:"session_id"`
	UserID    *string   `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// VoteRequest is the body of a vote submission.
type VoteRequest struct {
	Direction string `json:"direction"`
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
}
