// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"votebox/internal/models"
)

// VoteStore handles vote records. Votes are insert-only.
type VoteStore struct {
	db Querier
}

// NewVoteStore creates a new VoteStore on a pool or a transaction.
func NewVoteStore(db Querier) *VoteStore {
	return &VoteStore{db: db}
}

// Create inserts an immutable vote record. A second vote for the same item
// by the same session or user fails with a unique violation; check it with
// IsUniqueViolation.
func (s *VoteStore) Create(ctx context.Context, v *models.Vote) (*models.Vote, error) {
	id := v.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	created := &models.Vote{}
	var sessionID, userID sql.NullString
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO votes (id, item_id, direction, session_id, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, item_id, direction, session_id, user_id, created_at
	`, id, v.ItemID, string(v.Direction), v.SessionID, v.UserID,
	).Scan(&created.ID, &created.ItemID, &created.Direction, &sessionID, &userID, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create vote: %w", err)
	}
	created.SessionID = strPtr(sessionID)
	created.UserID = strPtr(userID)
	return created, nil
}

// FindMatching returns a vote on itemID cast by identity, or nil if there is
// none. Only the identity's present components take part in the match.
func (s *VoteStore) FindMatching(ctx context.Context, itemID uuid.UUID, identity models.VoterIdentity) (*models.Vote, error) {
	// A nil parameter compares as NULL, and NULL = x is never true, so an
	// absent component cannot match a vote that also lacks it.
	v := &models.Vote{}
	var sessionID, userID sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, item_id, direction, session_id, user_id, created_at
		FROM votes
		WHERE item_id = $1 AND (session_id = $2 OR user_id = $3)
		LIMIT 1
	`, itemID, identity.SessionID, identity.UserID,
	).Scan(&v.ID, &v.ItemID, &v.Direction, &sessionID, &userID, &v.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find matching vote: %w", err)
	}
	v.SessionID = strPtr(sessionID)
	v.UserID = strPtr(userID)
	return v, nil
}

// Count returns the total number of votes.
func (s *VoteStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM votes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count votes: %w", err)
	}
	return count, nil
}

func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
