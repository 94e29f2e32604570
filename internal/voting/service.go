// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package voting implements the item board: item creation, ranked listings,
// aggregate stats and the vote acceptance protocol that guarantees at most
// one vote per item and voter identity.
package voting

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"votebox/internal/models"
	"votebox/internal/store"
)

// topLimit is the number of items reported by Stats.
const topLimit = 5

// sideEffectTimeout bounds cache invalidation and event publishing after a
// write has committed.
const sideEffectTimeout = 2 * time.Second

// StatsCache holds a recent stats snapshot. Implementations log their own
// failures; a failed Get is a miss.
//
// Get reports the generation current at read time. Set must be given that
// generation so a snapshot computed before an Invalidate is never served
// after it.
type StatsCache interface {
	Get(ctx context.Context) (*models.Stats, int64, bool)
	Set(ctx context.Context, gen int64, stats *models.Stats)
	Invalidate(ctx context.Context)
}

// EventPublisher announces accepted votes to downstream consumers.
type EventPublisher interface {
	PublishVote(ctx context.Context, vote *models.Vote, item *models.Item) error
}

// Service coordinates the item and vote stores. The stats cache and event
// publisher are optional; pass nil to disable either.
type Service struct {
	db     *sql.DB
	items  *store.ItemStore
	votes  *store.VoteStore
	stats  StatsCache
	events EventPublisher
}

// NewService creates a voting service on the given connection pool.
func NewService(db *sql.DB, stats StatsCache, events EventPublisher) *Service {
	return &Service{
		db:     db,
		items:  store.NewItemStore(db),
		votes:  store.NewVoteStore(db),
		stats:  stats,
		events: events,
	}
}

// CreateItem validates in, persists a new item with zeroed counters and
// returns it.
func (s *Service) CreateItem(ctx context.Context, in models.NewItemInput) (*models.Item, error) {
	item, err := models.NewItem(in)
	if err != nil {
		return nil, err
	}

	created, err := s.items.Create(ctx, item)
	if err != nil {
		return nil, storageErr(err)
	}

	slog.Info("item created", "item_id", created.ID, "category", created.Category)
	s.invalidateStats(ctx)
	return created, nil
}

// ListItems returns items ordered by the requested sort mode. An empty
// category lists every item; an unknown one is a validation error. Unknown
// sort values fall back to trending.
func (s *Service) ListItems(ctx context.Context, category, sort string) ([]models.Item, error) {
	var filter *models.Category
	if category != "" {
		c, err := models.ParseCategory(category)
		if err != nil {
			return nil, err
		}
		filter = &c
	}

	items, err := s.items.List(ctx, filter, models.ParseSortMode(sort), 0)
	if err != nil {
		return nil, storageErr(err)
	}
	return items, nil
}

// GetItem returns the item with the given id.
func (s *Service) GetItem(ctx context.Context, rawID string) (*models.Item, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}

	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, storageErr(err)
	}
	if item == nil {
		return nil, models.ErrItemNotFound
	}
	return item, nil
}

// CastVote records one vote and returns the item with its updated counters.
//
// The duplicate check, the vote insert and the counter increment share one
// transaction. Two requests racing past the duplicate check are serialized
// by the unique indexes on votes, and the loser fails with
// ErrDuplicateVote. A vote for a missing item is rolled back.
func (s *Service) CastVote(ctx context.Context, rawID string, req models.VoteRequest) (*models.Item, error) {
	itemID, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	direction, err := models.ParseDirection(req.Direction)
	if err != nil {
		return nil, err
	}
	identity, err := models.NewVoterIdentity(req.SessionID, req.UserID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageErr(err)
	}
	defer tx.Rollback()

	votes := store.NewVoteStore(tx)
	items := store.NewItemStore(tx)

	existing, err := votes.FindMatching(ctx, itemID, identity)
	if err != nil {
		return nil, storageErr(err)
	}
	if existing != nil {
		return nil, models.ErrDuplicateVote
	}

	vote, err := votes.Create(ctx, &models.Vote{
		ItemID:    itemID,
		Direction: direction,
		SessionID: identity.SessionID,
		UserID:    identity.UserID,
	})
	if store.IsUniqueViolation(err) {
		return nil, models.ErrDuplicateVote
	}
	if err != nil {
		return nil, storageErr(err)
	}

	up, down := direction.Deltas()
	item, err := items.IncrementCounters(ctx, itemID, up, down)
	if err != nil {
		return nil, storageErr(err)
	}
	if item == nil {
		return nil, models.ErrItemNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, storageErr(err)
	}

	slog.Info("vote accepted",
		"item_id", item.ID,
		"vote_id", vote.ID,
		"direction", direction,
		"score", item.Score,
	)
	s.invalidateStats(ctx)
	s.publishVote(ctx, vote, item)
	return item, nil
}

// Stats returns the top items by score and the collection totals.
func (s *Service) Stats(ctx context.Context) (*models.Stats, error) {
	var gen int64
	if s.stats != nil {
		cached, g, ok := s.stats.Get(ctx)
		if ok {
			return cached, nil
		}
		gen = g
	}

	top, err := s.items.List(ctx, nil, models.SortTrending, topLimit)
	if err != nil {
		return nil, storageErr(err)
	}
	totalItems, err := s.items.Count(ctx)
	if err != nil {
		return nil, storageErr(err)
	}
	totalVotes, err := s.votes.Count(ctx)
	if err != nil {
		return nil, storageErr(err)
	}

	stats := &models.Stats{
		Top:    top,
		Counts: models.StatsCounts{TotalItems: totalItems, TotalVotes: totalVotes},
	}
	if s.stats != nil {
		s.stats.Set(ctx, gen, stats)
	}
	return stats, nil
}

func (s *Service) invalidateStats(ctx context.Context) {
	if s.stats == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()
	s.stats.Invalidate(ctx)
}

// publishVote never fails the request: the vote is already committed.
// The publisher only enqueues, so this does not wait on the broker.
func (s *Service) publishVote(ctx context.Context, vote *models.Vote, item *models.Item) {
	if s.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()
	if err := s.events.PublishVote(ctx, vote, item); err != nil {
		slog.Warn("vote event publish failed", "item_id", item.ID, "vote_id", vote.ID, "error", err)
	}
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, models.ErrInvalidReference
	}
	return id, nil
}

func storageErr(err error) error {
	return fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err)
}
