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

const itemColumns = `id, title, category, description, image, link,
	       upvotes, downvotes, score, created_at, updated_at`

// orderClauses maps each sort mode to its ORDER BY clause. The id column
// breaks ties so equal keys always come back in the same order.
var orderClauses = map[models.SortMode]string{
	models.SortTrending: "score DESC, id ASC",
	models.SortNewest:   "created_at DESC, id ASC",
	models.SortMost:     "upvotes DESC, id ASC",
}

// ItemStore handles all item-related database operations.
type ItemStore struct {
	db Querier
}

// NewItemStore creates a new ItemStore on a pool or a transaction.
func NewItemStore(db Querier) *ItemStore {
	return &ItemStore{db: db}
}

// Create inserts a new item with zeroed counters and returns the stored row.
func (s *ItemStore) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	id := item.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO items (id, title, category, description, image, link)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+itemColumns,
		id, item.Title, string(item.Category), item.Description, nullURL(item.Image), nullURL(item.Link),
	)
	created, err := scanItem(row)
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	return created, nil
}

// FindByID retrieves an item by its UUID. Returns nil if not found.
func (s *ItemStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find item by id: %w", err)
	}
	return item, nil
}

// List returns items ordered by sort, optionally restricted to a category.
// A limit of zero or less returns every match.
func (s *ItemStore) List(ctx context.Context, category *models.Category, sort models.SortMode, limit int) ([]models.Item, error) {
	order, ok := orderClauses[sort]
	if !ok {
		order = orderClauses[models.SortTrending]
	}

	query := `SELECT ` + itemColumns + ` FROM items`
	var args []any
	if category != nil {
		args = append(args, string(*category))
		query += fmt.Sprintf(" WHERE category = $%d", len(args))
	}
	query += " ORDER BY " + order
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// IncrementCounters atomically adds up and down to the item's counters and
// bumps updated_at. Score is recomputed by the database. Returns nil if the
// item does not exist.
func (s *ItemStore) IncrementCounters(ctx context.Context, id uuid.UUID, up, down int) (*models.Item, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE items SET
			upvotes = upvotes + $2,
			downvotes = downvotes + $3,
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+itemColumns,
		id, up, down,
	)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("increment item counters: %w", err)
	}
	return item, nil
}

// Count returns the total number of items.
func (s *ItemStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return count, nil
}

func scanItem(row scanner) (*models.Item, error) {
	var (
		item        models.Item
		description sql.NullString
		image, link sql.NullString
	)
	if err := row.Scan(
		&item.ID, &item.Title, &item.Category, &description, &image, &link,
		&item.Upvotes, &item.Downvotes, &item.Score, &item.CreatedAt, &item.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if description.Valid {
		item.Description = &description.String
	}
	item.Image = urlPtr(image)
	item.Link = urlPtr(link)
	return &item, nil
}

func urlPtr(ns sql.NullString) *models.WebURL {
	if !ns.Valid {
		return nil
	}
	u := models.WebURL(ns.String)
	return &u
}

func nullURL(u *models.WebURL) sql.NullString {
	if u == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*u), Valid: true}
}
