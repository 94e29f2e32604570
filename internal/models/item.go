// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Category groups items on the board. Only the values below are accepted.
type Category string

const (
	CategoryWebsites Category = "websites"
	CategoryTools    Category = "tools"
	CategoryApps     Category = "apps"
	CategoryIdeas    Category = "ideas"
	CategoryMisc     Category = "misc"
)

// Categories lists every accepted category in display order.
var Categories = []Category{
	CategoryWebsites,
	CategoryTools,
	CategoryApps,
	CategoryIdeas,
	CategoryMisc,
}

// ParseCategory converts raw input into a Category, rejecting unknown values.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", &ValidationError{Field: "category", Reason: "must be one of websites, tools, apps, ideas, misc"}
}

// SortMode selects the ordering of an item listing.
type SortMode string

const (
	SortTrending SortMode = "trending"
	SortNewest   SortMode = "newest"
	SortMost     SortMode = "most"
)

// ParseSortMode maps a query value to a SortMode. Anything unrecognised,
// including the empty string, is treated as trending.
func ParseSortMode(s string) SortMode {
	switch SortMode(s) {
	case SortNewest:
		return SortNewest
	case SortMost:
		return SortMost
	default:
		return SortTrending
	}
}

// Validation limits for item fields.
const (
	maxTitleLen       = 300
	maxDescriptionLen = 5_000
	maxURLLen         = 2_048
)

// WebURL is an absolute http(s) URL that has passed validation.
type WebURL string

// ParseWebURL validates raw as an absolute http or https URL with a host.
func ParseWebURL(field, raw string) (WebURL, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) > maxURLLen {
		return "", &ValidationError{Field: field, Reason: "is too long"}
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return "", &ValidationError{Field: field, Reason: "must be a valid http or https URL"}
	}
	return WebURL(u.String()), nil
}

// Item is a votable entry. Score is derived by the database from the two
// counters and is never written directly.
type Item struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Category    Category  `json:"category"`
	Description *string   `json:"description"`
	Image       *WebURL   `json:"image"`
	Link        *WebURL   `json:"link"`
	Upvotes     int       `json:"upvotes"`
	Downvotes   int       `json:"downvotes"`
	Score       int       `json:"score"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewItemInput is the unvalidated payload of an item creation request.
type NewItemInput struct {
	Title       string  `json:"title"`
	Category    string  `json:"category"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	Link        *string `json:"link"`
}

// NewItem validates in and returns an item ready to be persisted with zeroed
// counters. Empty optional fields are stored as null.
func NewItem(in NewItemInput) (*Item, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, &ValidationError{Field: "title", Reason: "is required"}
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return nil, &ValidationError{Field: "title", Reason: "is too long (max 300 characters)"}
	}

	category, err := ParseCategory(in.Category)
	if err != nil {
		return nil, err
	}

	item := &Item{Title: title, Category: category}

	if in.Description != nil && *in.Description != "" {
		if utf8.RuneCountInString(*in.Description) > maxDescriptionLen {
			return nil, &ValidationError{Field: "description", Reason: "is too long (max 5,000 characters)"}
		}
		d := *in.Description
		item.Description = &d
	}
	if item.Image, err = optionalURL("image", in.Image); err != nil {
		return nil, err
	}
	if item.Link, err = optionalURL("link", in.Link); err != nil {
		return nil, err
	}
	return item, nil
}

func optionalURL(field string, raw *string) (*WebURL, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	u, err := ParseWebURL(field, *raw)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Stats summarises the board: the highest scoring items and totals.
type Stats struct {
	Top    []Item      `json:"top"`
	Counts StatsCounts `json:"counts"`
}

// StatsCounts holds collection totals read at query time.
type StatsCounts struct {
	TotalItems int `json:"total_items"`
	TotalVotes int `json:"total_votes"`
}
