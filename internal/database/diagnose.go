// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// maxReportedTables caps the table list in a diagnostic report.
const maxReportedTables = 10

// Report describes the state of the storage backend as seen by the server.
type Report struct {
	Backend          string   `json:"backend"`
	Database         string   `json:"database"`
	DatabaseURL      string   `json:"database_url"`
	DatabaseName     string   `json:"database_name"`
	ConnectionStatus string   `json:"connection_status"`
	Collections      []string `json:"collections"`
}

// Diagnose probes db and lists up to ten tables in the public schema.
// Failures are folded into the report; it never returns an error so the
// diagnostic endpoint keeps answering while the database is down.
func Diagnose(ctx context.Context, db *sql.DB, urlSet, nameSet bool) Report {
	r := Report{
		Backend:          "running",
		Database:         "not available",
		DatabaseURL:      setLabel(urlSet),
		DatabaseName:     setLabel(nameSet),
		ConnectionStatus: "not connected",
		Collections:      []string{},
	}
	if db == nil {
		r.Database = "available but not initialized"
		return r
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		r.Database = "error: " + truncate(err.Error(), 50)
		return r
	}
	r.Database = "available"

	tables, err := listTables(ctx, db)
	if err != nil {
		r.Database = "connected but error: " + truncate(err.Error(), 50)
		return r
	}
	r.Collections = tables
	r.Database = "connected and working"
	r.ConnectionStatus = "connected"
	return r
}

func listTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = 'public'
		ORDER BY table_name
		LIMIT $1
	`, maxReportedTables)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func setLabel(ok bool) string {
	if ok {
		return "set"
	}
	return "not set"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
