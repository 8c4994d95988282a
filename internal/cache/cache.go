// Package cache keeps a local SQLite copy of the last successfully
// fetched issues and projects. When a listing fails, views fall back to
// the cached records and flag them as stale instead of going blank.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/AyushShukla12112005/trackctl/internal/models"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS issues (
	id TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	status TEXT NOT NULL,
	payload TEXT NOT NULL,
	fetched_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_issues_project ON issues(project_id);

CREATE TABLE IF NOT EXISTS projects (
	id TEXT PRIMARY KEY,
	payload TEXT NOT NULL,
	fetched_at DATETIME NOT NULL
);
`

// Cache is a read-through fallback store using modernc.org/sqlite
// (pure Go, no CGO). It is never authoritative; the backend is.
type Cache struct {
	db *sql.DB
}

// Open opens (or creates) the cache database at the given path.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	// SQLite only supports one concurrent writer. A single connection
	// serializes all access through Go's pool and avoids "database is
	// locked" errors when watch mode refreshes concurrently.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// PutIssues upserts freshly fetched issues, keyed by id.
func (c *Cache) PutIssues(ctx context.Context, issues []*models.Issue) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	for _, issue := range issues {
		payload, err := json.Marshal(issue)
		if err != nil {
			return fmt.Errorf("encode issue %s: %w", issue.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO issues (id, project_id, status, payload, fetched_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				project_id=excluded.project_id,
				status=excluded.status,
				payload=excluded.payload,
				fetched_at=excluded.fetched_at`,
			issue.ID, issue.Project.ID, string(issue.Status), string(payload), now,
		)
		if err != nil {
			return fmt.Errorf("cache issue %s: %w", issue.ID, err)
		}
	}
	return tx.Commit()
}

// ReplaceProjectIssues swaps one project's cached issues for a freshly
// fetched set, dropping records the backend no longer returns.
func (c *Cache) ReplaceProjectIssues(ctx context.Context, projectID string, issues []*models.Issue) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM issues WHERE project_id = ?", projectID); err != nil {
		return fmt.Errorf("clear cached issues for %s: %w", projectID, err)
	}

	now := time.Now().UTC()
	for _, issue := range issues {
		payload, err := json.Marshal(issue)
		if err != nil {
			return fmt.Errorf("encode issue %s: %w", issue.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO issues (id, project_id, status, payload, fetched_at) VALUES (?, ?, ?, ?, ?)`,
			issue.ID, issue.Project.ID, string(issue.Status), string(payload), now,
		)
		if err != nil {
			return fmt.Errorf("cache issue %s: %w", issue.ID, err)
		}
	}
	return tx.Commit()
}

// IssuesForProject returns one project's cached issues and when they
// were fetched. fetchedAt is the oldest record's timestamp, the honest
// bound on staleness. An empty cache returns no error and no issues.
func (c *Cache) IssuesForProject(ctx context.Context, projectID string) ([]*models.Issue, time.Time, error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT payload, fetched_at FROM issues WHERE project_id = ? ORDER BY id", projectID)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("read cached issues: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var issues []*models.Issue
	var fetchedAt time.Time
	for rows.Next() {
		var payload string
		var at time.Time
		if err := rows.Scan(&payload, &at); err != nil {
			return nil, time.Time{}, fmt.Errorf("scan cached issue: %w", err)
		}
		issue := &models.Issue{}
		if err := json.Unmarshal([]byte(payload), issue); err != nil {
			return nil, time.Time{}, fmt.Errorf("decode cached issue: %w", err)
		}
		if fetchedAt.IsZero() || at.Before(fetchedAt) {
			fetchedAt = at
		}
		issues = append(issues, issue)
	}
	return issues, fetchedAt, rows.Err()
}

// PutProjects replaces the cached project list.
func (c *Cache) PutProjects(ctx context.Context, projects []*models.Project) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM projects"); err != nil {
		return fmt.Errorf("clear cached projects: %w", err)
	}

	now := time.Now().UTC()
	for _, p := range projects {
		payload, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encode project %s: %w", p.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO projects (id, payload, fetched_at) VALUES (?, ?, ?)",
			p.ID, string(payload), now,
		)
		if err != nil {
			return fmt.Errorf("cache project %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

// Projects returns the cached project list and its fetch time.
func (c *Cache) Projects(ctx context.Context) ([]*models.Project, time.Time, error) {
	rows, err := c.db.QueryContext(ctx, "SELECT payload, fetched_at FROM projects ORDER BY id")
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("read cached projects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var projects []*models.Project
	var fetchedAt time.Time
	for rows.Next() {
		var payload string
		var at time.Time
		if err := rows.Scan(&payload, &at); err != nil {
			return nil, time.Time{}, fmt.Errorf("scan cached project: %w", err)
		}
		p := &models.Project{}
		if err := json.Unmarshal([]byte(payload), p); err != nil {
			return nil, time.Time{}, fmt.Errorf("decode cached project: %w", err)
		}
		if fetchedAt.IsZero() || at.Before(fetchedAt) {
			fetchedAt = at
		}
		projects = append(projects, p)
	}
	return projects, fetchedAt, rows.Err()
}
