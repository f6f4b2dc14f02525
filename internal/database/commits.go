// internal/database/commits.go
package database

import (
	"context"
	"time"
)

const filterExistingCommitSHAs = `
SELECT sha FROM commits WHERE sha = ANY($1)
`

// FilterExistingCommitSHAs returns the subset of the given SHAs already
// present in storage. SHAs are globally unique, so no repository scope.
func (q *Queries) FilterExistingCommitSHAs(ctx context.Context, shas []string) ([]string, error) {
	rows, err := q.db.Query(ctx, filterExistingCommitSHAs, shas)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var existing []string
	for rows.Next() {
		var sha string
		if err := rows.Scan(&sha); err != nil {
			return nil, err
		}
		existing = append(existing, sha)
	}
	return existing, rows.Err()
}

const createCommit = `
INSERT INTO commits (repository_id, sha, message, author_date, files_changed, additions, deletions)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, repository_id, sha, message, author_date, files_changed, additions, deletions, created_at
`

type CreateCommitParams struct {
	RepositoryID int64
	SHA          string
	Message      string
	AuthorDate   time.Time
	FilesChanged int32
	Additions    int32
	Deletions    int32
}

func (q *Queries) CreateCommit(ctx context.Context, arg CreateCommitParams) (Commit, error) {
	row := q.db.QueryRow(ctx, createCommit,
		arg.RepositoryID, arg.SHA, arg.Message, arg.AuthorDate,
		arg.FilesChanged, arg.Additions, arg.Deletions)
	var c Commit
	err := row.Scan(&c.ID, &c.RepositoryID, &c.SHA, &c.Message, &c.AuthorDate,
		&c.FilesChanged, &c.Additions, &c.Deletions, &c.CreatedAt)
	return c, err
}

const listRecentCommits = `
SELECT c.sha, r.name, c.message, c.author_date, c.files_changed, c.additions, c.deletions
FROM commits c
JOIN repositories r ON r.id = c.repository_id
WHERE r.account_id = $1
  AND ($2::text IS NULL OR r.name = $2)
ORDER BY c.author_date DESC
LIMIT $3
`

type ListRecentCommitsParams struct {
	AccountID int64
	RepoName  *string
	Limit     int32
}

type ListRecentCommitsRow struct {
	SHA          string
	RepoName     string
	Message      string
	AuthorDate   time.Time
	FilesChanged int32
	Additions    int32
	Deletions    int32
}

func (q *Queries) ListRecentCommits(ctx context.Context, arg ListRecentCommitsParams) ([]ListRecentCommitsRow, error) {
	rows, err := q.db.Query(ctx, listRecentCommits, arg.AccountID, arg.RepoName, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var commits []ListRecentCommitsRow
	for rows.Next() {
		var c ListRecentCommitsRow
		if err := rows.Scan(&c.SHA, &c.RepoName, &c.Message, &c.AuthorDate,
			&c.FilesChanged, &c.Additions, &c.Deletions); err != nil {
			return nil, err
		}
		commits = append(commits, c)
	}
	return commits, rows.Err()
}

const listCommitsSince = `
SELECT c.sha, r.name, c.message, c.author_date, c.files_changed, c.additions, c.deletions
FROM commits c
JOIN repositories r ON r.id = c.repository_id
WHERE r.account_id = $1 AND c.author_date >= $2
ORDER BY c.author_date DESC
`

type ListCommitsSinceParams struct {
	AccountID int64
	Since     time.Time
}

type ListCommitsSinceRow struct {
	SHA          string
	RepoName     string
	Message      string
	AuthorDate   time.Time
	FilesChanged int32
	Additions    int32
	Deletions    int32
}

func (q *Queries) ListCommitsSince(ctx context.Context, arg ListCommitsSinceParams) ([]ListCommitsSinceRow, error) {
	rows, err := q.db.Query(ctx, listCommitsSince, arg.AccountID, arg.Since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var commits []ListCommitsSinceRow
	for rows.Next() {
		var c ListCommitsSinceRow
		if err := rows.Scan(&c.SHA, &c.RepoName, &c.Message, &c.AuthorDate,
			&c.FilesChanged, &c.Additions, &c.Deletions); err != nil {
			return nil, err
		}
		commits = append(commits, c)
	}
	return commits, rows.Err()
}

const countCommitsSince = `
SELECT COUNT(*)
FROM commits c
JOIN repositories r ON r.id = c.repository_id
WHERE r.account_id = $1 AND c.author_date >= $2
`

type CountCommitsSinceParams struct {
	AccountID int64
	Since     time.Time
}

func (q *Queries) CountCommitsSince(ctx context.Context, arg CountCommitsSinceParams) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countCommitsSince, arg.AccountID, arg.Since).Scan(&n)
	return n, err
}
