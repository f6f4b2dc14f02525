// internal/database/models.go
package database

import "time"

// Account is a row in the accounts table: the single GitHub user whose
// activity is mirrored. GithubTokenMasked is an operational marker only; the
// live credential is never persisted.
type Account struct {
	ID                int64
	GithubUsername    string
	GithubTokenMasked string
	CreatedAt         time.Time
	LastSyncedAt      *time.Time
}

// Repository is a row in the repositories table. Name is unique per account
// and is the reconciliation key.
type Repository struct {
	ID        int64
	AccountID int64
	Name      string
	URL       string
	Language  *string
	CreatedAt time.Time
}

// Commit is a row in the commits table. SHA is globally unique; a commit is
// never updated after insertion.
type Commit struct {
	ID           int64
	RepositoryID int64
	SHA          string
	Message      string
	AuthorDate   time.Time
	FilesChanged int32
	Additions    int32
	Deletions    int32
	CreatedAt    time.Time
}

// Summary is a row in the summaries table. (AccountID, Timeframe, StartDate,
// EndDate) is a cache key, not a uniqueness constraint; the newest row wins.
type Summary struct {
	ID          int64
	AccountID   int64
	Timeframe   string
	StartDate   time.Time
	EndDate     time.Time
	SummaryText string
	GeneratedAt time.Time
}
