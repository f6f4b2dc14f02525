// internal/model/models.go
package model

import "time"

// Repository is the metadata of a GitHub repository as fetched from the API,
// before reconciliation against the local snapshot.
type Repository struct {
	Name     string
	URL      string
	Language *string
}

// Commit is a single commit listing entry as fetched from the API. Detail
// stats are zero until enriched via GetCommitDetail.
type Commit struct {
	SHA        string
	Message    string
	AuthorDate time.Time
}

// CommitDetail holds the per-commit stats fetched lazily, only for commits
// about to be inserted.
type CommitDetail struct {
	SHA          string
	FilesChanged int
	Additions    int
	Deletions    int
}

// SyncResult reports what a completed sync pass added.
type SyncResult struct {
	Username           string    `json:"username"`
	RepositoriesSynced int       `json:"repositories_synced"`
	CommitsSynced      int       `json:"commits_synced"`
	LastSynced         time.Time `json:"last_synced"`
}
