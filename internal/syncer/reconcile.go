// internal/syncer/reconcile.go
package syncer

import (
	"devtrack/internal/database"
	"devtrack/internal/model"
)

// RepoUpdate stages a metadata refresh for a repository already in storage.
type RepoUpdate struct {
	ID       int64
	URL      string
	Language *string
}

// RepoChanges is the minimal set of writes needed to converge the stored
// repositories with a freshly fetched listing.
type RepoChanges struct {
	ToInsert []model.Repository
	ToUpdate []RepoUpdate
}

// ReconcileRepositories matches incoming repositories against the current
// snapshot by name. A match always stages a metadata update, even when the
// values are unchanged: the refresh is idempotent, not a diff. Unmatched
// incoming repositories are staged for insert, in listing order.
func ReconcileRepositories(existing []database.Repository, incoming []model.Repository) RepoChanges {
	byName := make(map[string]database.Repository, len(existing))
	for _, repo := range existing {
		byName[repo.Name] = repo
	}

	var changes RepoChanges
	for _, repo := range incoming {
		if current, ok := byName[repo.Name]; ok {
			changes.ToUpdate = append(changes.ToUpdate, RepoUpdate{
				ID:       current.ID,
				URL:      repo.URL,
				Language: repo.Language,
			})
		} else {
			changes.ToInsert = append(changes.ToInsert, repo)
		}
	}
	return changes
}

// ReconcileCommits returns the incoming commits not yet in storage, matched
// by SHA, preserving fetch order. Commits already present are skipped
// entirely; they are immutable once recorded and their detail stats are never
// refetched. Duplicates within the batch are also dropped.
func ReconcileCommits(existingSHAs []string, incoming []model.Commit) []model.Commit {
	seen := make(map[string]struct{}, len(existingSHAs))
	for _, sha := range existingSHAs {
		seen[sha] = struct{}{}
	}

	var toInsert []model.Commit
	for _, commit := range incoming {
		if _, ok := seen[commit.SHA]; ok {
			continue
		}
		seen[commit.SHA] = struct{}{}
		toInsert = append(toInsert, commit)
	}
	return toInsert
}
