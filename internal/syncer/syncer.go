// internal/syncer/syncer.go
package syncer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"devtrack/internal/database"
	custom_errors "devtrack/internal/errors"
	"devtrack/internal/model"
)

// Fetcher is the GitHub client surface the syncer depends on.
type Fetcher interface {
	ListRepositories(ctx context.Context) ([]model.Repository, error)
	ListCommits(ctx context.Context, owner, repo string, since time.Time, author string) ([]model.Commit, error)
	GetCommitDetail(ctx context.Context, owner, repo, sha string) (model.CommitDetail, error)
}

// Syncer orchestrates a sync pass: resolve the tracked account, reconcile
// repositories, reconcile commits incrementally, advance the watermark.
// A pass is sequential by design; concurrent passes for the same account are
// gated by the caller, not here.
type Syncer struct {
	dbpool   *pgxpool.Pool
	fetcher  Fetcher
	logger   *slog.Logger
	username string
	token    string
	now      func() time.Time
}

// NewSyncer creates a new Syncer instance. Username and token come from
// validated configuration; their absence is a configuration error surfaced
// here, before any network call.
func NewSyncer(dbpool *pgxpool.Pool, fetcher Fetcher, logger *slog.Logger, username, token string) (*Syncer, error) {
	if username == "" {
		return nil, &custom_errors.ConfigError{Field: "GITHUB_USERNAME", Reason: "required"}
	}
	if token == "" {
		return nil, &custom_errors.ConfigError{Field: "GITHUB_TOKEN", Reason: "required"}
	}

	return &Syncer{
		dbpool:   dbpool,
		fetcher:  fetcher,
		logger:   logger,
		username: username,
		token:    token,
		now:      time.Now,
	}, nil
}

// SyncAccount runs one full sync pass. Repository writes, commit writes, and
// the watermark advance share a single transaction: a FetchError rolls back
// everything, the watermark stays put, and the next pass re-attempts the same
// window. Insert-if-absent reconciliation makes the retry safe.
func (s *Syncer) SyncAccount(ctx context.Context) (*model.SyncResult, error) {
	account, err := s.resolveAccount(ctx, database.New(s.dbpool))
	if err != nil {
		return nil, err
	}

	tx, err := s.dbpool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) // No-op once committed.

	result, err := s.syncAccountData(ctx, database.New(tx), account)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

// resolveAccount looks up the tracked account by username, creating it on
// first sync. The stored credential is only ever the masked form; the mask is
// refreshed on every pass in case the live token changed. This step commits
// on its own so the account survives a failed pass.
func (s *Syncer) resolveAccount(ctx context.Context, q database.Querier) (database.Account, error) {
	masked := custom_errors.MaskToken(s.token)

	account, err := q.GetAccountByUsername(ctx, s.username)
	if errors.Is(err, pgx.ErrNoRows) {
		s.logger.Info("Account not found in DB, creating new entry", "username", s.username)
		return q.CreateAccount(ctx, database.CreateAccountParams{
			GithubUsername:    s.username,
			GithubTokenMasked: masked,
		})
	} else if err != nil {
		return database.Account{}, err
	}

	if err := q.UpdateAccountMaskedToken(ctx, database.UpdateAccountMaskedTokenParams{
		ID:                account.ID,
		GithubTokenMasked: masked,
	}); err != nil {
		return database.Account{}, err
	}
	account.GithubTokenMasked = masked
	return account, nil
}

// syncAccountData performs steps 2-4 of a pass against the given transaction.
func (s *Syncer) syncAccountData(ctx context.Context, q database.Querier, account database.Account) (*model.SyncResult, error) {
	logger := s.logger.With("username", account.GithubUsername)

	reposAdded, err := s.syncRepositories(ctx, q, account, logger)
	if err != nil {
		return nil, err
	}

	commitsAdded, err := s.syncCommits(ctx, q, account, logger)
	if err != nil {
		return nil, err
	}

	watermark := s.now().UTC()
	if err := q.UpdateAccountLastSynced(ctx, database.UpdateAccountLastSyncedParams{
		ID:           account.ID,
		LastSyncedAt: watermark,
	}); err != nil {
		return nil, err
	}

	logger.Info("Sync pass complete",
		"repositories_added", reposAdded, "commits_added", commitsAdded, "watermark", watermark)

	return &model.SyncResult{
		Username:           account.GithubUsername,
		RepositoriesSynced: reposAdded,
		CommitsSynced:      commitsAdded,
		LastSynced:         watermark,
	}, nil
}

// syncRepositories fetches the account's repository listing, reconciles it
// against storage, and applies the staged writes. Returns the insert count.
func (s *Syncer) syncRepositories(ctx context.Context, q database.Querier, account database.Account, logger *slog.Logger) (int, error) {
	fetched, err := s.fetcher.ListRepositories(ctx)
	if err != nil {
		return 0, err
	}

	existing, err := q.ListRepositoriesByAccount(ctx, account.ID)
	if err != nil {
		return 0, err
	}

	changes := ReconcileRepositories(existing, fetched)
	logger.Info("Reconciled repositories",
		"fetched", len(fetched), "to_insert", len(changes.ToInsert), "to_update", len(changes.ToUpdate))

	for _, update := range changes.ToUpdate {
		if err := q.UpdateRepositoryMetadata(ctx, database.UpdateRepositoryMetadataParams{
			ID:       update.ID,
			URL:      update.URL,
			Language: update.Language,
		}); err != nil {
			return 0, err
		}
	}
	for _, repo := range changes.ToInsert {
		if _, err := q.CreateRepository(ctx, database.CreateRepositoryParams{
			AccountID: account.ID,
			Name:      repo.Name,
			URL:       repo.URL,
			Language:  repo.Language,
		}); err != nil {
			return 0, err
		}
	}
	return len(changes.ToInsert), nil
}

// syncCommits walks every known repository in listing order and inserts the
// commits not yet stored. The fetch window starts at the account watermark
// when one exists; the first pass fetches full history. Only commits authored
// by the tracked user are requested, so co-committers on shared repositories
// are excluded server-side. Detail stats are fetched lazily, only for commits
// about to be inserted.
func (s *Syncer) syncCommits(ctx context.Context, q database.Querier, account database.Account, logger *slog.Logger) (int, error) {
	repos, err := q.ListRepositoriesByAccount(ctx, account.ID)
	if err != nil {
		return 0, err
	}

	var since time.Time
	if account.LastSyncedAt != nil {
		since = *account.LastSyncedAt
	}

	added := 0
	for _, repo := range repos {
		fetched, err := s.fetcher.ListCommits(ctx, account.GithubUsername, repo.Name, since, account.GithubUsername)
		if err != nil {
			return 0, err
		}
		if len(fetched) == 0 {
			continue
		}

		shas := make([]string, len(fetched))
		for i, commit := range fetched {
			shas[i] = commit.SHA
		}
		existing, err := q.FilterExistingCommitSHAs(ctx, shas)
		if err != nil {
			return 0, err
		}

		toInsert := ReconcileCommits(existing, fetched)
		logger.Debug("Reconciled commits",
			"repo", repo.Name, "fetched", len(fetched), "to_insert", len(toInsert))

		for _, commit := range toInsert {
			detail, err := s.fetcher.GetCommitDetail(ctx, account.GithubUsername, repo.Name, commit.SHA)
			if err != nil {
				return 0, err
			}
			if _, err := q.CreateCommit(ctx, database.CreateCommitParams{
				RepositoryID: repo.ID,
				SHA:          commit.SHA,
				Message:      commit.Message,
				AuthorDate:   commit.AuthorDate,
				FilesChanged: int32(detail.FilesChanged),
				Additions:    int32(detail.Additions),
				Deletions:    int32(detail.Deletions),
			}); err != nil {
				return 0, err
			}
			added++
		}
	}
	return added, nil
}
