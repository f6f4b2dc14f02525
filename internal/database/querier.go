// internal/database/querier.go
package database

import "context"

// Querier is the set of named database operations the rest of the application
// depends on. Tests substitute a mock implementation.
type Querier interface {
	GetAccountByUsername(ctx context.Context, githubUsername string) (Account, error)
	CreateAccount(ctx context.Context, arg CreateAccountParams) (Account, error)
	UpdateAccountMaskedToken(ctx context.Context, arg UpdateAccountMaskedTokenParams) error
	UpdateAccountLastSynced(ctx context.Context, arg UpdateAccountLastSyncedParams) error
	DeleteAccountCascade(ctx context.Context, id int64) error

	ListRepositoriesByAccount(ctx context.Context, accountID int64) ([]Repository, error)
	CreateRepository(ctx context.Context, arg CreateRepositoryParams) (Repository, error)
	UpdateRepositoryMetadata(ctx context.Context, arg UpdateRepositoryMetadataParams) error
	CountRepositoriesByAccount(ctx context.Context, accountID int64) (int64, error)

	FilterExistingCommitSHAs(ctx context.Context, shas []string) ([]string, error)
	CreateCommit(ctx context.Context, arg CreateCommitParams) (Commit, error)
	ListRecentCommits(ctx context.Context, arg ListRecentCommitsParams) ([]ListRecentCommitsRow, error)
	ListCommitsSince(ctx context.Context, arg ListCommitsSinceParams) ([]ListCommitsSinceRow, error)
	CountCommitsSince(ctx context.Context, arg CountCommitsSinceParams) (int64, error)

	CreateSummary(ctx context.Context, arg CreateSummaryParams) (Summary, error)
	GetLatestSummary(ctx context.Context, arg GetLatestSummaryParams) (Summary, error)
	GetAccountStats(ctx context.Context, accountID int64) (GetAccountStatsRow, error)
	ListLanguageCounts(ctx context.Context, accountID int64) ([]ListLanguageCountsRow, error)
}

var _ Querier = (*Queries)(nil)
