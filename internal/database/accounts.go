// internal/database/accounts.go
package database

import (
	"context"
	"time"
)

const getAccountByUsername = `
SELECT id, github_username, github_token_masked, created_at, last_synced_at
FROM accounts
WHERE github_username = $1
`

func (q *Queries) GetAccountByUsername(ctx context.Context, githubUsername string) (Account, error) {
	row := q.db.QueryRow(ctx, getAccountByUsername, githubUsername)
	var a Account
	err := row.Scan(&a.ID, &a.GithubUsername, &a.GithubTokenMasked, &a.CreatedAt, &a.LastSyncedAt)
	return a, err
}

const createAccount = `
INSERT INTO accounts (github_username, github_token_masked)
VALUES ($1, $2)
RETURNING id, github_username, github_token_masked, created_at, last_synced_at
`

type CreateAccountParams struct {
	GithubUsername    string
	GithubTokenMasked string
}

func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) (Account, error) {
	row := q.db.QueryRow(ctx, createAccount, arg.GithubUsername, arg.GithubTokenMasked)
	var a Account
	err := row.Scan(&a.ID, &a.GithubUsername, &a.GithubTokenMasked, &a.CreatedAt, &a.LastSyncedAt)
	return a, err
}

const updateAccountMaskedToken = `
UPDATE accounts SET github_token_masked = $2 WHERE id = $1
`

type UpdateAccountMaskedTokenParams struct {
	ID                int64
	GithubTokenMasked string
}

func (q *Queries) UpdateAccountMaskedToken(ctx context.Context, arg UpdateAccountMaskedTokenParams) error {
	_, err := q.db.Exec(ctx, updateAccountMaskedToken, arg.ID, arg.GithubTokenMasked)
	return err
}

const updateAccountLastSynced = `
UPDATE accounts SET last_synced_at = $2 WHERE id = $1
`

type UpdateAccountLastSyncedParams struct {
	ID           int64
	LastSyncedAt time.Time
}

func (q *Queries) UpdateAccountLastSynced(ctx context.Context, arg UpdateAccountLastSyncedParams) error {
	_, err := q.db.Exec(ctx, updateAccountLastSynced, arg.ID, arg.LastSyncedAt)
	return err
}

const deleteAccountCascade = `
DELETE FROM accounts WHERE id = $1
`

// DeleteAccountCascade removes an account; repositories, commits, and
// summaries follow via ON DELETE CASCADE foreign keys.
func (q *Queries) DeleteAccountCascade(ctx context.Context, id int64) error {
	_, err := q.db.Exec(ctx, deleteAccountCascade, id)
	return err
}
