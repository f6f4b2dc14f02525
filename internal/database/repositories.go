// internal/database/repositories.go
package database

import "context"

const listRepositoriesByAccount = `
SELECT id, account_id, name, url, language, created_at
FROM repositories
WHERE account_id = $1
ORDER BY name
`

func (q *Queries) ListRepositoriesByAccount(ctx context.Context, accountID int64) ([]Repository, error) {
	rows, err := q.db.Query(ctx, listRepositoriesByAccount, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var repos []Repository
	for rows.Next() {
		var r Repository
		if err := rows.Scan(&r.ID, &r.AccountID, &r.Name, &r.URL, &r.Language, &r.CreatedAt); err != nil {
			return nil, err
		}
		repos = append(repos, r)
	}
	return repos, rows.Err()
}

const createRepository = `
INSERT INTO repositories (account_id, name, url, language)
VALUES ($1, $2, $3, $4)
RETURNING id, account_id, name, url, language, created_at
`

type CreateRepositoryParams struct {
	AccountID int64
	Name      string
	URL       string
	Language  *string
}

func (q *Queries) CreateRepository(ctx context.Context, arg CreateRepositoryParams) (Repository, error) {
	row := q.db.QueryRow(ctx, createRepository, arg.AccountID, arg.Name, arg.URL, arg.Language)
	var r Repository
	err := row.Scan(&r.ID, &r.AccountID, &r.Name, &r.URL, &r.Language, &r.CreatedAt)
	return r, err
}

const updateRepositoryMetadata = `
UPDATE repositories SET url = $2, language = $3 WHERE id = $1
`

type UpdateRepositoryMetadataParams struct {
	ID       int64
	URL      string
	Language *string
}

func (q *Queries) UpdateRepositoryMetadata(ctx context.Context, arg UpdateRepositoryMetadataParams) error {
	_, err := q.db.Exec(ctx, updateRepositoryMetadata, arg.ID, arg.URL, arg.Language)
	return err
}

const countRepositoriesByAccount = `
SELECT COUNT(*) FROM repositories WHERE account_id = $1
`

func (q *Queries) CountRepositoriesByAccount(ctx context.Context, accountID int64) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countRepositoriesByAccount, accountID).Scan(&n)
	return n, err
}
