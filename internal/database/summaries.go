// internal/database/summaries.go
package database

import (
	"context"
	"time"
)

const createSummary = `
INSERT INTO summaries (account_id, timeframe, start_date, end_date, summary_text)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, account_id, timeframe, start_date, end_date, summary_text, generated_at
`

type CreateSummaryParams struct {
	AccountID   int64
	Timeframe   string
	StartDate   time.Time
	EndDate     time.Time
	SummaryText string
}

func (q *Queries) CreateSummary(ctx context.Context, arg CreateSummaryParams) (Summary, error) {
	row := q.db.QueryRow(ctx, createSummary,
		arg.AccountID, arg.Timeframe, arg.StartDate, arg.EndDate, arg.SummaryText)
	var s Summary
	err := row.Scan(&s.ID, &s.AccountID, &s.Timeframe, &s.StartDate, &s.EndDate,
		&s.SummaryText, &s.GeneratedAt)
	return s, err
}

const getLatestSummary = `
SELECT id, account_id, timeframe, start_date, end_date, summary_text, generated_at
FROM summaries
WHERE account_id = $1 AND timeframe = $2 AND start_date = $3 AND end_date = $4
ORDER BY generated_at DESC
LIMIT 1
`

type GetLatestSummaryParams struct {
	AccountID int64
	Timeframe string
	StartDate time.Time
	EndDate   time.Time
}

// GetLatestSummary returns the most recently generated summary for the exact
// cache key. Older rows under the same key are kept as history.
func (q *Queries) GetLatestSummary(ctx context.Context, arg GetLatestSummaryParams) (Summary, error) {
	row := q.db.QueryRow(ctx, getLatestSummary,
		arg.AccountID, arg.Timeframe, arg.StartDate, arg.EndDate)
	var s Summary
	err := row.Scan(&s.ID, &s.AccountID, &s.Timeframe, &s.StartDate, &s.EndDate,
		&s.SummaryText, &s.GeneratedAt)
	return s, err
}

const getAccountStats = `
SELECT
	(SELECT COUNT(*) FROM repositories r WHERE r.account_id = $1),
	COUNT(c.id),
	COALESCE(SUM(c.additions), 0),
	COALESCE(SUM(c.deletions), 0),
	COALESCE(SUM(c.files_changed), 0)
FROM commits c
JOIN repositories r ON r.id = c.repository_id
WHERE r.account_id = $1
`

type GetAccountStatsRow struct {
	Repositories      int64
	TotalCommits      int64
	TotalLinesAdded   int64
	TotalLinesDeleted int64
	TotalFilesChanged int64
}

func (q *Queries) GetAccountStats(ctx context.Context, accountID int64) (GetAccountStatsRow, error) {
	row := q.db.QueryRow(ctx, getAccountStats, accountID)
	var s GetAccountStatsRow
	err := row.Scan(&s.Repositories, &s.TotalCommits, &s.TotalLinesAdded,
		&s.TotalLinesDeleted, &s.TotalFilesChanged)
	return s, err
}

const listLanguageCounts = `
SELECT language, COUNT(*)
FROM repositories
WHERE account_id = $1 AND language IS NOT NULL
GROUP BY language
ORDER BY COUNT(*) DESC, language
`

type ListLanguageCountsRow struct {
	Language string
	Count    int64
}

func (q *Queries) ListLanguageCounts(ctx context.Context, accountID int64) ([]ListLanguageCountsRow, error) {
	rows, err := q.db.Query(ctx, listLanguageCounts, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []ListLanguageCountsRow
	for rows.Next() {
		var c ListLanguageCountsRow
		if err := rows.Scan(&c.Language, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
