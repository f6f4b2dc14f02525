// internal/summary/service.go
package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"devtrack/internal/database"
)

// Timeframe classifies a summary window. Two granularities exist: a 7-day
// week and a 30-day month.
type Timeframe string

const (
	TimeframeWeek  Timeframe = "week"
	TimeframeMonth Timeframe = "month"
)

// ParseTimeframe validates a user-supplied timeframe string.
func ParseTimeframe(s string) (Timeframe, error) {
	switch Timeframe(s) {
	case TimeframeWeek, TimeframeMonth:
		return Timeframe(s), nil
	default:
		return "", fmt.Errorf("timeframe must be %q or %q", TimeframeWeek, TimeframeMonth)
	}
}

// Days returns the window length.
func (t Timeframe) Days() int {
	if t == TimeframeMonth {
		return 30
	}
	return 7
}

// CommitActivity is one commit as presented to the summarizer.
type CommitActivity struct {
	Repo         string
	Message      string
	AuthorDate   time.Time
	FilesChanged int
	Additions    int
	Deletions    int
}

// Summarizer is the external natural-language collaborator. It may fail with
// a SummarizationError; that never affects sync state.
type Summarizer interface {
	Summarize(ctx context.Context, commits []CommitActivity, timeframe Timeframe) (string, error)
}

// Report is a summary of commit activity over a window, cached or fresh.
type Report struct {
	Timeframe   string    `json:"timeframe"`
	CommitCount int64     `json:"commit_count"`
	Summary     string    `json:"summary"`
	GeneratedAt time.Time `json:"generated_at"`
	Cached      bool      `json:"cached"`
}

// Store is the slice of the database layer the report service needs.
type Store interface {
	CountCommitsSince(ctx context.Context, arg database.CountCommitsSinceParams) (int64, error)
	GetLatestSummary(ctx context.Context, arg database.GetLatestSummaryParams) (database.Summary, error)
	ListCommitsSince(ctx context.Context, arg database.ListCommitsSinceParams) ([]database.ListCommitsSinceRow, error)
	CreateSummary(ctx context.Context, arg database.CreateSummaryParams) (database.Summary, error)
}

// Service produces activity reports, consulting the summary cache before
// calling the summarizer.
type Service struct {
	q          Store
	summarizer Summarizer
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates a report service backed by the given store and summarizer.
func NewService(q Store, summarizer Summarizer, logger *slog.Logger) *Service {
	return &Service{
		q:          q,
		summarizer: summarizer,
		logger:     logger,
		now:        time.Now,
	}
}

// Report returns the activity summary for the account over the given
// timeframe. The cache key is (account, timeframe, start day, end day); the
// newest matching row wins. The commit count is always recomputed fresh, even
// on a cache hit, since new commits may have landed in the window after the
// summary text was generated.
func (s *Service) Report(ctx context.Context, account database.Account, timeframe Timeframe) (*Report, error) {
	now := s.now().UTC()
	windowStart := now.AddDate(0, 0, -timeframe.Days())
	startDay := truncateToDay(windowStart)
	endDay := truncateToDay(now)

	count, err := s.q.CountCommitsSince(ctx, database.CountCommitsSinceParams{
		AccountID: account.ID,
		Since:     windowStart,
	})
	if err != nil {
		return nil, err
	}

	cached, err := s.q.GetLatestSummary(ctx, database.GetLatestSummaryParams{
		AccountID: account.ID,
		Timeframe: string(timeframe),
		StartDate: startDay,
		EndDate:   endDay,
	})
	if err == nil {
		s.logger.Debug("Summary cache hit",
			"timeframe", timeframe, "start", startDay, "end", endDay)
		return &Report{
			Timeframe:   string(timeframe),
			CommitCount: count,
			Summary:     cached.SummaryText,
			GeneratedAt: cached.GeneratedAt,
			Cached:      true,
		}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	commits, err := s.q.ListCommitsSince(ctx, database.ListCommitsSinceParams{
		AccountID: account.ID,
		Since:     windowStart,
	})
	if err != nil {
		return nil, err
	}

	activity := make([]CommitActivity, len(commits))
	for i, c := range commits {
		activity[i] = CommitActivity{
			Repo:         c.RepoName,
			Message:      c.Message,
			AuthorDate:   c.AuthorDate,
			FilesChanged: int(c.FilesChanged),
			Additions:    int(c.Additions),
			Deletions:    int(c.Deletions),
		}
	}

	text, err := s.summarizer.Summarize(ctx, activity, timeframe)
	if err != nil {
		return nil, err
	}

	stored, err := s.q.CreateSummary(ctx, database.CreateSummaryParams{
		AccountID:   account.ID,
		Timeframe:   string(timeframe),
		StartDate:   startDay,
		EndDate:     endDay,
		SummaryText: text,
	})
	if err != nil {
		return nil, err
	}

	return &Report{
		Timeframe:   string(timeframe),
		CommitCount: count,
		Summary:     text,
		GeneratedAt: stored.GeneratedAt,
		Cached:      false,
	}, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
