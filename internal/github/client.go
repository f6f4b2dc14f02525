// internal/github/client.go
package github

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	custom_errors "devtrack/internal/errors"
	"devtrack/internal/model"
)

const (
	// Max page size GitHub allows for list endpoints.
	perPage = 100
	// maxRetries is the total attempt budget per request.
	maxRetries = 3
	// Fixed per-call timeout; no timeout wraps a whole sync pass.
	requestTimeout = 30 * time.Second
	// Client-side request rate toward the GitHub API.
	requestsPerSecond = 5
)

// Client is a wrapper around the go-github client. Every outbound call goes
// through the rate limiter and the retry policy; no caller bypasses them.
type Client struct {
	gh      *github.Client
	limiter *rate.Limiter
	logger  *slog.Logger
	sleep   func(time.Duration) // replaced in tests
}

// NewClient creates and configures a new Client instance.
// The provided token is used to create an authenticated http.Client.
func NewClient(token string, logger *slog.Logger) *Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)
	tc.Timeout = requestTimeout

	return &Client{
		gh:      github.NewClient(tc),
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		logger:  logger,
		sleep:   time.Sleep,
	}
}

// SetBaseURL points the client at a different API root, e.g. a GitHub
// Enterprise instance or a test double.
func (c *Client) SetBaseURL(rawURL string) error {
	if !strings.HasSuffix(rawURL, "/") {
		rawURL += "/"
	}
	base, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	c.gh.BaseURL = base
	return nil
}

// withRetry runs a single network call with bounded exponential backoff:
// up to maxRetries attempts, waiting 2^attempt seconds between them. Terminal
// rejections (4xx) fail immediately without consuming the retry budget.
func (c *Client) withRetry(ctx context.Context, op string, call func() error) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return &custom_errors.FetchError{Operation: op, Attempts: attempt + 1, Err: err}
		}

		lastErr = call()
		if lastErr == nil {
			return nil
		}
		if !isRetryable(lastErr) {
			return &custom_errors.FetchError{Operation: op, Attempts: attempt + 1, Err: lastErr}
		}
		if attempt < maxRetries-1 {
			wait := time.Duration(1<<attempt) * time.Second
			c.logger.Warn("Transient GitHub error, retrying",
				"operation", op, "attempt", attempt+1, "wait", wait.String(), "error", lastErr)
			c.sleep(wait)
		}
	}
	return &custom_errors.FetchError{Operation: op, Attempts: maxRetries, Err: lastErr}
}

// isRetryable classifies a failed call. Connection errors, rate limits, and
// 5xx responses are transient; other API rejections (bad auth, not-found,
// malformed request) are terminal. A cancelled or expired context is terminal
// too: waiting out the backoff would only delay the caller's shutdown.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	switch e := err.(type) {
	case *github.ErrorResponse:
		return e.Response != nil && e.Response.StatusCode >= 500
	case *github.RateLimitError, *github.AbuseRateLimitError:
		return true
	default:
		// Transport-level failure (connection reset, timeout, DNS).
		return true
	}
}

// ListRepositories fetches all repositories owned by the authenticated user.
// It pages through results at perPage records per page and stops at the first
// short or empty page, preserving server order.
func (c *Client) ListRepositories(ctx context.Context) ([]model.Repository, error) {
	opts := &github.RepositoryListByAuthenticatedUserOptions{
		ListOptions: github.ListOptions{PerPage: perPage, Page: 1},
	}

	var all []model.Repository
	for {
		var page []*github.Repository
		err := c.withRetry(ctx, "list repositories", func() error {
			c.logger.Debug("Fetching repositories page", "page", opts.Page)
			repos, _, err := c.gh.Repositories.ListByAuthenticatedUser(ctx, opts)
			if err != nil {
				return err
			}
			page = repos
			return nil
		})
		if err != nil {
			return nil, err
		}

		for _, repo := range page {
			all = append(all, toInternalRepository(repo))
		}
		if len(page) < perPage {
			break
		}
		opts.Page++
	}
	return all, nil
}

// ListCommits fetches commits for a repository, filtered server-side by
// author and, when since is non-zero, by time window. Pagination as in
// ListRepositories. Results arrive newest first.
func (c *Client) ListCommits(ctx context.Context, owner, repo string, since time.Time, author string) ([]model.Commit, error) {
	opts := &github.CommitsListOptions{
		Since:       since,
		Author:      author,
		ListOptions: github.ListOptions{PerPage: perPage, Page: 1},
	}

	var all []model.Commit
	for {
		var page []*github.RepositoryCommit
		err := c.withRetry(ctx, "list commits", func() error {
			c.logger.Debug("Fetching commits page", "owner", owner, "repo", repo, "page", opts.Page)
			commits, _, err := c.gh.Repositories.ListCommits(ctx, owner, repo, opts)
			if err != nil {
				return err
			}
			page = commits
			return nil
		})
		if err != nil {
			return nil, err
		}

		for _, commit := range page {
			all = append(all, toInternalCommit(commit))
		}
		if len(page) < perPage {
			break
		}
		opts.Page++
	}
	return all, nil
}

// GetCommitDetail fetches the stats of a single commit: number of files
// touched and lines added/deleted.
func (c *Client) GetCommitDetail(ctx context.Context, owner, repo, sha string) (model.CommitDetail, error) {
	var detail model.CommitDetail
	err := c.withRetry(ctx, "get commit detail", func() error {
		commit, _, err := c.gh.Repositories.GetCommit(ctx, owner, repo, sha, nil)
		if err != nil {
			return err
		}
		detail = model.CommitDetail{
			SHA:          sha,
			FilesChanged: len(commit.Files),
			Additions:    commit.GetStats().GetAdditions(),
			Deletions:    commit.GetStats().GetDeletions(),
		}
		return nil
	})
	if err != nil {
		return model.CommitDetail{}, err
	}
	return detail, nil
}

// toInternalRepository translates a github.Repository object to our internal model.
func toInternalRepository(r *github.Repository) model.Repository {
	return model.Repository{
		Name:     r.GetName(),
		URL:      r.GetHTMLURL(),
		Language: r.Language,
	}
}

// toInternalCommit translates a github.RepositoryCommit object to our internal model.
func toInternalCommit(c *github.RepositoryCommit) model.Commit {
	return model.Commit{
		SHA:        c.GetSHA(),
		Message:    c.GetCommit().GetMessage(),
		AuthorDate: c.GetCommit().GetAuthor().GetDate().Time,
	}
}
