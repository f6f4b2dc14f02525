// internal/summary/openai_test.go
package summary

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	custom_errors "devtrack/internal/errors"
)

func TestOpenAISummarizer_EmptyCommitsShortCircuit(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	s := NewOpenAISummarizer("test-key", "gpt-4o-mini", logger)

	// No API call is made for an empty window.
	text, err := s.Summarize(context.Background(), nil, TimeframeWeek)

	require.NoError(t, err)
	assert.Equal(t, "No commits found in the last week.", text)
}

func TestClassifySummarizationError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind custom_errors.SummarizationKind
	}{
		{"401 maps to auth", &openai.APIError{HTTPStatusCode: http.StatusUnauthorized}, custom_errors.SummarizationAuth},
		{"403 maps to auth", &openai.APIError{HTTPStatusCode: http.StatusForbidden}, custom_errors.SummarizationAuth},
		{"429 maps to rate limit", &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests}, custom_errors.SummarizationRateLimit},
		{"500 maps to generic api", &openai.APIError{HTTPStatusCode: http.StatusInternalServerError}, custom_errors.SummarizationAPI},
		{"transport failure maps to generic api", errors.New("connection refused"), custom_errors.SummarizationAPI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifySummarizationError(tt.err)
			var se *custom_errors.SummarizationError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.wantKind, se.Kind)
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	date := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	commits := []CommitActivity{
		{Repo: "devtrack", Message: "feat: sync engine\n\nlong body", AuthorDate: date, Additions: 120, Deletions: 8, FilesChanged: 5},
		{Repo: "devtrack", Message: "fix: pagination", AuthorDate: date, Additions: 4, Deletions: 2, FilesChanged: 1},
		{Repo: "dotfiles", Message: "update zshrc", AuthorDate: date, Additions: 1, FilesChanged: 1},
	}

	prompt := buildPrompt(commits, TimeframeWeek)

	assert.Contains(t, prompt, "**devtrack** (2 commits)")
	assert.Contains(t, prompt, "**dotfiles** (1 commits)")
	assert.Contains(t, prompt, "+124/-10 lines, 6 files")
	assert.Contains(t, prompt, "feat: sync engine (+120/-8)")
	assert.NotContains(t, prompt, "long body", "only the first message line is shown")
	assert.Contains(t, prompt, "last week")
}

func TestBuildPrompt_CapsCommitsPerRepo(t *testing.T) {
	date := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	var commits []CommitActivity
	for i := 0; i < 15; i++ {
		commits = append(commits, CommitActivity{Repo: "busy", Message: "tick", AuthorDate: date})
	}

	prompt := buildPrompt(commits, TimeframeMonth)

	assert.Equal(t, maxCommitsPerRepo, strings.Count(prompt, "tick ("))
	assert.Contains(t, prompt, "... and 5 more commits")
}
