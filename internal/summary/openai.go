// internal/summary/openai.go
package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	custom_errors "devtrack/internal/errors"
)

const maxCommitsPerRepo = 10

// OpenAISummarizer generates natural-language activity summaries via the
// OpenAI chat completion API.
type OpenAISummarizer struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// NewOpenAISummarizer creates a summarizer using the given API key and model.
func NewOpenAISummarizer(apiKey, model string, logger *slog.Logger) *OpenAISummarizer {
	return &OpenAISummarizer{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}
}

// Summarize produces a short plain-text summary of the commits. An empty
// commit list short-circuits without an API call.
func (s *OpenAISummarizer) Summarize(ctx context.Context, commits []CommitActivity, timeframe Timeframe) (string, error) {
	if len(commits) == 0 {
		return fmt.Sprintf("No commits found in the last %s.", timeframe), nil
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(commits, timeframe),
			},
		},
		MaxTokens: 1000,
	})
	if err != nil {
		return "", classifySummarizationError(err)
	}
	if len(resp.Choices) == 0 {
		return "", &custom_errors.SummarizationError{
			Kind: custom_errors.SummarizationAPI,
			Err:  errors.New("completion returned no choices"),
		}
	}

	s.logger.Debug("Generated summary",
		"model", s.model,
		"commits", len(commits),
		"tokens_used", resp.Usage.TotalTokens)

	return resp.Choices[0].Message.Content, nil
}

// classifySummarizationError maps an OpenAI client error onto the closed set
// of summarization failure kinds the API layer reports on.
func classifySummarizationError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &custom_errors.SummarizationError{Kind: custom_errors.SummarizationAuth, Err: err}
		case http.StatusTooManyRequests:
			return &custom_errors.SummarizationError{Kind: custom_errors.SummarizationRateLimit, Err: err}
		}
	}
	return &custom_errors.SummarizationError{Kind: custom_errors.SummarizationAPI, Err: err}
}

// buildPrompt formats the commits grouped by repository with aggregate stats,
// capped at maxCommitsPerRepo entries per repository.
func buildPrompt(commits []CommitActivity, timeframe Timeframe) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== Commits from the last %s ===\n", timeframe)

	// Group by repository, preserving first-seen order.
	var repoOrder []string
	byRepo := make(map[string][]CommitActivity)
	for _, commit := range commits {
		if _, ok := byRepo[commit.Repo]; !ok {
			repoOrder = append(repoOrder, commit.Repo)
		}
		byRepo[commit.Repo] = append(byRepo[commit.Repo], commit)
	}

	for _, repo := range repoOrder {
		repoCommits := byRepo[repo]

		var additions, deletions, files int
		for _, c := range repoCommits {
			additions += c.Additions
			deletions += c.Deletions
			files += c.FilesChanged
		}

		fmt.Fprintf(&b, "\n**%s** (%d commits):\n", repo, len(repoCommits))
		fmt.Fprintf(&b, "  Total changes: +%d/-%d lines, %d files\n", additions, deletions, files)
		b.WriteString("  Commits:\n")

		shown := repoCommits
		if len(shown) > maxCommitsPerRepo {
			shown = shown[:maxCommitsPerRepo]
		}
		for _, c := range shown {
			fmt.Fprintf(&b, "    - [%s] %s (+%d/-%d)\n",
				c.AuthorDate.Format("Jan 02"), firstLine(c.Message, 80), c.Additions, c.Deletions)
		}
		if len(repoCommits) > maxCommitsPerRepo {
			fmt.Fprintf(&b, "    ... and %d more commits\n", len(repoCommits)-maxCommitsPerRepo)
		}
	}

	fmt.Fprintf(&b, `
Analyze these Git commits from the last %s and provide a concise summary that:
1. Groups work by repository/project
2. Highlights main focus areas and accomplishments
3. Notes any patterns (refactoring, bug fixes, new features)
4. Mentions productivity metrics (commit count, lines changed)

Keep it concise (3-4 sentences max). Write in second person ("you worked on...").
Do NOT use markdown formatting in the output - just plain text paragraphs.`, timeframe)

	return b.String()
}

func firstLine(message string, limit int) string {
	line := message
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if len(line) > limit {
		line = line[:limit]
	}
	return line
}
