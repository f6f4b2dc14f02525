// internal/api/handler.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/singleflight"

	"devtrack/internal/database"
	custom_errors "devtrack/internal/errors"
	"devtrack/internal/model"
	"devtrack/internal/summary"
)

// Syncer runs one sync pass for the tracked account.
type Syncer interface {
	SyncAccount(ctx context.Context) (*model.SyncResult, error)
}

// Handler is the container for API dependencies.
type Handler struct {
	db        database.Querier
	syncer    Syncer
	summaries *summary.Service
	username  string
	logger    *slog.Logger

	// A sync pass is not safe to run concurrently with itself; concurrent
	// requests for the same account share a single in-flight pass.
	syncGroup singleflight.Group
}

// NewRouter creates and configures a new chi router with all API routes.
func NewRouter(db database.Querier, s Syncer, summaries *summary.Service, username string, logger *slog.Logger) http.Handler {
	h := &Handler{
		db:        db,
		syncer:    s,
		summaries: summaries,
		username:  username,
		logger:    logger,
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Get("/", h.root)
	r.Get("/health", h.healthCheck)
	r.Post("/sync", h.sync)
	r.Get("/stats", h.getStats)
	r.Get("/summary", h.getSummary)
	r.Get("/commits", h.getCommits)

	return r
}

func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"service": "DevTrack API",
		"status":  "operational",
		"endpoints": map[string]string{
			"sync":    "POST /sync - Sync GitHub data",
			"stats":   "GET /stats - Get user statistics",
			"summary": "GET /summary?timeframe=week - Get AI summary",
			"commits": "GET /commits?limit=10 - Get recent commits",
			"health":  "GET /health - Health check",
		},
	})
}

// healthCheck is a simple health endpoint.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// sync runs a sync pass for the tracked account.
// POST /sync
func (h *Handler) sync(w http.ResponseWriter, r *http.Request) {
	// Joined requests share the pass's result, so the pass must not die with
	// the one request that happened to start it.
	syncCtx := context.WithoutCancel(r.Context())
	result, err, shared := h.syncGroup.Do(h.username, func() (interface{}, error) {
		return h.syncer.SyncAccount(syncCtx)
	})
	if err != nil {
		var cfgErr *custom_errors.ConfigError
		var fetchErr *custom_errors.FetchError
		switch {
		case errors.As(err, &cfgErr):
			respondWithError(w, http.StatusBadRequest, cfgErr.Error())
		case errors.As(err, &fetchErr):
			respondWithError(w, http.StatusBadGateway, fetchErr.Error())
		default:
			h.logger.Error("Sync failed", "error", err)
			respondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	if shared {
		h.logger.Info("Sync request joined an in-flight pass", "username", h.username)
	}
	respondWithJSON(w, http.StatusOK, result)
}

// getStats returns aggregate statistics for the tracked account.
// GET /stats
func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	account, ok := h.currentAccount(w, r)
	if !ok {
		return
	}

	stats, err := h.db.GetAccountStats(r.Context(), account.ID)
	if err != nil {
		h.logger.Error("Failed to get stats", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	languageCounts, err := h.db.ListLanguageCounts(r.Context(), account.ID)
	if err != nil {
		h.logger.Error("Failed to get language counts", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	languages := make(map[string]int64, len(languageCounts))
	for _, lc := range languageCounts {
		languages[lc.Language] = lc.Count
	}

	var lastSynced *string
	if account.LastSyncedAt != nil {
		s := account.LastSyncedAt.Format(time.RFC3339)
		lastSynced = &s
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"username":            account.GithubUsername,
		"repositories":        stats.Repositories,
		"total_commits":       stats.TotalCommits,
		"languages":           languages,
		"total_lines_added":   stats.TotalLinesAdded,
		"total_lines_deleted": stats.TotalLinesDeleted,
		"total_files_changed": stats.TotalFilesChanged,
		"net_lines":           stats.TotalLinesAdded - stats.TotalLinesDeleted,
		"last_synced":         lastSynced,
	})
}

// getSummary returns the activity summary for a window, cached when an exact
// key match exists.
// GET /summary?timeframe=week|month
func (h *Handler) getSummary(w http.ResponseWriter, r *http.Request) {
	timeframeParam := r.URL.Query().Get("timeframe")
	if timeframeParam == "" {
		timeframeParam = string(summary.TimeframeWeek)
	}
	timeframe, err := summary.ParseTimeframe(timeframeParam)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	account, ok := h.currentAccount(w, r)
	if !ok {
		return
	}

	report, err := h.summaries.Report(r.Context(), account, timeframe)
	if err != nil {
		var sumErr *custom_errors.SummarizationError
		if errors.As(err, &sumErr) {
			switch sumErr.Kind {
			case custom_errors.SummarizationAuth:
				respondWithError(w, http.StatusBadGateway, "Summarization service authentication failed. Check the API key.")
			case custom_errors.SummarizationRateLimit:
				respondWithError(w, http.StatusServiceUnavailable, "Summarization service rate limit exceeded. Try again shortly.")
			default:
				respondWithError(w, http.StatusBadGateway, "Summarization service request failed.")
			}
			return
		}
		h.logger.Error("Failed to build summary", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondWithJSON(w, http.StatusOK, report)
}

// getCommits returns recent commits, optionally filtered by repository name.
// GET /commits?limit=N&repo=name
func (h *Handler) getCommits(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid 'limit' parameter. Must be a positive integer.")
			return
		}
		limit = parsed
	}
	if limit > 50 {
		limit = 50
	}

	var repoName *string
	if repo := r.URL.Query().Get("repo"); repo != "" {
		repoName = &repo
	}

	account, ok := h.currentAccount(w, r)
	if !ok {
		return
	}

	commits, err := h.db.ListRecentCommits(r.Context(), database.ListRecentCommitsParams{
		AccountID: account.ID,
		RepoName:  repoName,
		Limit:     int32(limit),
	})
	if err != nil {
		h.logger.Error("Failed to get commits", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	items := make([]map[string]interface{}, 0, len(commits))
	for _, c := range commits {
		items = append(items, map[string]interface{}{
			"sha":           shortSHA(c.SHA),
			"repository":    c.RepoName,
			"message":       firstLine(c.Message),
			"date":          c.AuthorDate.Format(time.RFC3339),
			"files_changed": c.FilesChanged,
			"additions":     c.Additions,
			"deletions":     c.Deletions,
		})
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"commits": items,
		"count":   len(items),
	})
}

// currentAccount loads the tracked account, answering 404 if it has never
// been synced.
func (h *Handler) currentAccount(w http.ResponseWriter, r *http.Request) (database.Account, bool) {
	account, err := h.db.GetAccountByUsername(r.Context(), h.username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondWithError(w, http.StatusNotFound, "User not synced yet. Call POST /sync first to initialize.")
			return database.Account{}, false
		}
		h.logger.Error("Failed to get account", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return database.Account{}, false
	}
	return account, true
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

func firstLine(message string) string {
	for i := 0; i < len(message); i++ {
		if message[i] == '\n' {
			return message[:i]
		}
	}
	return message
}

func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, status int, message string) {
	respondWithJSON(w, status, map[string]string{"error": message})
}
