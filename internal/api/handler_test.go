// internal/api/handler_test.go
package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devtrack/internal/model"
)

// blockingSyncer parks in SyncAccount until released, recording whether its
// context was cancelled before it could finish.
type blockingSyncer struct {
	started chan struct{}
	release chan struct{}
	ctxErr  error
}

func (s *blockingSyncer) SyncAccount(ctx context.Context) (*model.SyncResult, error) {
	close(s.started)
	<-s.release
	s.ctxErr = ctx.Err()
	return &model.SyncResult{Username: "tracked-user"}, nil
}

func TestHandler_Sync_SurvivesCallerDisconnect(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	s := &blockingSyncer{started: make(chan struct{}), release: make(chan struct{})}
	router := NewRouter(nil, s, nil, "tracked-user", logger)

	reqCtx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodPost, "/sync", nil).WithContext(reqCtx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		router.ServeHTTP(rec, req)
		close(done)
	}()

	// The initiating client goes away mid-pass.
	<-s.started
	cancel()
	close(s.release)
	<-done

	require.NoError(t, s.ctxErr, "an in-flight pass must not die with the request that started it")
	assert.Equal(t, http.StatusOK, rec.Code)
}
